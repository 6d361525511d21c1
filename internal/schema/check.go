package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one authoring defect found by Check.
type Problem struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func errorf(field, format string, args ...any) Problem {
	return Problem{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(field, format string, args ...any) Problem {
	return Problem{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// HasErrors reports whether any problem is an error rather than a warning.
func HasErrors(ps []Problem) bool {
	for _, p := range ps {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check reports invariant violations of canonical metadata. It never
// modifies m. Opaque metadata has no invariants to check.
func Check(m Metadata) []Problem {
	switch v := m.(type) {
	case CaseVide:
		return checkCaseVide(v)
	case CaseVideLegacy:
		if strings.TrimSpace(v.ReponseValide) == "" {
			return []Problem{errorf("reponse_valide", "answer is empty")}
		}
	case ReponseLibre:
		if strings.TrimSpace(v.ReponseValide) == "" {
			return []Problem{errorf("reponse_valide", "answer is empty")}
		}
	case Liens:
		return checkLiens(v)
	case Chronologie:
		return checkChronologie(v)
	case Qcm:
		return checkQcm(v)
	case VraiFaux:
		if len(v.Enonces) == 0 {
			return []Problem{errorf("enonces", "at least one statement is required")}
		}
	case Memory:
		return checkMemory(v)
	case Simon:
		if v.TypeElements == SimonPersonnalise && len(v.Elements) == 0 {
			return []Problem{errorf("elements", "custom elements are required for type %q", SimonPersonnalise)}
		}
	case ImageInteractive:
		return checkImage(v)
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\[(\d+)\]`)

func checkCaseVide(v CaseVide) []Problem {
	var ps []Problem
	if len(v.CasesVides) == 0 {
		ps = append(ps, errorf("cases_vides", "at least one blank is required"))
	}
	occurrences := map[int]int{}
	for _, m := range placeholderRe.FindAllStringSubmatch(v.Texte, -1) {
		n, _ := strconv.Atoi(m[1])
		occurrences[n]++
	}
	bank := map[string]bool{}
	for _, w := range v.BanqueMots {
		bank[w] = true
	}
	seen := map[int]bool{}
	for i, b := range v.CasesVides {
		field := fmt.Sprintf("cases_vides[%d]", i)
		if seen[b.Index] {
			ps = append(ps, errorf(field, "index %d is declared twice", b.Index))
		}
		seen[b.Index] = true
		if b.Index < 1 {
			ps = append(ps, errorf(field, "index %d is not a blank, indexes start at 1", b.Index))
			continue
		}
		switch occurrences[b.Index] {
		case 1:
		case 0:
			ps = append(ps, errorf(field, "placeholder [%d] is missing from texte", b.Index))
		default:
			ps = append(ps, errorf(field, "placeholder [%d] appears %d times in texte", b.Index, occurrences[b.Index]))
		}
		if strings.TrimSpace(b.ReponseCorrecte) == "" {
			ps = append(ps, errorf(field, "answer is empty"))
		} else if !bank[b.ReponseCorrecte] {
			ps = append(ps, errorf("banque_mots", "word bank lacks answer %q", b.ReponseCorrecte))
		}
	}
	for n := range occurrences {
		if n < 1 {
			ps = append(ps, errorf("texte", "placeholder [%d] is not a blank, indexes start at 1", n))
			continue
		}
		if !seen[n] {
			ps = append(ps, errorf("texte", "placeholder [%d] has no blank definition", n))
		}
	}
	return ps
}

func checkLiens(v Liens) []Problem {
	var ps []Problem
	if len(v.Liens) == 0 {
		ps = append(ps, errorf("liens", "at least one link is required"))
	}
	mots, reps := toBag(v.Mots), toBag(v.Reponses)
	usedMot, usedRep := map[string]bool{}, map[string]bool{}
	for i, l := range v.Liens {
		field := fmt.Sprintf("liens[%d]", i)
		if mots[l.Mot] == 0 {
			ps = append(ps, errorf(field, "word %q is not in mots", l.Mot))
		}
		if reps[l.Reponse] == 0 {
			ps = append(ps, errorf(field, "answer %q is not in reponses", l.Reponse))
		}
		if usedMot[l.Mot] {
			ps = append(ps, errorf(field, "word %q is linked twice", l.Mot))
		}
		if usedRep[l.Reponse] {
			ps = append(ps, errorf(field, "answer %q is linked twice", l.Reponse))
		}
		usedMot[l.Mot], usedRep[l.Reponse] = true, true
	}
	if len(v.Mots) != len(v.Reponses) {
		ps = append(ps, warnf("reponses", "%d words but %d answers", len(v.Mots), len(v.Reponses)))
	}
	ps = append(ps, duplicates("mots", v.Mots)...)
	ps = append(ps, duplicates("reponses", v.Reponses)...)
	return ps
}

func checkChronologie(v Chronologie) []Problem {
	var ps []Problem
	if len(v.OrdreCorrect) < 2 {
		ps = append(ps, errorf("ordre_correct", "at least two items are required"))
	}
	a, b := toBag(v.Mots), toBag(v.OrdreCorrect)
	same := len(v.Mots) == len(v.OrdreCorrect)
	for k, n := range a {
		if b[k] != n {
			same = false
		}
	}
	if !same {
		ps = append(ps, errorf("ordre_correct", "must be a permutation of mots"))
	}
	return append(ps, duplicates("mots", v.Mots)...)
}

func checkQcm(v Qcm) []Problem {
	var ps []Problem
	if len(v.ReponsesValides) == 0 {
		ps = append(ps, errorf("reponses_valides", "at least one valid answer is required"))
	}
	props := toBag(v.Propositions)
	for i, r := range v.ReponsesValides {
		if props[r] == 0 {
			ps = append(ps, errorf(fmt.Sprintf("reponses_valides[%d]", i), "%q is not a proposition", r))
		}
	}
	return append(ps, duplicates("propositions", v.Propositions)...)
}

func checkMemory(v Memory) []Problem {
	var ps []Problem
	if len(v.Paires) == 0 {
		ps = append(ps, errorf("paires", "at least one pair is required"))
	}
	for i, p := range v.Paires {
		if strings.TrimSpace(p.Question) == "" || strings.TrimSpace(p.Reponse) == "" {
			ps = append(ps, errorf(fmt.Sprintf("paires[%d]", i), "both sides of a pair are required"))
		}
	}
	return ps
}

func checkImage(v ImageInteractive) []Problem {
	var ps []Problem
	if strings.TrimSpace(v.ImageURL) == "" {
		ps = append(ps, errorf("image_url", "image is required"))
	}
	if len(v.Zones) == 0 {
		ps = append(ps, errorf("zones", "at least one zone is required"))
	}
	correct := 0
	ids := map[string]bool{}
	for i, z := range v.Zones {
		field := fmt.Sprintf("zones[%d]", i)
		if ids[z.ID] {
			ps = append(ps, errorf(field, "zone id %q is used twice", z.ID))
		}
		ids[z.ID] = true
		if z.IsCorrect {
			correct++
		}
		switch s := z.Shape.(type) {
		case Polygon:
			if len(s.Points) < 3 {
				ps = append(ps, errorf(field, "polygon needs at least 3 points, has %d", len(s.Points)))
			}
		case Rectangle:
			if s.Width <= 0 || s.Height <= 0 {
				ps = append(ps, errorf(field, "rectangle has no area"))
			}
		}
	}
	if len(v.Zones) > 0 && correct == 0 {
		ps = append(ps, errorf("zones", "no zone is marked correct"))
	}
	return ps
}

func toBag(xs []string) map[string]int {
	m := make(map[string]int, len(xs))
	for _, x := range xs {
		m[x]++
	}
	return m
}

// duplicates flags repeated values: answers are keyed by value, so a
// repeated word cannot be told apart from its twin.
func duplicates(field string, xs []string) []Problem {
	var ps []Problem
	counts := toBag(xs)
	for _, x := range xs {
		if counts[x] > 1 {
			ps = append(ps, warnf(field, "value %q appears %d times", x, counts[x]))
			counts[x] = 0
		}
	}
	return ps
}

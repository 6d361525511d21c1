package grading

import (
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-games/internal/schema"
)

var (
	// ErrEmbeddedRule is returned for kinds whose outcome is produced by
	// the play component itself (Memory, Simon).
	ErrEmbeddedRule = errors.New("grading: outcome is decided during play")
	// ErrAnswerType means the answer value does not fit the metadata kind.
	ErrAnswerType = errors.New("grading: answer does not match game kind")
)

// Strategy validates one answer against one kind of metadata.
type Strategy interface {
	Validate(m schema.Metadata, answer Answer) (Verdict, error)
}

// Grader routes by metadata kind to the correct Strategy.
type Grader interface {
	Validate(m schema.Metadata, answer Answer) (Verdict, error)
}

type defaultGrader struct {
	strategies map[schema.Kind]Strategy
}

// Validate returns Pending, nil for metadata no strategy knows about
// (opaque types): there is nothing to judge against.
func (g *defaultGrader) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	if m == nil {
		return Pending, nil
	}
	s, ok := g.strategies[m.Kind()]
	if !ok {
		return Pending, nil
	}
	return s.Validate(m, answer)
}

// Grader options

type Option func(*config)

type config struct {
	MaxEditDistance int // ReponseLibre tolerance; 0 means exact
}

func WithMaxEditDistance(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.MaxEditDistance = n
	}
}

// NewGrader installs the built-in strategies.
func NewGrader(opts ...Option) Grader {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[schema.Kind]Strategy{
			schema.KindCaseVide:         caseVideStrategy{},
			schema.KindReponseLibre:     reponseLibreStrategy{maxEdit: cfg.MaxEditDistance},
			schema.KindLiens:            liensStrategy{},
			schema.KindChronologie:      chronologieStrategy{},
			schema.KindQcm:              qcmStrategy{},
			schema.KindVraiFaux:         vraiFauxStrategy{},
			schema.KindMemory:           embeddedStrategy{},
			schema.KindSimon:            embeddedStrategy{},
			schema.KindImageInteractive: imageStrategy{},
		},
	}
}

// --- Strategies ---

type caseVideStrategy struct{}

func (caseVideStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	switch md := m.(type) {
	case schema.CaseVideLegacy:
		text, ok := textOf(answer)
		if !ok {
			return Pending, answerTypeErr(m, answer)
		}
		return foldedMatch(text, md.ReponseValide, 0), nil
	case schema.CaseVide:
		a, ok := answer.(CaseVideAnswer)
		if !ok {
			return Pending, answerTypeErr(m, answer)
		}
		if len(md.CasesVides) == 0 {
			return Pending, nil
		}
		verdict := Correct
		for _, b := range md.CasesVides {
			got := Fold(a.Blanks[b.Index])
			want := Fold(b.ReponseCorrecte)
			if got == "" || want == "" {
				return Pending, nil
			}
			if got != want {
				verdict = Incorrect
			}
		}
		return verdict, nil
	}
	return Pending, answerTypeErr(m, answer)
}

type reponseLibreStrategy struct{ maxEdit int }

func (s reponseLibreStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.ReponseLibre)
	text, ok2 := textOf(answer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	return foldedMatch(text, md.ReponseValide, s.maxEdit), nil
}

type liensStrategy struct{}

func (liensStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.Liens)
	a, ok2 := answer.(LiensAnswer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	if len(md.Liens) == 0 || len(a.Links) == 0 {
		return Pending, nil
	}
	want := make(map[schema.Lien]struct{}, len(md.Liens))
	for _, l := range md.Liens {
		want[l] = struct{}{}
	}
	got := make(map[schema.Lien]struct{}, len(a.Links))
	for mot, rep := range a.Links {
		got[schema.Lien{Mot: mot, Reponse: rep}] = struct{}{}
	}
	return verdictOf(setEqual(want, got)), nil
}

type chronologieStrategy struct{}

func (chronologieStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.Chronologie)
	a, ok2 := answer.(ChronologieAnswer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	if len(md.OrdreCorrect) == 0 || len(a.Order) == 0 {
		return Pending, nil
	}
	if len(a.Order) != len(md.OrdreCorrect) {
		return Incorrect, nil
	}
	for i := range a.Order {
		if a.Order[i] != md.OrdreCorrect[i] {
			return Incorrect, nil
		}
	}
	return Correct, nil
}

type qcmStrategy struct{}

func (qcmStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.Qcm)
	a, ok2 := answer.(QcmAnswer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	if len(md.ReponsesValides) == 0 || len(a.Selected) == 0 {
		return Pending, nil
	}
	return verdictOf(setEqual(toSet(md.ReponsesValides), toSet(a.Selected))), nil
}

type vraiFauxStrategy struct{}

func (vraiFauxStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.VraiFaux)
	a, ok2 := answer.(VraiFauxAnswer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	if len(md.Enonces) == 0 {
		return Pending, nil
	}
	verdict := Correct
	for i, e := range md.Enonces {
		got, answered := a.Answers[i]
		if !answered {
			return Pending, nil
		}
		if got != e.ReponseCorrecte {
			verdict = Incorrect
		}
	}
	return verdict, nil
}

type embeddedStrategy struct{}

func (embeddedStrategy) Validate(schema.Metadata, Answer) (Verdict, error) {
	return Pending, ErrEmbeddedRule
}

type imageStrategy struct{}

func (imageStrategy) Validate(m schema.Metadata, answer Answer) (Verdict, error) {
	md, ok := m.(schema.ImageInteractive)
	a, ok2 := answer.(ImageAnswer)
	if !ok || !ok2 {
		return Pending, answerTypeErr(m, answer)
	}
	correct := map[string]struct{}{}
	incorrect := map[string]struct{}{}
	for _, z := range md.Zones {
		if z.IsCorrect {
			correct[z.ID] = struct{}{}
		} else {
			incorrect[z.ID] = struct{}{}
		}
	}
	if len(correct) == 0 || len(a.Clicked) == 0 {
		return Pending, nil
	}
	clicked := toSet(a.Clicked)
	if md.RequireAllCorrectZones {
		return verdictOf(setEqual(correct, clicked)), nil
	}
	hits := 0
	for id := range clicked {
		if _, ok := correct[id]; ok {
			hits++
			continue
		}
		// an incorrect zone or an id matching no zone at all
		return Incorrect, nil
	}
	return verdictOf(hits > 0), nil
}

// helpers

func answerTypeErr(m schema.Metadata, answer Answer) error {
	return fmt.Errorf("%w: %T for %T", ErrAnswerType, answer, m)
}

func textOf(a Answer) (string, bool) {
	switch t := a.(type) {
	case TextAnswer:
		return t.Text, true
	case CaseVideAnswer:
		// a single-blank answer given in the multi-blank shape
		return t.Blanks[1], true
	}
	return "", false
}

func foldedMatch(got, want string, maxEdit int) Verdict {
	g, w := Fold(got), Fold(want)
	if g == "" || w == "" {
		return Pending
	}
	if g == w {
		return Correct
	}
	if maxEdit > 0 && levenshtein(g, w) <= maxEdit {
		return Correct
	}
	return Incorrect
}

func toSet[T comparable](arr []T) map[T]struct{} {
	m := make(map[T]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual[T comparable](a, b map[T]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

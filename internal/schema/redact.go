package schema

import (
	"hash/fnv"
	"slices"
	"strings"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

// Pupil-facing views. They carry what is needed to render and play an
// exercise and nothing that gives the answer away.

type CaseVideView struct {
	Texte      string    `json:"texte"`
	Segments   []Segment `json:"segments"`
	Blanks     []int     `json:"blanks"`
	BanqueMots []string  `json:"banque_mots"`
}

type CaseVideLegacyView struct {
	DebutPhrase string `json:"debut_phrase"`
	FinPhrase   string `json:"fin_phrase"`
}

type ReponseLibreView struct{}

type LiensView struct {
	Mots     []string `json:"mots"`
	Reponses []string `json:"reponses"`
}

type ChronologieView struct {
	Mots []string `json:"mots"`
}

type QcmView struct {
	Propositions []string `json:"propositions"`
	Multiple     bool     `json:"multiple"`
}

type VraiFauxView struct {
	Enonces []string `json:"enonces"`
}

type ZoneView struct {
	ID     string           `json:"id"`
	Name   string           `json:"name,omitempty"`
	Rect   *geometry.Rect   `json:"rect,omitempty"`
	Points []geometry.Point `json:"points,omitempty"`
}

type ImageInteractiveView struct {
	ImageURL    string     `json:"image_url"`
	ImageWidth  int        `json:"image_width"`
	ImageHeight int        `json:"image_height"`
	Zones       []ZoneView `json:"zones"`
}

// Redact returns the pupil view of m. Word lists come out in a neutral
// order that never lines up with the key. Memory and Simon are returned as is:
// their pairs and parameters are what the pupil plays with. Opaque data
// is returned unchanged for the fallback display.
func Redact(m Metadata) any {
	switch v := m.(type) {
	case CaseVide:
		blanks := make([]int, len(v.CasesVides))
		for i, b := range v.CasesVides {
			blanks[i] = b.Index
		}
		answers := make([]string, len(v.CasesVides))
		for i, b := range v.CasesVides {
			answers[i] = b.ReponseCorrecte
		}
		bank := avoid(neutral(v.BanqueMots), func(xs []string) bool {
			return len(answers) > 0 && len(xs) >= len(answers) && slices.Equal(xs[:len(answers)], answers)
		})
		return CaseVideView{Texte: v.Texte, Segments: Segments(v.Texte), Blanks: blanks, BanqueMots: bank}
	case CaseVideLegacy:
		return CaseVideLegacyView{DebutPhrase: v.DebutPhrase, FinPhrase: v.FinPhrase}
	case ReponseLibre:
		return ReponseLibreView{}
	case Liens:
		mots := neutral(v.Mots)
		reponses := avoid(neutral(v.Reponses), func(xs []string) bool { return pairedUp(v.Liens, mots, xs) })
		return LiensView{Mots: mots, Reponses: reponses}
	case Chronologie:
		return ChronologieView{Mots: avoid(neutral(v.Mots), func(xs []string) bool {
			return slices.Equal(xs, v.OrdreCorrect)
		})}
	case Qcm:
		return QcmView{Propositions: v.Propositions, Multiple: len(v.ReponsesValides) > 1}
	case VraiFaux:
		out := make([]string, len(v.Enonces))
		for i, e := range v.Enonces {
			out[i] = e.Texte
		}
		return VraiFauxView{Enonces: out}
	case ImageInteractive:
		zones := make([]ZoneView, len(v.Zones))
		for i, z := range v.Zones {
			zv := ZoneView{ID: z.ID, Name: z.Name}
			switch s := z.Shape.(type) {
			case Rectangle:
				r := s.Rect
				zv.Rect = &r
			case Polygon:
				zv.Points = s.Points
			}
			zones[i] = zv
		}
		return ImageInteractiveView{ImageURL: v.ImageURL, ImageWidth: v.ImageWidth, ImageHeight: v.ImageHeight, Zones: zones}
	}
	return m
}

// neutral orders xs by a hash of each value, so the authored order (often
// the answer order) does not show through.
func neutral(xs []string) []string {
	out := slices.Clone(xs)
	slices.SortStableFunc(out, func(a, b string) int {
		if ha, hb := fnvHash(a), fnvHash(b); ha != hb {
			if ha < hb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// avoid rotates xs by one while leaks reports it gives the key away.
func avoid(xs []string, leaks func([]string) bool) []string {
	for i := 1; i < len(xs) && leaks(xs); i++ {
		xs = slices.Concat(xs[1:], xs[:1])
	}
	return xs
}

// pairedUp reports whether every row of the two columns is a link.
func pairedUp(liens []Lien, mots, reponses []string) bool {
	n := min(len(mots), len(reponses))
	if n < 2 || len(liens) == 0 {
		return false
	}
	links := make(map[Lien]bool, len(liens))
	for _, l := range liens {
		links[l] = true
	}
	for i := 0; i < n; i++ {
		if !links[Lien{Mot: mots[i], Reponse: reponses[i]}] {
			return false
		}
	}
	return true
}

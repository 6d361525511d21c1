// Package schema declares the canonical metadata shape of every game kind
// and normalizes raw metadata (hand-authored or generated) into it.
package schema

import (
	"encoding/json"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

// Metadata is the sum of all per-kind payloads. The set of variants is
// closed; use a type switch to branch.
type Metadata interface {
	Kind() Kind
	metadata()
}

// Blank is one [index] placeholder of a CaseVide text.
type Blank struct {
	Index           int    `json:"index" jsonschema:"required,minimum=1"`
	ReponseCorrecte string `json:"reponse_correcte" jsonschema:"required"`
}

// CaseVide is the multi-blank fill-in exercise with a word bank.
type CaseVide struct {
	Texte      string   `json:"texte" jsonschema:"required"`
	CasesVides []Blank  `json:"cases_vides" jsonschema:"required,minItems=1"`
	BanqueMots []string `json:"banque_mots" jsonschema:"required,minItems=1"`
}

// CaseVideLegacy is the single-blank shape kept for old rows. It is never
// upgraded to CaseVide.
type CaseVideLegacy struct {
	DebutPhrase   string `json:"debut_phrase"`
	FinPhrase     string `json:"fin_phrase"`
	ReponseValide string `json:"reponse_valide"`
}

type ReponseLibre struct {
	ReponseValide string `json:"reponse_valide" jsonschema:"required"`
}

type Lien struct {
	Mot     string `json:"mot" jsonschema:"required"`
	Reponse string `json:"reponse" jsonschema:"required"`
}

type Liens struct {
	Mots     []string `json:"mots" jsonschema:"required,minItems=2"`
	Reponses []string `json:"reponses" jsonschema:"required,minItems=2"`
	Liens    []Lien   `json:"liens" jsonschema:"required,minItems=2"`
}

type Chronologie struct {
	Mots         []string `json:"mots" jsonschema:"required,minItems=2"`
	OrdreCorrect []string `json:"ordre_correct" jsonschema:"required,minItems=2"`
}

type Qcm struct {
	Propositions    []string `json:"propositions" jsonschema:"required,minItems=2"`
	ReponsesValides []string `json:"reponses_valides" jsonschema:"required,minItems=1"`
}

type Enonce struct {
	Texte           string `json:"texte" jsonschema:"required"`
	ReponseCorrecte bool   `json:"reponse_correcte" jsonschema:"required"`
}

type VraiFaux struct {
	Enonces []Enonce `json:"enonces" jsonschema:"required,minItems=1"`
}

type Paire struct {
	Question string `json:"question" jsonschema:"required"`
	Reponse  string `json:"reponse" jsonschema:"required"`
}

type Memory struct {
	Paires []Paire `json:"paires" jsonschema:"required,minItems=2"`
}

type SimonElements string

const (
	SimonCouleurs     SimonElements = "couleurs"
	SimonChiffres     SimonElements = "chiffres"
	SimonLettres      SimonElements = "lettres"
	SimonSymboles     SimonElements = "symboles"
	SimonPersonnalise SimonElements = "personnalise"
)

const (
	SimonMinElements = 3
	SimonMaxElements = 10
)

// Simon only carries parameters; the sequence is drawn at play time.
type Simon struct {
	NombreElements int           `json:"nombre_elements" jsonschema:"required,minimum=3,maximum=10"`
	TypeElements   SimonElements `json:"type_elements" jsonschema:"required,enum=couleurs,enum=chiffres,enum=lettres,enum=symboles,enum=personnalise"`
	Elements       []string      `json:"elements,omitempty"`
}

type ImageInteractive struct {
	ImageURL               string `json:"image_url"`
	ImageWidth             int    `json:"image_width"`
	ImageHeight            int    `json:"image_height"`
	Zones                  []Zone `json:"zones"`
	RequireAllCorrectZones bool   `json:"require_all_correct_zones"`
}

// NaturalSize is the image size the zones were authored against.
func (m ImageInteractive) NaturalSize() geometry.Size {
	return geometry.Size{Width: float64(m.ImageWidth), Height: float64(m.ImageHeight)}
}

// Zone returns the zone with the given id.
func (m ImageInteractive) Zone(id string) (Zone, bool) {
	for _, z := range m.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Clone deep-copies zones so editors can hand the value out safely.
func (m ImageInteractive) Clone() ImageInteractive {
	out := m
	out.Zones = make([]Zone, len(m.Zones))
	for i, z := range m.Zones {
		out.Zones[i] = z.Clone()
	}
	return out
}

// Opaque carries metadata whose type name matched no kind. It marshals
// back to Raw unchanged.
type Opaque struct {
	TypeName string
	Raw      json.RawMessage
}

func (o Opaque) MarshalJSON() ([]byte, error) {
	if len(o.Raw) == 0 {
		return []byte("null"), nil
	}
	return o.Raw, nil
}

func (CaseVide) Kind() Kind         { return KindCaseVide }
func (CaseVideLegacy) Kind() Kind   { return KindCaseVide }
func (ReponseLibre) Kind() Kind     { return KindReponseLibre }
func (Liens) Kind() Kind            { return KindLiens }
func (Chronologie) Kind() Kind      { return KindChronologie }
func (Qcm) Kind() Kind              { return KindQcm }
func (VraiFaux) Kind() Kind         { return KindVraiFaux }
func (Memory) Kind() Kind           { return KindMemory }
func (Simon) Kind() Kind            { return KindSimon }
func (ImageInteractive) Kind() Kind { return KindImageInteractive }
func (Opaque) Kind() Kind           { return KindUnknown }

func (CaseVide) metadata()         {}
func (CaseVideLegacy) metadata()   {}
func (ReponseLibre) metadata()     {}
func (Liens) metadata()            {}
func (Chronologie) metadata()      {}
func (Qcm) metadata()              {}
func (VraiFaux) metadata()         {}
func (Memory) metadata()           {}
func (Simon) metadata()            {}
func (ImageInteractive) metadata() {}
func (Opaque) metadata()           {}

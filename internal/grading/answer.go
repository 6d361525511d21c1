package grading

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mind-engage/mindengage-games/internal/schema"
)

// Verdict is the outcome of a validation. Pending means there is not
// enough input to judge yet.
type Verdict int

const (
	Pending Verdict = iota
	Correct
	Incorrect
)

func verdictOf(ok bool) Verdict {
	if ok {
		return Correct
	}
	return Incorrect
}

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	}
	return "pending"
}

// Judged reports whether v is Correct or Incorrect.
func (v Verdict) Judged() bool { return v == Correct || v == Incorrect }

// MarshalJSON encodes Pending as null, Correct as true, Incorrect as false.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case Correct:
		return []byte("true"), nil
	case Incorrect:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (v *Verdict) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*v = Correct
	case "false":
		*v = Incorrect
	case "null":
		*v = Pending
	default:
		return fmt.Errorf("grading: invalid verdict %s", b)
	}
	return nil
}

// Answer is the pupil's input for one game. Concrete types below; the
// one to use depends on the metadata kind.
type Answer interface{}

// CaseVideAnswer maps a blank index to the word placed in it.
type CaseVideAnswer struct {
	Blanks map[int]string `json:"blanks"`
}

// TextAnswer serves ReponseLibre and the legacy single-blank CaseVide.
type TextAnswer struct {
	Text string `json:"text"`
}

// LiensAnswer maps each linked mot to its chosen reponse.
type LiensAnswer struct {
	Links map[string]string `json:"links"`
}

type ChronologieAnswer struct {
	Order []string `json:"order"`
}

type QcmAnswer struct {
	Selected []string `json:"selected"`
}

// VraiFauxAnswer is keyed by the position of the enonce in the metadata,
// not its display position.
type VraiFauxAnswer struct {
	Answers map[int]bool `json:"answers"`
}

type ImageAnswer struct {
	Clicked []string `json:"clicked"`
}

// DecodeAnswer reads the wire form of an answer for metadata m.
func DecodeAnswer(m schema.Metadata, raw json.RawMessage) (Answer, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	var (
		a   Answer
		err error
	)
	switch m.(type) {
	case schema.CaseVide:
		var v CaseVideAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.CaseVideLegacy, schema.ReponseLibre:
		var v TextAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.Liens:
		var v LiensAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.Chronologie:
		var v ChronologieAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.Qcm:
		var v QcmAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.VraiFaux:
		var v VraiFauxAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.ImageInteractive:
		var v ImageAnswer
		err = json.Unmarshal(raw, &v)
		a = v
	case schema.Memory, schema.Simon:
		return nil, ErrEmbeddedRule
	default:
		return nil, fmt.Errorf("%w: no answer shape for %T", ErrAnswerType, m)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrAnswerType, err)
	}
	return a, nil
}

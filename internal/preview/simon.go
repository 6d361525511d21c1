package preview

import (
	"fmt"
	"math/rand"

	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

var palettes = map[schema.SimonElements][]string{
	schema.SimonCouleurs: {"rouge", "bleu", "vert", "jaune", "orange", "violet"},
	schema.SimonChiffres: {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
	schema.SimonLettres:  {"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"},
	schema.SimonSymboles: {"★", "●", "▲", "■", "◆", "♥"},
}

// Palette is the set of buttons offered to the pupil. Custom elements
// fall back to colours when none are given.
func Palette(m schema.Simon) []string {
	if m.TypeElements == schema.SimonPersonnalise && len(m.Elements) > 0 {
		return append([]string(nil), m.Elements...)
	}
	if p, ok := palettes[m.TypeElements]; ok {
		return append([]string(nil), p...)
	}
	return append([]string(nil), palettes[schema.SimonCouleurs]...)
}

// SimonRound is the sequence-repeat game. The sequence has
// nombre_elements items drawn from the palette. Levels grow from one item
// to the whole sequence; the pupil repeats the shown prefix each level.
type SimonRound struct {
	palette  []string
	sequence []string
	level    int // length of the prefix being repeated
	pos      int // next index to press within the prefix
	outcome  grading.Verdict
}

func NewSimonRound(m schema.Simon, rng *rand.Rand) *SimonRound {
	n := m.NombreElements
	if n < schema.SimonMinElements {
		n = schema.SimonMinElements
	}
	if n > schema.SimonMaxElements {
		n = schema.SimonMaxElements
	}
	palette := Palette(m)
	seq := make([]string, n)
	for i := range seq {
		seq[i] = palette[rng.Intn(len(palette))]
	}
	return &SimonRound{palette: palette, sequence: seq, level: 1}
}

// PressResult tells the caller what to show next.
type PressResult struct {
	Accepted bool `json:"accepted"`
	LevelUp  bool `json:"level_up"`
	Done     bool `json:"done"`
	Level    int  `json:"level"`
}

// Press records one button. A wrong button ends the round as Incorrect;
// repeating the full sequence ends it as Correct.
func (r *SimonRound) Press(element string) (PressResult, error) {
	if r.Done() {
		return PressResult{Done: true, Level: r.level}, fmt.Errorf("%w: round is over", ErrInvalidMove)
	}
	if element != r.sequence[r.pos] {
		r.outcome = grading.Incorrect
		return PressResult{Done: true, Level: r.level}, nil
	}
	r.pos++
	res := PressResult{Accepted: true, Level: r.level}
	if r.pos < r.level {
		return res, nil
	}
	if r.level == len(r.sequence) {
		r.outcome = grading.Correct
		res.Done = true
		return res, nil
	}
	r.level++
	r.pos = 0
	res.LevelUp = true
	res.Level = r.level
	return res, nil
}

// Shown is the prefix the pupil must repeat at the current level.
func (r *SimonRound) Shown() []string {
	return append([]string(nil), r.sequence[:r.level]...)
}

func (r *SimonRound) Done() bool { return r.outcome.Judged() }

func (r *SimonRound) Outcome() grading.Verdict { return r.outcome }

type SimonView struct {
	Palette []string `json:"palette"`
	Shown   []string `json:"shown"`
	Level   int      `json:"level"`
	Length  int      `json:"length"`
	Pressed int      `json:"pressed"`
}

func (r *SimonRound) View() SimonView {
	return SimonView{Palette: r.palette, Shown: r.Shown(), Level: r.level, Length: len(r.sequence), Pressed: r.pos}
}

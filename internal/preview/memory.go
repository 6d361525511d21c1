package preview

import (
	"fmt"
	"math/rand"

	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

type Side string

const (
	SideQuestion Side = "question"
	SideReponse  Side = "reponse"
)

// Card is one face of a Memory pair. Pair is the index of the pair in the
// metadata; it is only exposed once the card is matched.
type Card struct {
	Text     string `json:"text"`
	Side     Side   `json:"side"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
	pair     int
}

// FlipResult describes what a single flip did.
type FlipResult struct {
	Index    int  `json:"index"`
	Matched  bool `json:"matched"`
	Mismatch bool `json:"mismatch"`
	Done     bool `json:"done"`
}

// MemoryBoard is the pairing game. It decides its own outcome: Correct
// once every pair is found. There is no losing state.
type MemoryBoard struct {
	cards   []Card
	open    []int // revealed, not matched
	pairs   int
	found   int
	flips   int
	outcome grading.Verdict
}

func NewMemoryBoard(m schema.Memory, rng *rand.Rand) *MemoryBoard {
	cards := make([]Card, 0, 2*len(m.Paires))
	for i, p := range m.Paires {
		cards = append(cards,
			Card{Text: p.Question, Side: SideQuestion, pair: i},
			Card{Text: p.Reponse, Side: SideReponse, pair: i},
		)
	}
	return &MemoryBoard{cards: shuffled(rng, cards), pairs: len(m.Paires)}
}

// Flip reveals card i. Two unmatched revealed cards stay face up until
// the next flip, which hides them first. Flipping a matched card, or the
// card already waiting for its partner, changes nothing.
func (b *MemoryBoard) Flip(i int) (FlipResult, error) {
	if i < 0 || i >= len(b.cards) {
		return FlipResult{}, fmt.Errorf("%w: card %d of %d", ErrInvalidMove, i, len(b.cards))
	}
	res := FlipResult{Index: i, Done: b.Done()}
	if b.Done() || b.cards[i].Matched {
		return res, nil
	}
	if len(b.open) == 2 {
		for _, j := range b.open {
			b.cards[j].Revealed = false
		}
		b.open = b.open[:0]
	}
	if b.cards[i].Revealed {
		return res, nil
	}
	b.flips++
	b.cards[i].Revealed = true
	b.open = append(b.open, i)
	if len(b.open) < 2 {
		return res, nil
	}

	first, second := b.open[0], b.open[1]
	if b.cards[first].pair != b.cards[second].pair {
		res.Mismatch = true
		return res, nil
	}
	b.cards[first].Matched = true
	b.cards[second].Matched = true
	b.open = b.open[:0]
	b.found++
	res.Matched = true
	if b.found == b.pairs {
		b.outcome = grading.Correct
	}
	res.Done = b.Done()
	return res, nil
}

func (b *MemoryBoard) Done() bool { return b.outcome.Judged() }

func (b *MemoryBoard) Outcome() grading.Verdict { return b.outcome }

// Cards returns a copy of the board; hidden cards have their text blanked.
func (b *MemoryBoard) Cards() []Card {
	out := make([]Card, len(b.cards))
	for i, c := range b.cards {
		if !c.Revealed && !c.Matched {
			c.Text = ""
		}
		out[i] = c
	}
	return out
}

// MemoryView is the JSON snapshot of a board.
type MemoryView struct {
	Cards []Card `json:"cards"`
	Pairs int    `json:"pairs"`
	Found int    `json:"found"`
	Flips int    `json:"flips"`
}

func (b *MemoryBoard) View() MemoryView {
	return MemoryView{Cards: b.Cards(), Pairs: b.pairs, Found: b.found, Flips: b.flips}
}

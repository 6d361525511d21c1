// Package preview runs one play of a game: user state, presentation
// shuffling and the one-shot submission state machine.
package preview

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/mind-engage/mindengage-games/internal/geometry"
	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

var (
	ErrSubmitted   = errors.New("preview: already submitted, reset to play again")
	ErrNotFound    = errors.New("preview: play not found")
	ErrInvalidMove = errors.New("preview: move does not apply to this game")
)

type State string

const (
	Unanswered State = "unanswered"
	Submitted  State = "submitted"
)

type Option func(*Session)

// WithRand fixes the shuffling source, mostly for tests.
func WithRand(rng *rand.Rand) Option { return func(s *Session) { s.rng = rng } }

func WithGrader(g grading.Grader) Option { return func(s *Session) { s.grader = g } }

// Session is a single play of one game. It is not safe for concurrent
// use; Hub serializes access.
type Session struct {
	meta    schema.Metadata
	grader  grading.Grader
	rng     *rand.Rand
	state   State
	verdict grading.Verdict

	// user state
	blanks     map[int]string
	text       string
	links      map[string]string
	order      []string
	selected   []string
	statements map[int]bool
	clicked    []string

	// presentation order
	bank       []string
	mots       []string
	reponses   []string
	statementO []int

	memory *MemoryBoard
	simon  *SimonRound
}

// NewSession opens a play of m.
func NewSession(m schema.Metadata, opts ...Option) *Session {
	s := &Session{meta: m}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = NewRand()
	}
	if s.grader == nil {
		s.grader = grading.NewGrader()
	}
	s.Open()
	return s
}

// Open is the transition into "open for play". It behaves like Reset.
func (s *Session) Open() { s.Reset() }

// Reset clears every answer, drops the verdict and reshuffles the
// presentation. The answer keys are never touched.
func (s *Session) Reset() {
	s.state = Unanswered
	s.verdict = grading.Pending
	s.blanks = map[int]string{}
	s.text = ""
	s.links = map[string]string{}
	s.order = nil
	s.selected = nil
	s.statements = map[int]bool{}
	s.clicked = nil
	s.bank, s.mots, s.reponses, s.statementO = nil, nil, nil, nil
	s.memory, s.simon = nil, nil

	switch m := s.meta.(type) {
	case schema.CaseVide:
		s.bank = shuffled(s.rng, m.BanqueMots)
	case schema.Liens:
		s.mots = shuffled(s.rng, m.Mots)
		s.reponses = shuffled(s.rng, m.Reponses)
	case schema.Chronologie:
		s.order = s.scrambled(m.Mots, m.OrdreCorrect)
	case schema.VraiFaux:
		s.statementO = shuffled(s.rng, indexes(len(m.Enonces)))
	case schema.Memory:
		s.memory = NewMemoryBoard(m, s.rng)
	case schema.Simon:
		s.simon = NewSimonRound(m, s.rng)
	}
}

// scrambled shuffles mots; a shuffle that lands on the solution is
// rotated by one so the exercise never opens solved.
func (s *Session) scrambled(mots, solution []string) []string {
	out := shuffled(s.rng, mots)
	if len(out) > 1 && slices.Equal(out, solution) {
		out = append(out[1:], out[0])
	}
	return out
}

func (s *Session) Metadata() schema.Metadata { return s.meta }
func (s *Session) State() State              { return s.state }
func (s *Session) Verdict() grading.Verdict  { return s.verdict }
func (s *Session) Memory() *MemoryBoard      { return s.memory }
func (s *Session) Simon() *SimonRound        { return s.simon }

// Submit validates the current answer. A Pending verdict keeps the
// session open so the pupil can keep answering.
func (s *Session) Submit() (grading.Verdict, error) {
	if s.state == Submitted {
		return s.verdict, ErrSubmitted
	}
	switch {
	case s.memory != nil:
		return s.settle(s.memory.Outcome()), nil
	case s.simon != nil:
		return s.settle(s.simon.Outcome()), nil
	}
	v, err := s.grader.Validate(s.meta, s.Answer())
	if err != nil {
		return grading.Pending, err
	}
	return s.settle(v), nil
}

func (s *Session) settle(v grading.Verdict) grading.Verdict {
	s.verdict = v
	if v.Judged() {
		s.state = Submitted
	}
	return v
}

// Answer assembles the user state into the answer type of the kind.
func (s *Session) Answer() grading.Answer {
	switch s.meta.(type) {
	case schema.CaseVide:
		return grading.CaseVideAnswer{Blanks: copyMap(s.blanks)}
	case schema.CaseVideLegacy, schema.ReponseLibre:
		return grading.TextAnswer{Text: s.text}
	case schema.Liens:
		return grading.LiensAnswer{Links: copyMap(s.links)}
	case schema.Chronologie:
		return grading.ChronologieAnswer{Order: slices.Clone(s.order)}
	case schema.Qcm:
		return grading.QcmAnswer{Selected: slices.Clone(s.selected)}
	case schema.VraiFaux:
		return grading.VraiFauxAnswer{Answers: copyMap(s.statements)}
	case schema.ImageInteractive:
		return grading.ImageAnswer{Clicked: slices.Clone(s.clicked)}
	}
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Session) editable() error {
	if s.state == Submitted {
		return ErrSubmitted
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidMove}, args...)...)
}

// SetBlank places word in blank index; an empty word clears it.
func (s *Session) SetBlank(index int, word string) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.CaseVide)
	if !ok {
		return invalid("SetBlank on %s", s.meta.Kind())
	}
	if !slices.ContainsFunc(m.CasesVides, func(b schema.Blank) bool { return b.Index == index }) {
		return invalid("no blank [%d]", index)
	}
	if word == "" {
		delete(s.blanks, index)
		return nil
	}
	s.blanks[index] = word
	return nil
}

func (s *Session) SetText(text string) error {
	if err := s.editable(); err != nil {
		return err
	}
	switch s.meta.(type) {
	case schema.CaseVideLegacy, schema.ReponseLibre:
		s.text = text
		return nil
	}
	return invalid("SetText on %s", s.meta.Kind())
}

// Link pairs mot with reponse. A reponse belongs to at most one mot, so
// an earlier link to it is dropped.
func (s *Session) Link(mot, reponse string) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.Liens)
	if !ok {
		return invalid("Link on %s", s.meta.Kind())
	}
	if !slices.Contains(m.Mots, mot) || !slices.Contains(m.Reponses, reponse) {
		return invalid("unknown link %q -> %q", mot, reponse)
	}
	for k, v := range s.links {
		if v == reponse {
			delete(s.links, k)
		}
	}
	s.links[mot] = reponse
	return nil
}

func (s *Session) Unlink(mot string) error {
	if err := s.editable(); err != nil {
		return err
	}
	if _, ok := s.meta.(schema.Liens); !ok {
		return invalid("Unlink on %s", s.meta.Kind())
	}
	delete(s.links, mot)
	return nil
}

// SetOrder replaces the arrangement; it must be a permutation of mots.
func (s *Session) SetOrder(order []string) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.Chronologie)
	if !ok {
		return invalid("SetOrder on %s", s.meta.Kind())
	}
	a, b := slices.Clone(order), slices.Clone(m.Mots)
	slices.Sort(a)
	slices.Sort(b)
	if !slices.Equal(a, b) {
		return invalid("order is not a permutation of the items")
	}
	s.order = slices.Clone(order)
	return nil
}

// Move drags the item at from to position to.
func (s *Session) Move(from, to int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if _, ok := s.meta.(schema.Chronologie); !ok {
		return invalid("Move on %s", s.meta.Kind())
	}
	if from < 0 || from >= len(s.order) || to < 0 || to >= len(s.order) {
		return invalid("move %d -> %d out of range", from, to)
	}
	item := s.order[from]
	s.order = slices.Delete(s.order, from, from+1)
	s.order = slices.Insert(s.order, to, item)
	return nil
}

func (s *Session) ToggleProposition(p string) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.Qcm)
	if !ok {
		return invalid("ToggleProposition on %s", s.meta.Kind())
	}
	if !slices.Contains(m.Propositions, p) {
		return invalid("unknown proposition %q", p)
	}
	s.selected = toggle(s.selected, p)
	return nil
}

// SetStatement answers enonce i, indexed as in the metadata.
func (s *Session) SetStatement(i int, value bool) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.VraiFaux)
	if !ok {
		return invalid("SetStatement on %s", s.meta.Kind())
	}
	if i < 0 || i >= len(m.Enonces) {
		return invalid("no statement %d", i)
	}
	s.statements[i] = value
	return nil
}

// ToggleZone adds or removes a zone from the clicked set.
func (s *Session) ToggleZone(id string) error {
	if err := s.editable(); err != nil {
		return err
	}
	m, ok := s.meta.(schema.ImageInteractive)
	if !ok {
		return invalid("ToggleZone on %s", s.meta.Kind())
	}
	if _, ok := m.Zone(id); !ok {
		return invalid("no zone %q", id)
	}
	s.clicked = toggle(s.clicked, id)
	return nil
}

// ClickAt hit-tests p, in displayed pixels, and toggles the zone under
// it. A click outside every zone changes nothing.
func (s *Session) ClickAt(l geometry.Layout, p geometry.Point) (string, bool, error) {
	if err := s.editable(); err != nil {
		return "", false, err
	}
	m, ok := s.meta.(schema.ImageInteractive)
	if !ok {
		return "", false, invalid("ClickAt on %s", s.meta.Kind())
	}
	id, hit := schema.HitTest(m.Zones, l, p)
	if !hit {
		return "", false, nil
	}
	s.clicked = toggle(s.clicked, id)
	return id, true, nil
}

// Flip plays one Memory card. Finding the last pair submits the session.
func (s *Session) Flip(i int) (FlipResult, error) {
	if err := s.editable(); err != nil {
		return FlipResult{}, err
	}
	if s.memory == nil {
		return FlipResult{}, invalid("Flip on %s", s.meta.Kind())
	}
	res, err := s.memory.Flip(i)
	if err == nil {
		s.settle(s.memory.Outcome())
	}
	return res, err
}

// Press plays one Simon button. The round's outcome submits the session.
func (s *Session) Press(element string) (PressResult, error) {
	if err := s.editable(); err != nil {
		return PressResult{}, err
	}
	if s.simon == nil {
		return PressResult{}, invalid("Press on %s", s.meta.Kind())
	}
	res, err := s.simon.Press(element)
	if err == nil {
		s.settle(s.simon.Outcome())
	}
	return res, err
}

// SetAnswer replaces the whole user state with a decoded answer, as sent
// by a client that keeps its own state.
func (s *Session) SetAnswer(a grading.Answer) error {
	if err := s.editable(); err != nil {
		return err
	}
	switch v := a.(type) {
	case grading.CaseVideAnswer:
		if _, ok := s.meta.(schema.CaseVide); ok {
			s.blanks = copyMap(v.Blanks)
			return nil
		}
	case grading.TextAnswer:
		if err := s.SetText(v.Text); err == nil {
			return nil
		}
	case grading.LiensAnswer:
		if _, ok := s.meta.(schema.Liens); ok {
			s.links = copyMap(v.Links)
			return nil
		}
	case grading.ChronologieAnswer:
		if _, ok := s.meta.(schema.Chronologie); ok {
			return s.SetOrder(v.Order)
		}
	case grading.QcmAnswer:
		if _, ok := s.meta.(schema.Qcm); ok {
			s.selected = slices.Clone(v.Selected)
			return nil
		}
	case grading.VraiFauxAnswer:
		if _, ok := s.meta.(schema.VraiFaux); ok {
			s.statements = copyMap(v.Answers)
			return nil
		}
	case grading.ImageAnswer:
		if _, ok := s.meta.(schema.ImageInteractive); ok {
			s.clicked = slices.Clone(v.Clicked)
			return nil
		}
	}
	return invalid("%T for %s", a, s.meta.Kind())
}

func toggle(xs []string, x string) []string {
	if i := slices.Index(xs, x); i >= 0 {
		return slices.Delete(xs, i, i+1)
	}
	return append(xs, x)
}

// Presentation is the shuffled display order of a play.
type Presentation struct {
	WordBank   []string `json:"word_bank,omitempty"`
	Mots       []string `json:"mots,omitempty"`
	Reponses   []string `json:"reponses,omitempty"`
	Statements []int    `json:"statements,omitempty"`
}

// View is the JSON snapshot of a session served to the pupil. Game holds
// the redacted metadata.
type View struct {
	Kind         schema.Kind     `json:"kind"`
	State        State           `json:"state"`
	Verdict      grading.Verdict `json:"verdict"`
	Game         any             `json:"game"`
	Presentation Presentation    `json:"presentation"`
	Answer       grading.Answer  `json:"answer,omitempty"`
	Memory       *MemoryView     `json:"memory,omitempty"`
	Simon        *SimonView      `json:"simon,omitempty"`
}

func (s *Session) View() View {
	v := View{
		Kind:    s.meta.Kind(),
		State:   s.state,
		Verdict: s.verdict,
		Game:    schema.Redact(s.meta),
		Presentation: Presentation{
			WordBank:   s.bank,
			Mots:       s.mots,
			Reponses:   s.reponses,
			Statements: s.statementO,
		},
		Answer: s.Answer(),
	}
	// the game view lists what this play shows, in the play's order
	switch g := v.Game.(type) {
	case schema.CaseVideView:
		g.BanqueMots = slices.Clone(s.bank)
		v.Game = g
	case schema.LiensView:
		g.Mots, g.Reponses = slices.Clone(s.mots), slices.Clone(s.reponses)
		v.Game = g
	}
	if s.memory != nil {
		mv := s.memory.View()
		v.Memory = &mv
	}
	if s.simon != nil {
		sv := s.simon.View()
		v.Simon = &sv
	}
	return v
}

package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/mind-engage/mindengage-games/internal/schema"
)

func mustValidate(t *testing.T, g Grader, m schema.Metadata, a Answer) Verdict {
	t.Helper()
	v, err := g.Validate(m, a)
	if err != nil {
		t.Fatalf("Validate(%T, %T): %v", m, a, err)
	}
	return v
}

func TestCaseVide(t *testing.T) {
	g := NewGrader()
	m := schema.CaseVide{
		Texte:      "Le [1] mange une [2].",
		CasesVides: []schema.Blank{{Index: 1, ReponseCorrecte: "chat"}, {Index: 2, ReponseCorrecte: "Souris"}},
		BanqueMots: []string{"chat", "Souris"},
	}
	cases := []struct {
		name   string
		blanks map[int]string
		want   Verdict
	}{
		{"empty", nil, Pending},
		{"one missing", map[int]string{1: "chat"}, Pending},
		{"one blank", map[int]string{1: "chat", 2: "   "}, Pending},
		{"correct folded", map[int]string{1: " CHAT ", 2: "souris"}, Correct},
		{"wrong", map[int]string{1: "chien", 2: "souris"}, Incorrect},
		{"extra keys ignored", map[int]string{1: "chat", 2: "souris", 9: "x"}, Correct},
	}
	for _, c := range cases {
		if got := mustValidate(t, g, m, CaseVideAnswer{Blanks: c.blanks}); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestCaseVideLegacy(t *testing.T) {
	g := NewGrader()
	m := schema.CaseVideLegacy{DebutPhrase: "La capitale est", ReponseValide: "Paris"}
	if got := mustValidate(t, g, m, TextAnswer{Text: "  paris"}); got != Correct {
		t.Errorf("got %v", got)
	}
	if got := mustValidate(t, g, m, TextAnswer{Text: "Lyon"}); got != Incorrect {
		t.Errorf("got %v", got)
	}
	if got := mustValidate(t, g, m, TextAnswer{}); got != Pending {
		t.Errorf("got %v", got)
	}
	if got := mustValidate(t, g, schema.CaseVideLegacy{}, TextAnswer{Text: "x"}); got != Pending {
		t.Errorf("missing key should be pending, got %v", got)
	}
}

func TestReponseLibreFolding(t *testing.T) {
	g := NewGrader()
	m := schema.ReponseLibre{ReponseValide: "Le  Petit\tPrince"}
	if got := mustValidate(t, g, m, TextAnswer{Text: "le petit prince "}); got != Correct {
		t.Errorf("got %v", got)
	}
	// composed and decomposed é fold to the same key
	m = schema.ReponseLibre{ReponseValide: "été"}
	if got := mustValidate(t, g, m, TextAnswer{Text: "e\u0301te\u0301"}); got != Correct {
		t.Errorf("NFC: got %v", got)
	}
	if got := mustValidate(t, g, m, TextAnswer{Text: "ete"}); got != Incorrect {
		t.Errorf("accents are significant, got %v", got)
	}
}

func TestReponseLibreEditDistance(t *testing.T) {
	m := schema.ReponseLibre{ReponseValide: "photosynthese"}
	if got := mustValidate(t, NewGrader(), m, TextAnswer{Text: "photosyntese"}); got != Incorrect {
		t.Errorf("exact by default, got %v", got)
	}
	if got := mustValidate(t, NewGrader(WithMaxEditDistance(1)), m, TextAnswer{Text: "photosyntese"}); got != Correct {
		t.Errorf("one edit allowed, got %v", got)
	}
	if got := mustValidate(t, NewGrader(WithMaxEditDistance(1)), m, TextAnswer{Text: "fotosyntese"}); got != Incorrect {
		t.Errorf("two edits, got %v", got)
	}
}

func TestLiensSetOfPairs(t *testing.T) {
	g := NewGrader()
	m := schema.Liens{
		Mots:     []string{"chat", "chien"},
		Reponses: []string{"miaou", "ouaf"},
		Liens:    []schema.Lien{{Mot: "chat", Reponse: "miaou"}, {Mot: "chien", Reponse: "ouaf"}},
	}
	cases := []struct {
		links map[string]string
		want  Verdict
	}{
		{nil, Pending},
		{map[string]string{"chien": "ouaf", "chat": "miaou"}, Correct},
		{map[string]string{"chat": "miaou"}, Incorrect},
		{map[string]string{"chat": "ouaf", "chien": "miaou"}, Incorrect},
	}
	for i, c := range cases {
		if got := mustValidate(t, g, m, LiensAnswer{Links: c.links}); got != c.want {
			t.Errorf("case %d: got %v want %v", i, got, c.want)
		}
	}
}

// Chronologie: correct iff the submitted list equals ordre_correct
// element for element.
func TestChronologieOrderProperty(t *testing.T) {
	g := NewGrader()
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 300; iter++ {
		n := 2 + rng.Intn(6)
		key := make([]string, n)
		for i := range key {
			key[i] = fmt.Sprintf("w%d", i)
		}
		m := schema.Chronologie{Mots: key, OrdreCorrect: key}
		order := append([]string(nil), key...)
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		same := true
		for i := range order {
			if order[i] != key[i] {
				same = false
			}
		}
		got := mustValidate(t, g, m, ChronologieAnswer{Order: order})
		if got != verdictOf(same) {
			t.Fatalf("order %v key %v: got %v", order, key, got)
		}
	}
	m := schema.Chronologie{Mots: []string{"a", "b"}, OrdreCorrect: []string{"a", "b"}}
	if got := mustValidate(t, g, m, ChronologieAnswer{Order: []string{"a"}}); got != Incorrect {
		t.Errorf("short order: got %v", got)
	}
}

// Qcm: correct iff the selected set equals reponses_valides as a set.
func TestQcmSetProperty(t *testing.T) {
	g := NewGrader()
	rng := rand.New(rand.NewSource(11))
	props := []string{"a", "b", "c", "d", "e"}
	subset := func() []string {
		var out []string
		for _, p := range props {
			if rng.Intn(2) == 0 {
				out = append(out, p)
			}
		}
		return out
	}
	for iter := 0; iter < 500; iter++ {
		key, sel := subset(), subset()
		if len(key) == 0 || len(sel) == 0 {
			continue
		}
		// order and repetition of the selection do not matter
		dup := append(append([]string(nil), sel...), sel[0])
		rng.Shuffle(len(dup), func(i, j int) { dup[i], dup[j] = dup[j], dup[i] })

		want := Incorrect
		if fmt.Sprint(key) == fmt.Sprint(sel) {
			want = Correct
		}
		m := schema.Qcm{Propositions: props, ReponsesValides: key}
		if got := mustValidate(t, g, m, QcmAnswer{Selected: dup}); got != want {
			t.Fatalf("key %v selected %v: got %v want %v", key, dup, got, want)
		}
	}
	if got := mustValidate(t, g, schema.Qcm{Propositions: props, ReponsesValides: []string{"a"}}, QcmAnswer{}); got != Pending {
		t.Errorf("no selection: got %v", got)
	}
}

func TestVraiFaux(t *testing.T) {
	g := NewGrader()
	m := schema.VraiFaux{Enonces: []schema.Enonce{{Texte: "a", ReponseCorrecte: true}, {Texte: "b", ReponseCorrecte: false}}}
	if got := mustValidate(t, g, m, VraiFauxAnswer{Answers: map[int]bool{0: true}}); got != Pending {
		t.Errorf("partial: got %v", got)
	}
	if got := mustValidate(t, g, m, VraiFauxAnswer{Answers: map[int]bool{0: true, 1: false}}); got != Correct {
		t.Errorf("got %v", got)
	}
	if got := mustValidate(t, g, m, VraiFauxAnswer{Answers: map[int]bool{0: true, 1: true}}); got != Incorrect {
		t.Errorf("got %v", got)
	}
}

// ImageInteractive: with require-all the clicked set must equal the correct
// set; otherwise at least one correct and no incorrect click is enough.
func TestImageInteractivePolicies(t *testing.T) {
	g := NewGrader()
	zones := []schema.Zone{
		{ID: "a", IsCorrect: true, Shape: schema.Polygon{}},
		{ID: "b", IsCorrect: true, Shape: schema.Polygon{}},
		{ID: "c", IsCorrect: false, Shape: schema.Polygon{}},
		{ID: "d", IsCorrect: false, Shape: schema.Polygon{}},
	}
	ids := []string{"a", "b", "c", "d", "ghost"}
	correct := map[string]bool{"a": true, "b": true}

	for mask := 1; mask < 1<<len(ids); mask++ {
		var clicked []string
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				clicked = append(clicked, id)
			}
		}
		hits, misses := 0, 0
		for _, id := range clicked {
			if correct[id] {
				hits++
			} else {
				misses++
			}
		}

		all := schema.ImageInteractive{Zones: zones, RequireAllCorrectZones: true}
		wantAll := verdictOf(hits == len(correct) && misses == 0)
		if got := mustValidate(t, g, all, ImageAnswer{Clicked: clicked}); got != wantAll {
			t.Errorf("require-all %v: got %v want %v", clicked, got, wantAll)
		}

		some := schema.ImageInteractive{Zones: zones, RequireAllCorrectZones: false}
		wantAny := verdictOf(hits > 0 && misses == 0)
		if got := mustValidate(t, g, some, ImageAnswer{Clicked: clicked}); got != wantAny {
			t.Errorf("at-least-one %v: got %v want %v", clicked, got, wantAny)
		}
	}

	if got := mustValidate(t, g, schema.ImageInteractive{Zones: zones}, ImageAnswer{}); got != Pending {
		t.Errorf("no click: got %v", got)
	}
	noKey := schema.ImageInteractive{Zones: []schema.Zone{{ID: "c", Shape: schema.Polygon{}}}}
	if got := mustValidate(t, g, noKey, ImageAnswer{Clicked: []string{"c"}}); got != Pending {
		t.Errorf("no correct zone: got %v", got)
	}
}

func TestEmbeddedAndUnknown(t *testing.T) {
	g := NewGrader()
	for _, m := range []schema.Metadata{schema.Memory{}, schema.Simon{}} {
		if _, err := g.Validate(m, nil); !errors.Is(err, ErrEmbeddedRule) {
			t.Errorf("%T: err = %v", m, err)
		}
	}
	if v, err := g.Validate(schema.Opaque{TypeName: "x"}, nil); v != Pending || err != nil {
		t.Errorf("opaque: %v, %v", v, err)
	}
	if _, err := g.Validate(schema.Qcm{}, TextAnswer{}); !errors.Is(err, ErrAnswerType) {
		t.Errorf("wrong answer type: err = %v", err)
	}
}

func TestDecodeAnswer(t *testing.T) {
	g := NewGrader()
	m := schema.CaseVide{Texte: "[1]", CasesVides: []schema.Blank{{Index: 1, ReponseCorrecte: "x"}}, BanqueMots: []string{"x"}}
	a, err := DecodeAnswer(m, json.RawMessage(`{"blanks":{"1":"X"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustValidate(t, g, m, a); got != Correct {
		t.Errorf("got %v", got)
	}

	vf := schema.VraiFaux{Enonces: []schema.Enonce{{Texte: "a", ReponseCorrecte: true}}}
	a, err = DecodeAnswer(vf, json.RawMessage(`{"answers":{"0":true}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustValidate(t, g, vf, a); got != Correct {
		t.Errorf("got %v", got)
	}

	if _, err := DecodeAnswer(schema.Qcm{}, nil); err != nil {
		t.Errorf("empty body should decode to an empty answer: %v", err)
	}
	if _, err := DecodeAnswer(schema.Qcm{}, json.RawMessage(`{"selected":"a"}`)); err == nil {
		t.Error("expected decode error")
	}
	if _, err := DecodeAnswer(schema.Simon{}, nil); !errors.Is(err, ErrEmbeddedRule) {
		t.Errorf("simon: %v", err)
	}
}

func TestVerdictJSON(t *testing.T) {
	buf, _ := json.Marshal([]Verdict{Pending, Correct, Incorrect})
	if string(buf) != "[null,true,false]" {
		t.Errorf("got %s", buf)
	}
	var vs []Verdict
	if err := json.Unmarshal(buf, &vs); err != nil || vs[0] != Pending || vs[1] != Correct || vs[2] != Incorrect {
		t.Errorf("round trip: %v %v", vs, err)
	}
}

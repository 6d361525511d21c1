package schema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

var rawSamples = []string{
	``,
	`null`,
	`[]`,
	`"just text"`,
	`{}`,
	`{"unexpected": true, "texte": 3}`,
	`{"texte":"Le [1] mange une [2].","cases_vides":[{"index":1,"reponse_correcte":"chat"},{"index":"2","reponse_correcte":"souris"}],"banque_mots":["chat","souris","chien"]}`,
	`{"debut_phrase":"La capitale est","fin_phrase":".","reponse_valide":"Paris"}`,
	`{"reponse_valide":"  Paris "}`,
	`{"mots":["chat","chien"],"reponses":["miaou","ouaf"],"liens":[{"mot":"chat","reponse":"miaou"},{"mot":"chien","reponse":"ouaf"}]}`,
	`{"mots":["b","a","c"],"ordre_correct":["a","b","c"]}`,
	`{"propositions":["2","3","4"],"reponses_valides":"4"}`,
	`{"enonces":[{"texte":"Le ciel est bleu","reponse_correcte":"vrai"},{"texte":"2+2=5","reponse_correcte":false}]}`,
	`{"paires":[{"question":"1+1","reponse":"2"},{"question":2,"reponse":"3"}]}`,
	`{"nombre_elements":42,"type_elements":"Personnalisé","elements":["a","b","c"]}`,
	`{"nombre_elements":"5","type_elements":"nope"}`,
	`{"image_url":"https://x/img.png","image_width":800,"image_height":"600","zones":[` +
		`{"id":"a","is_correct":true,"x":0.1,"y":0.1,"width":0.2,"height":0.2},` +
		`{"is_correct":"true","points":[{"x":0,"y":0},{"x":1.5,"y":0},[1,1]]},` +
		`{"id":"c","x":0.9,"y":0.9,"width":0.5,"height":0.5,"points":[{"x":0,"y":0}]},` +
		`{"id":"d","x":0.1,"points":[{"x":0.1,"y":0.1},{"x":0.2,"y":0.1},{"x":0.2,"y":0.2}]},` +
		`{"id":"e"}]}`,
	`{"image_url":"u","require_all_correct_zones":false}`,
}

var typeNames = []string{
	"Case vide", "Réponse libre", "Liens", "Chronologie", "QCM",
	"Vrai/Faux", "Memory", "Simon", "Image interactive", "Mots croisés",
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, name := range typeNames {
		for _, raw := range rawSamples {
			once := Normalize(name, []byte(raw))
			buf, err := json.Marshal(once)
			if err != nil {
				t.Fatalf("%s %q: marshal: %v", name, raw, err)
			}
			twice := Normalize(name, buf)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s %q: not idempotent\n once: %#v\ntwice: %#v", name, raw, once, twice)
			}
		}
	}
}

func TestNormalizeDefaultsToEmptyCollections(t *testing.T) {
	q, ok := Normalize("qcm", nil).(Qcm)
	if !ok {
		t.Fatalf("expected Qcm")
	}
	if q.Propositions == nil || q.ReponsesValides == nil {
		t.Errorf("collections should be empty, not nil: %#v", q)
	}
	buf, _ := json.Marshal(q)
	if !strings.Contains(string(buf), `"propositions":[]`) {
		t.Errorf("expected [] in json, got %s", buf)
	}
}

func TestLookupFolds(t *testing.T) {
	cases := map[string]Kind{
		"case vide":         KindCaseVide,
		"CASE_VIDE":         KindCaseVide,
		"reponse libre":     KindReponseLibre,
		"Réponse Libre":     KindReponseLibre,
		"vrai/faux":         KindVraiFaux,
		"Vrai-Faux":         KindVraiFaux,
		"qcm":               KindQcm,
		"image_interactive": KindImageInteractive,
		"Image Interactive": KindImageInteractive,
	}
	for in, want := range cases {
		got, ok := Lookup(in)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := Lookup("sudoku"); ok {
		t.Error("sudoku should be unknown")
	}
}

func TestCaseVideLegacyDetection(t *testing.T) {
	m := Normalize("Case vide", []byte(`{"debut_phrase":"A","fin_phrase":"C","reponse_valide":"B"}`))
	legacy, ok := m.(CaseVideLegacy)
	if !ok {
		t.Fatalf("expected legacy variant, got %T", m)
	}
	if legacy.ReponseValide != "B" {
		t.Errorf("reponse_valide = %q", legacy.ReponseValide)
	}

	// a row carrying both shapes resolves to the newer one
	m = Normalize("Case vide", []byte(`{"debut_phrase":"A","texte":"[1]","cases_vides":[{"index":1,"reponse_correcte":"x"}],"banque_mots":["x"]}`))
	if _, ok := m.(CaseVide); !ok {
		t.Fatalf("mixed shape should resolve to CaseVide, got %T", m)
	}
}

func TestUnknownTypeIsOpaque(t *testing.T) {
	raw := `{ "grid": [[1, 2], [3, 4]] }`
	m := Normalize("Mots croisés", []byte(raw))
	o, ok := m.(Opaque)
	if !ok {
		t.Fatalf("expected Opaque, got %T", m)
	}
	if o.TypeName != "Mots croisés" || string(o.Raw) != `{"grid":[[1,2],[3,4]]}` {
		t.Errorf("opaque = %+v (%s)", o, o.Raw)
	}
	bad := Normalize("whatever", []byte("{not json"))
	buf, err := json.Marshal(bad)
	if err != nil || string(buf) != `"{not json"` {
		t.Errorf("invalid raw should be carried as a string, got %s, %v", buf, err)
	}
}

func TestZoneShapeResolution(t *testing.T) {
	m := Normalize("Image interactive", []byte(rawSamples[len(rawSamples)-2])).(ImageInteractive)
	if !m.RequireAllCorrectZones {
		t.Error("require_all_correct_zones should default to true")
	}
	if m.ImageHeight != 600 {
		t.Errorf("image_height = %d", m.ImageHeight)
	}
	want := []struct {
		id   string
		rect bool
	}{
		{"a", true},
		{"zone-2", false},
		{"c", true},
		{"d", false},
		{"e", false},
	}
	if len(m.Zones) != len(want) {
		t.Fatalf("zones = %d", len(m.Zones))
	}
	for i, w := range want {
		z := m.Zones[i]
		if z.ID != w.id {
			t.Errorf("zone %d id = %q want %q", i, z.ID, w.id)
		}
		_, isRect := z.Shape.(Rectangle)
		if isRect != w.rect {
			t.Errorf("zone %s rect=%v want %v", z.ID, isRect, w.rect)
		}
	}
	poly := m.Zones[1].Shape.(Polygon)
	if poly.Points[1] != (geometry.Point{X: 1, Y: 0}) {
		t.Errorf("points should be clamped, got %+v", poly.Points[1])
	}
	if !m.Zones[1].IsCorrect {
		t.Error(`"true" should read as true`)
	}
	r := m.Zones[2].Shape.(Rectangle)
	if r.X+r.Width > 1 || r.Y+r.Height > 1 {
		t.Errorf("rectangle should be clamped into the unit square: %+v", r.Rect)
	}
}

func TestSimonGuards(t *testing.T) {
	s := Normalize("simon", []byte(`{"nombre_elements":42,"type_elements":"Personnalisé","elements":["a"]}`)).(Simon)
	if s.NombreElements != SimonMaxElements || s.TypeElements != SimonPersonnalise {
		t.Errorf("simon = %+v", s)
	}
	s = Normalize("simon", []byte(`{}`)).(Simon)
	if s.NombreElements != SimonMinElements || s.TypeElements != SimonCouleurs {
		t.Errorf("simon defaults = %+v", s)
	}
}

func TestNormalizeValue(t *testing.T) {
	m := NormalizeValue("Chronologie", map[string]any{"mots": []string{"b", "a"}, "ordre_correct": []string{"a", "b"}})
	c, ok := m.(Chronologie)
	if !ok || len(c.OrdreCorrect) != 2 || c.OrdreCorrect[0] != "a" {
		t.Errorf("NormalizeValue = %#v", m)
	}
}

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

type normalizer func(o object) Metadata

var normalizers = map[Kind]normalizer{
	KindCaseVide:         normalizeCaseVide,
	KindReponseLibre:     normalizeReponseLibre,
	KindLiens:            normalizeLiens,
	KindChronologie:      normalizeChronologie,
	KindQcm:              normalizeQcm,
	KindVraiFaux:         normalizeVraiFaux,
	KindMemory:           normalizeMemory,
	KindSimon:            normalizeSimon,
	KindImageInteractive: normalizeImageInteractive,
}

// Normalize turns raw metadata into the canonical variant for typeName.
// It never fails: missing or mistyped fields become zero values and empty
// collections, and an unknown type name yields Opaque with raw untouched.
// Normalize(name, json(Normalize(name, raw))) equals Normalize(name, raw).
func Normalize(typeName string, raw []byte) Metadata {
	k, ok := Lookup(typeName)
	if !ok {
		return opaque(typeName, raw)
	}
	return NormalizeKind(k, raw)
}

// NormalizeKind is Normalize for an already resolved kind.
func NormalizeKind(k Kind, raw []byte) Metadata {
	n, ok := normalizers[k]
	if !ok {
		return opaque(string(k), raw)
	}
	return n(parseObject(raw))
}

// NormalizeValue accepts any JSON-marshalable value, e.g. a decoded
// map[string]any coming from a request body.
func NormalizeValue(typeName string, v any) Metadata {
	raw, err := json.Marshal(v)
	if err != nil {
		return opaque(typeName, nil)
	}
	return Normalize(typeName, raw)
}

func opaque(typeName string, raw []byte) Metadata {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Opaque{TypeName: typeName, Raw: json.RawMessage("null")}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		// not JSON at all; keep it displayable as a string
		s, _ := json.Marshal(string(raw))
		return Opaque{TypeName: typeName, Raw: s}
	}
	return Opaque{TypeName: typeName, Raw: buf.Bytes()}
}

// ---- per-kind normalizers ----

func normalizeCaseVide(o object) Metadata {
	if o.has("debut_phrase") && !o.has("texte") && !o.has("cases_vides") {
		return CaseVideLegacy{
			DebutPhrase:   o.str("debut_phrase"),
			FinPhrase:     o.str("fin_phrase"),
			ReponseValide: o.str("reponse_valide"),
		}
	}
	blanks := []Blank{}
	for _, b := range o.objects("cases_vides") {
		idx, _ := b.integer("index")
		blanks = append(blanks, Blank{Index: idx, ReponseCorrecte: b.str("reponse_correcte")})
	}
	return CaseVide{
		Texte:      o.str("texte"),
		CasesVides: blanks,
		BanqueMots: o.strs("banque_mots"),
	}
}

func normalizeReponseLibre(o object) Metadata {
	return ReponseLibre{ReponseValide: o.str("reponse_valide")}
}

func normalizeLiens(o object) Metadata {
	liens := []Lien{}
	for _, l := range o.objects("liens") {
		liens = append(liens, Lien{Mot: l.str("mot"), Reponse: l.str("reponse")})
	}
	return Liens{Mots: o.strs("mots"), Reponses: o.strs("reponses"), Liens: liens}
}

func normalizeChronologie(o object) Metadata {
	return Chronologie{Mots: o.strs("mots"), OrdreCorrect: o.strs("ordre_correct")}
}

func normalizeQcm(o object) Metadata {
	return Qcm{Propositions: o.strs("propositions"), ReponsesValides: o.strs("reponses_valides")}
}

func normalizeVraiFaux(o object) Metadata {
	enonces := []Enonce{}
	for _, e := range o.objects("enonces") {
		enonces = append(enonces, Enonce{Texte: e.str("texte"), ReponseCorrecte: e.boolean("reponse_correcte", false)})
	}
	return VraiFaux{Enonces: enonces}
}

func normalizeMemory(o object) Metadata {
	paires := []Paire{}
	for _, p := range o.objects("paires") {
		paires = append(paires, Paire{Question: p.str("question"), Reponse: p.str("reponse")})
	}
	return Memory{Paires: paires}
}

var simonElements = map[string]SimonElements{
	string(SimonCouleurs):     SimonCouleurs,
	string(SimonChiffres):     SimonChiffres,
	string(SimonLettres):      SimonLettres,
	string(SimonSymboles):     SimonSymboles,
	string(SimonPersonnalise): SimonPersonnalise,
}

func normalizeSimon(o object) Metadata {
	n, ok := o.integer("nombre_elements")
	if !ok || n < SimonMinElements {
		n = SimonMinElements
	}
	if n > SimonMaxElements {
		n = SimonMaxElements
	}
	typ, ok := simonElements[FoldName(o.str("type_elements"))]
	if !ok {
		typ = SimonCouleurs
	}
	elems := o.strs("elements")
	if len(elems) == 0 {
		elems = nil
	}
	return Simon{NombreElements: n, TypeElements: typ, Elements: elems}
}

func normalizeImageInteractive(o object) Metadata {
	w, _ := o.integer("image_width")
	h, _ := o.integer("image_height")
	zones := []Zone{}
	for i, z := range o.objects("zones") {
		zones = append(zones, normalizeZone(z, i))
	}
	return ImageInteractive{
		ImageURL:               o.str("image_url"),
		ImageWidth:             w,
		ImageHeight:            h,
		Zones:                  zones,
		RequireAllCorrectZones: o.boolean("require_all_correct_zones", true),
	}
}

func normalizeZone(o object, i int) Zone {
	id := strings.TrimSpace(o.str("id"))
	if id == "" {
		id = fmt.Sprintf("zone-%d", i+1)
	}
	z := Zone{ID: id, Name: o.str("name"), IsCorrect: o.boolean("is_correct", false)}

	points := o.points("points")
	hasRect := o.has("x") || o.has("y") || o.has("width") || o.has("height")
	switch {
	case len(points) >= 3 || !hasRect:
		z.Shape = Polygon{Points: points}
	default:
		x, _ := o.number("x")
		y, _ := o.number("y")
		rw, _ := o.number("width")
		rh, _ := o.number("height")
		z.Shape = Rectangle{geometry.ClampRect(geometry.Rect{X: x, Y: y, Width: rw, Height: rh}, 0)}
	}
	return z
}

// ---- lenient JSON object access ----

type object map[string]any

func parseObject(raw []byte) object {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var o map[string]any
	if err := dec.Decode(&o); err != nil || o == nil {
		return object{}
	}
	return o
}

func (o object) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

func (o object) str(key string) string {
	s, _ := toString(o[key])
	return s
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// strs accepts an array of scalars or a single string; always non-nil.
func (o object) strs(key string) []string {
	out := []string{}
	switch t := o[key].(type) {
	case []any:
		for _, e := range t {
			if s, ok := toString(e); ok {
				out = append(out, s)
			}
		}
	case string:
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (o object) objects(key string) []object {
	arr, _ := o[key].([]any)
	out := make([]object, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func (o object) number(key string) (float64, bool) {
	return toNumber(o[key])
}

func toNumber(v any) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (o object) integer(key string) (int, bool) {
	f, ok := o.number(key)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func (o object) boolean(key string, def bool) bool {
	switch t := o[key].(type) {
	case bool:
		return t
	case string:
		switch FoldName(t) {
		case "true", "vrai", "oui", "1":
			return true
		case "false", "faux", "non", "0":
			return false
		}
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f != 0
		}
	}
	return def
}

// points reads [{x,y}] or [[x,y]] and clamps into the unit square.
func (o object) points(key string) []geometry.Point {
	arr, _ := o[key].([]any)
	out := make([]geometry.Point, 0, len(arr))
	for _, e := range arr {
		var x, y float64
		var okX, okY bool
		switch t := e.(type) {
		case map[string]any:
			x, okX = toNumber(t["x"])
			y, okY = toNumber(t["y"])
		case []any:
			if len(t) == 2 {
				x, okX = toNumber(t[0])
				y, okY = toNumber(t[1])
			}
		}
		if okX && okY {
			out = append(out, geometry.Point{X: geometry.Clamp01(x), Y: geometry.Clamp01(y)})
		}
	}
	return out
}

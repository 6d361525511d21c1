package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies a metadata variant. GameType names are mapped onto a
// Kind with Lookup; everything downstream dispatches on Kind only.
type Kind string

const (
	KindUnknown          Kind = ""
	KindCaseVide         Kind = "case_vide"
	KindReponseLibre     Kind = "reponse_libre"
	KindLiens            Kind = "liens"
	KindChronologie      Kind = "chronologie"
	KindQcm              Kind = "qcm"
	KindVraiFaux         Kind = "vrai_faux"
	KindMemory           Kind = "memory"
	KindSimon            Kind = "simon"
	KindImageInteractive Kind = "image_interactive"
)

var kinds = []Kind{
	KindCaseVide,
	KindReponseLibre,
	KindLiens,
	KindChronologie,
	KindQcm,
	KindVraiFaux,
	KindMemory,
	KindSimon,
	KindImageInteractive,
}

var displayNames = map[Kind]string{
	KindCaseVide:         "Case vide",
	KindReponseLibre:     "Réponse libre",
	KindLiens:            "Liens",
	KindChronologie:      "Chronologie",
	KindQcm:              "QCM",
	KindVraiFaux:         "Vrai/Faux",
	KindMemory:           "Memory",
	KindSimon:            "Simon",
	KindImageInteractive: "Image interactive",
}

// byFolded maps FoldName(display name) and FoldName(kind) to the kind.
var byFolded = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds)*2)
	for _, k := range kinds {
		m[FoldName(string(k))] = k
		m[FoldName(displayNames[k])] = k
	}
	return m
}()

// Kinds lists every known kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func (k Kind) DisplayName() string {
	if n, ok := displayNames[k]; ok {
		return n
	}
	return string(k)
}

// Lookup resolves a GameType name to its kind, ignoring case, accents,
// spaces and the separators _ - /.
func Lookup(typeName string) (Kind, bool) {
	k, ok := byFolded[FoldName(typeName)]
	return k, ok
}

// FoldName is the comparison key for type names and enum-like values.
func FoldName(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsSpace(r), r == '_', r == '-', r == '/':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package schema

import "strconv"

// Segment is a run of literal text or a blank of a CaseVide texte.
type Segment struct {
	Text  string `json:"text,omitempty"`
	Blank int    `json:"blank,omitempty"` // placeholder index; 0 for text
}

func (s Segment) IsBlank() bool { return s.Blank != 0 }

// Segments splits texte on its [n] placeholders, preserving order.
func Segments(texte string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(texte, -1) {
		n, err := strconv.Atoi(texte[loc[2]:loc[3]])
		if err != nil || n == 0 {
			continue
		}
		if loc[0] > last {
			out = append(out, Segment{Text: texte[last:loc[0]]})
		}
		out = append(out, Segment{Blank: n})
		last = loc[1]
	}
	if last < len(texte) {
		out = append(out, Segment{Text: texte[last:]})
	}
	return out
}

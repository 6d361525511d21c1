package game

import (
	"encoding/json"

	"github.com/mind-engage/mindengage-games/internal/schema"
)

// GameType names a metadata schema. Name is the dispatch key.
type GameType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Kind resolves the type name; unknown names give schema.KindUnknown.
func (t GameType) Kind() schema.Kind {
	k, _ := schema.Lookup(t.Name)
	return k
}

type Game struct {
	ID           string          `json:"id"`
	SubjectID    string          `json:"subject_id"`
	GameTypeID   string          `json:"game_type_id"`
	Name         string          `json:"name"`
	Instructions string          `json:"instructions,omitempty"`
	Question     string          `json:"question,omitempty"`
	Aides        []string        `json:"aides,omitempty"` // progressive hints
	Metadata     schema.Metadata `json:"metadata"`

	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// Draft is a generated game under review. It is never stored; saving a
// draft goes through Service.Create, which drops the temp fields.
type Draft struct {
	Game
	TypeName  string `json:"type_name"`
	TempID    string `json:"_tempId"`
	IsEditing bool   `json:"_isEditing"`
}

// NewGame is the input of Service.Create. Metadata is raw and gets
// normalized against the referenced type.
type NewGame struct {
	SubjectID    string
	GameTypeID   string
	Name         string
	Instructions string
	Question     string
	Aides        []string
	Metadata     json.RawMessage
}

// Patch carries the fields of a partial update; nil means unchanged.
type Patch struct {
	GameTypeID   *string
	Name         *string
	Instructions *string
	Question     *string
	Aides        *[]string
	Metadata     json.RawMessage
}

// Catalog is the list of known game types.
type Catalog []GameType

func (c Catalog) ByID(id string) (GameType, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return GameType{}, false
}

// ByName matches a type name the way metadata dispatch does: by kind when
// the name is a known kind, by folded name otherwise.
func (c Catalog) ByName(name string) (GameType, bool) {
	if k, ok := schema.Lookup(name); ok {
		for _, t := range c {
			if t.Kind() == k {
				return t, true
			}
		}
		return GameType{}, false
	}
	folded := schema.FoldName(name)
	for _, t := range c {
		if schema.FoldName(t.Name) == folded {
			return t, true
		}
	}
	return GameType{}, false
}

// DefaultTypes is one GameType per known kind, keyed by the kind itself.
func DefaultTypes() []GameType {
	out := make([]GameType, 0, len(schema.Kinds()))
	for _, k := range schema.Kinds() {
		out = append(out, GameType{ID: string(k), Name: k.DisplayName()})
	}
	return out
}

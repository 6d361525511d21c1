package schema

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/mind-engage/mindengage-games/internal/geometry"
)

// zoneDoc and imageDoc describe the flattened zone layout that Zone's
// MarshalJSON produces; Zone itself does not reflect usefully.
type zoneDoc struct {
	ID        string           `json:"id" jsonschema:"required"`
	Name      string           `json:"name,omitempty"`
	IsCorrect bool             `json:"is_correct" jsonschema:"required"`
	Points    []geometry.Point `json:"points,omitempty" jsonschema:"minItems=3"`
	X         float64          `json:"x,omitempty" jsonschema:"minimum=0,maximum=1"`
	Y         float64          `json:"y,omitempty" jsonschema:"minimum=0,maximum=1"`
	Width     float64          `json:"width,omitempty" jsonschema:"minimum=0,maximum=1"`
	Height    float64          `json:"height,omitempty" jsonschema:"minimum=0,maximum=1"`
}

type imageDoc struct {
	ImageURL               string    `json:"image_url" jsonschema:"required"`
	ImageWidth             int       `json:"image_width" jsonschema:"required,minimum=1"`
	ImageHeight            int       `json:"image_height" jsonschema:"required,minimum=1"`
	Zones                  []zoneDoc `json:"zones" jsonschema:"required,minItems=1"`
	RequireAllCorrectZones bool      `json:"require_all_correct_zones"`
}

var schemaTypes = map[Kind]reflect.Type{
	KindCaseVide:         reflect.TypeOf(CaseVide{}),
	KindReponseLibre:     reflect.TypeOf(ReponseLibre{}),
	KindLiens:            reflect.TypeOf(Liens{}),
	KindChronologie:      reflect.TypeOf(Chronologie{}),
	KindQcm:              reflect.TypeOf(Qcm{}),
	KindVraiFaux:         reflect.TypeOf(VraiFaux{}),
	KindMemory:           reflect.TypeOf(Memory{}),
	KindSimon:            reflect.TypeOf(Simon{}),
	KindImageInteractive: reflect.TypeOf(imageDoc{}),
}

// JSONSchema describes the canonical metadata of k. The generator gets one
// per allowed kind so its output lands in the right shape.
func JSONSchema(k Kind) (*jsonschema.Schema, error) {
	t, ok := schemaTypes[k]
	if !ok {
		return nil, fmt.Errorf("schema: no json schema for kind %q", k)
	}
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := reflector.ReflectFromType(t)
	if s == nil {
		return nil, fmt.Errorf("schema: reflect %s failed", t)
	}
	s.Version = ""
	s.Title = k.DisplayName()
	s.Description = fmt.Sprintf("Metadata of a %q exercise.", k.DisplayName())
	return s, nil
}

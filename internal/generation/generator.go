// Package generation produces draft games with an LLM collaborator, one
// call at a time, rotating the allowed types across the batch.
package generation

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// TypeSpec is an allowed game type as the generator sees it.
type TypeSpec struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema,omitempty"`
}

// Request is one generation call. An empty AllowedTypes leaves the choice
// of type to the generator.
type Request struct {
	Prompt       string     `json:"prompt"`
	AllowedTypes []TypeSpec `json:"allowed_types,omitempty"`
	Index        int        `json:"index"`
	Count        int        `json:"count"`
}

// Output is one generated game. Metadata is raw and untrusted.
type Output struct {
	TypeName     string          `json:"type_name"`
	Name         string          `json:"name,omitempty"`
	Question     string          `json:"question"`
	Instructions string          `json:"instructions"`
	Metadata     json.RawMessage `json:"metadata"`
	Hints        []string        `json:"hints"`
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Output, error)
}

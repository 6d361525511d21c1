package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

// Service is the authoring path in front of a Store: every metadata value
// it writes went through schema.Normalize and passed schema.Check.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

// ProblemsError carries the authoring problems that rejected a write.
type ProblemsError struct {
	Problems []schema.Problem
}

func (e *ProblemsError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Severity == schema.SeverityError {
			msgs = append(msgs, p.Field+": "+p.Message)
		}
	}
	return ErrInvalidMetadata.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ProblemsError) Unwrap() error { return ErrInvalidMetadata }

// SeedTypes registers DefaultTypes that are not in the catalog yet.
func (s *Service) SeedTypes(ctx context.Context) error {
	have, err := s.Types(ctx)
	if err != nil {
		return err
	}
	for _, t := range DefaultTypes() {
		if _, ok := have.ByName(t.Name); ok {
			continue
		}
		if err := s.store.PutType(ctx, t); err != nil {
			return fmt.Errorf("seed type %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Service) Types(ctx context.Context) (Catalog, error) {
	ts, err := s.store.ListTypes(ctx)
	return Catalog(ts), err
}

func (s *Service) typeOf(ctx context.Context, id string) (GameType, error) {
	types, err := s.Types(ctx)
	if err != nil {
		return GameType{}, err
	}
	t, ok := types.ByID(id)
	if !ok {
		return GameType{}, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	return t, nil
}

// Prepare normalizes raw metadata for a type and checks it. Warnings are
// returned alongside a nil error; errors yield a *ProblemsError.
func Prepare(t GameType, raw []byte) (schema.Metadata, []schema.Problem, error) {
	m := schema.Normalize(t.Name, raw)
	problems := schema.Check(m)
	if schema.HasErrors(problems) {
		return m, problems, &ProblemsError{Problems: problems}
	}
	return m, problems, nil
}

func (s *Service) Create(ctx context.Context, in NewGame) (Game, []schema.Problem, error) {
	t, err := s.typeOf(ctx, in.GameTypeID)
	if err != nil {
		return Game{}, nil, err
	}
	m, problems, err := Prepare(t, in.Metadata)
	if err != nil {
		return Game{}, problems, err
	}
	now := s.now().Unix()
	g := Game{
		ID:           s.newID(),
		SubjectID:    in.SubjectID,
		GameTypeID:   t.ID,
		Name:         in.Name,
		Instructions: in.Instructions,
		Question:     in.Question,
		Aides:        in.Aides,
		Metadata:     m,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return Game{}, problems, err
	}
	return g, problems, nil
}

func (s *Service) Get(ctx context.Context, id string) (Game, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListBySubject(ctx context.Context, subjectID string) ([]Game, error) {
	return s.store.ListBySubject(ctx, subjectID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Update applies p to the stored game. Metadata is replaced wholesale;
// changing the type without new metadata re-normalizes the current one
// under the new type.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Game, []schema.Problem, error) {
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return Game{}, nil, err
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Instructions != nil {
		g.Instructions = *p.Instructions
	}
	if p.Question != nil {
		g.Question = *p.Question
	}
	if p.Aides != nil {
		g.Aides = *p.Aides
	}

	var problems []schema.Problem
	retyped := p.GameTypeID != nil && *p.GameTypeID != g.GameTypeID
	if retyped || p.Metadata != nil {
		if retyped {
			g.GameTypeID = *p.GameTypeID
		}
		t, err := s.typeOf(ctx, g.GameTypeID)
		if err != nil {
			return Game{}, nil, err
		}
		raw := []byte(p.Metadata)
		if raw == nil {
			if raw, err = json.Marshal(g.Metadata); err != nil {
				return Game{}, nil, err
			}
		}
		if g.Metadata, problems, err = Prepare(t, raw); err != nil {
			return Game{}, problems, err
		}
	}

	g.UpdatedAt = s.now().Unix()
	if err := s.store.Update(ctx, g); err != nil {
		return Game{}, problems, err
	}
	return g, problems, nil
}

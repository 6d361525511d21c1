package generation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/rotation"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

var ErrCount = errors.New("generation: count out of range")

const DefaultMaxCount = 20

type Option func(*Batch)

// WithMaxCount bounds the number of items a single Run may request.
func WithMaxCount(n int) Option { return func(b *Batch) { b.maxCount = n } }

func WithIDs(f func() string) Option { return func(b *Batch) { b.newID = f } }

// Batch runs sequential generation against a fixed type catalog.
type Batch struct {
	gen      Generator
	types    game.Catalog
	maxCount int
	newID    func() string
}

func NewBatch(gen Generator, types game.Catalog, opts ...Option) *Batch {
	b := &Batch{gen: gen, types: types, maxCount: DefaultMaxCount, newID: uuid.NewString}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Result is the outcome of a batch. Failures are only reported in
// aggregate; the failed slots are simply missing from Drafts.
type Result struct {
	Drafts     []game.Draft `json:"drafts"`
	Requested  int          `json:"requested"`
	Failed     int          `json:"failed"`
	SomeFailed bool         `json:"some_failed"`
	Produced   []string     `json:"produced_type_ids"`
}

// Run issues count generation calls strictly one after another. Before
// each call the allowed types are recomputed from what the batch produced
// so far. A failed call is logged and skipped; it does not count as
// produced. Cancelling ctx stops the batch and returns what was produced
// with the context error.
func (b *Batch) Run(ctx context.Context, prompt string, count int, requestedTypeIDs []string) (Result, error) {
	if count < 1 || count > b.maxCount {
		return Result{}, fmt.Errorf("%w: %d (max %d)", ErrCount, count, b.maxCount)
	}
	for _, id := range requestedTypeIDs {
		if _, ok := b.types.ByID(id); !ok {
			return Result{}, fmt.Errorf("%w: %q", game.ErrUnknownType, id)
		}
	}

	res := Result{Requested: count, Drafts: []game.Draft{}, Produced: []string{}}
	specs := map[string]TypeSpec{}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		allowed := rotation.NextAllowedTypes(requestedTypeIDs, res.Produced)
		req := Request{Prompt: prompt, Index: i, Count: count}
		for _, id := range allowed {
			req.AllowedTypes = append(req.AllowedTypes, b.spec(specs, id))
		}

		d, err := b.generate(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			log.Printf("generation: item %d/%d failed: %v", i+1, count, err)
			res.Failed++
			continue
		}
		res.Drafts = append(res.Drafts, d)
		res.Produced = append(res.Produced, d.GameTypeID)
	}
	res.SomeFailed = res.Failed > 0
	return res, nil
}

func (b *Batch) generate(ctx context.Context, req Request) (game.Draft, error) {
	out, err := b.gen.Generate(ctx, req)
	if err != nil {
		return game.Draft{}, err
	}
	t, ok := b.types.ByName(out.TypeName)
	if !ok {
		return game.Draft{}, fmt.Errorf("%w: generator returned %q", game.ErrUnknownType, out.TypeName)
	}
	name := out.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", t.Name, req.Index+1)
	}
	return game.Draft{
		Game: game.Game{
			GameTypeID:   t.ID,
			Name:         name,
			Instructions: out.Instructions,
			Question:     out.Question,
			Aides:        out.Hints,
			Metadata:     schema.Normalize(t.Name, out.Metadata),
		},
		TypeName: t.Name,
		TempID:   b.newID(),
	}, nil
}

// spec builds the TypeSpec of a catalog id once per run.
func (b *Batch) spec(cache map[string]TypeSpec, id string) TypeSpec {
	if s, ok := cache[id]; ok {
		return s
	}
	t, _ := b.types.ByID(id)
	s := TypeSpec{ID: t.ID, Name: t.Name, Description: t.Description}
	if js, err := schema.JSONSchema(t.Kind()); err == nil {
		s.Schema = js
	}
	cache[id] = s
	return s
}

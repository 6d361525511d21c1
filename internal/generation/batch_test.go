package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

var catalog = game.Catalog{
	{ID: "t-qcm", Name: "QCM"},
	{ID: "t-vf", Name: "Vrai/Faux"},
	{ID: "t-chrono", Name: "Chronologie"},
}

// fakeGen answers with the first allowed type, or with pick when nothing
// is imposed. Calls listed in fail return an error.
type fakeGen struct {
	pick   string
	fail   map[int]bool
	calls  []Request
	onCall func(i int)
}

func (f *fakeGen) Generate(ctx context.Context, req Request) (Output, error) {
	i := len(f.calls)
	f.calls = append(f.calls, req)
	if f.onCall != nil {
		f.onCall(i)
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	if f.fail[i] {
		return Output{}, errors.New("llm unavailable")
	}
	name := f.pick
	if len(req.AllowedTypes) > 0 {
		name = req.AllowedTypes[0].Name
	}
	meta := `{"propositions":["a","b"],"reponses_valides":"a"}`
	return Output{TypeName: name, Question: fmt.Sprint("q", i), Metadata: json.RawMessage(meta), Hints: []string{"h"}}, nil
}

func seqIDs() func() string {
	n := 0
	return func() string { n++; return fmt.Sprintf("tmp-%d", n) }
}

func TestRunRotatesTypes(t *testing.T) {
	gen := &fakeGen{}
	res, err := NewBatch(gen, catalog, WithIDs(seqIDs())).Run(context.Background(), "histoire", 5, []string{"t-qcm", "t-vf"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"t-qcm", "t-vf", "t-qcm", "t-vf", "t-qcm"}
	if !reflect.DeepEqual(res.Produced, want) {
		t.Errorf("produced %v want %v", res.Produced, want)
	}
	if res.SomeFailed || res.Failed != 0 || len(res.Drafts) != 5 {
		t.Errorf("result = %+v", res)
	}
	// the first call offers both types, the second only the unused one
	if n := len(gen.calls[0].AllowedTypes); n != 2 {
		t.Errorf("first call allowed %d types", n)
	}
	if a := gen.calls[1].AllowedTypes; len(a) != 1 || a[0].ID != "t-vf" || a[0].Schema == nil {
		t.Errorf("second call allowed %+v", a)
	}
	for i, c := range gen.calls {
		if c.Index != i || c.Count != 5 || c.Prompt != "histoire" {
			t.Errorf("call %d = %+v", i, c)
		}
	}
}

func TestRunDrafts(t *testing.T) {
	gen := &fakeGen{pick: "qcm"}
	res, err := NewBatch(gen, catalog, WithIDs(seqIDs())).Run(context.Background(), "p", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(gen.calls[0].AllowedTypes) != 0 {
		t.Errorf("no restriction expected, got %v", gen.calls[0].AllowedTypes)
	}
	d := res.Drafts[0]
	if d.TempID != "tmp-1" || d.IsEditing || d.GameTypeID != "t-qcm" || d.TypeName != "QCM" || d.Name != "QCM 1" {
		t.Errorf("draft = %+v", d)
	}
	q, ok := d.Metadata.(schema.Qcm)
	if !ok || !reflect.DeepEqual(q.ReponsesValides, []string{"a"}) {
		t.Errorf("metadata not normalized: %#v", d.Metadata)
	}
	if !reflect.DeepEqual(d.Aides, []string{"h"}) || d.Question != "q0" {
		t.Errorf("draft fields = %+v", d)
	}

	raw, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	if m["_tempId"] != "tmp-1" || m["_isEditing"] != false {
		t.Errorf("draft json = %s", raw)
	}
}

func TestRunSkipsFailures(t *testing.T) {
	gen := &fakeGen{fail: map[int]bool{0: true, 3: true}}
	res, err := NewBatch(gen, catalog).Run(context.Background(), "p", 5, []string{"t-qcm", "t-vf"})
	if err != nil {
		t.Fatal(err)
	}
	// failed slots do not count as produced
	want := []string{"t-qcm", "t-vf", "t-qcm"}
	if !reflect.DeepEqual(res.Produced, want) {
		t.Errorf("produced %v want %v", res.Produced, want)
	}
	if res.Failed != 2 || !res.SomeFailed || len(res.Drafts) != 3 || res.Requested != 5 {
		t.Errorf("result = %+v", res)
	}
	if len(gen.calls) != 5 {
		t.Errorf("every slot is attempted once, got %d calls", len(gen.calls))
	}
}

func TestRunUnknownOutputTypeCountsAsFailure(t *testing.T) {
	gen := &fakeGen{pick: "Mots croisés"}
	res, err := NewBatch(gen, catalog).Run(context.Background(), "p", 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 2 || len(res.Drafts) != 0 || len(res.Produced) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	b := NewBatch(&fakeGen{}, catalog, WithMaxCount(3))
	for _, n := range []int{0, -1, 4} {
		if _, err := b.Run(context.Background(), "p", n, nil); !errors.Is(err, ErrCount) {
			t.Errorf("count %d: %v", n, err)
		}
	}
	if _, err := b.Run(context.Background(), "p", 1, []string{"t-qcm", "nope"}); !errors.Is(err, game.ErrUnknownType) {
		t.Errorf("unknown id: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGen{}
	gen.onCall = func(i int) {
		if i == 1 {
			cancel()
		}
	}
	res, err := NewBatch(gen, catalog).Run(ctx, "p", 5, []string{"t-qcm", "t-vf"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(gen.calls) != 2 || len(res.Drafts) != 1 || res.Failed != 0 {
		t.Errorf("calls=%d result=%+v", len(gen.calls), res)
	}
}

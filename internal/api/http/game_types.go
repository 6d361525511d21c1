package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

// GET /game-types
func ListTypesHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := svc.Types(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if types == nil {
			types = game.Catalog{}
		}
		writeJSON(w, http.StatusOK, types)
	}
}

func typeByName(w http.ResponseWriter, r *http.Request, svc *game.Service) (game.GameType, bool) {
	types, err := svc.Types(r.Context())
	if err != nil {
		writeErr(w, err)
		return game.GameType{}, false
	}
	t, ok := types.ByName(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown game type", http.StatusNotFound)
	}
	return t, ok
}

// GET /game-types/{name}/schema
func TypeSchemaHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := typeByName(w, r, svc)
		if !ok {
			return
		}
		s, err := schema.JSONSchema(t.Kind())
		if err != nil {
			http.Error(w, "no schema for "+t.Name, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// POST /game-types/{name}/normalize  raw metadata → canonical + problems.
// Nothing is stored.
func NormalizeHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := typeByName(w, r, svc)
		if !ok {
			return
		}
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m := schema.Normalize(t.Name, raw)
		problems := schema.Check(m)
		if problems == nil {
			problems = []schema.Problem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": t, "metadata": m, "problems": problems})
	}
}

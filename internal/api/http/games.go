package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/rbac"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

type createGameReq struct {
	SubjectID    string          `json:"subject_id" validate:"required,max=64"`
	GameTypeID   string          `json:"game_type_id" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=200"`
	Instructions string          `json:"instructions" validate:"max=2000"`
	Question     string          `json:"question" validate:"max=2000"`
	Aides        []string        `json:"aides" validate:"max=10,dive,max=500"`
	Metadata     json.RawMessage `json:"metadata" validate:"required"`
}

type patchGameReq struct {
	GameTypeID   *string         `json:"game_type_id" validate:"omitempty,min=1,max=64"`
	Name         *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Instructions *string         `json:"instructions" validate:"omitempty,max=2000"`
	Question     *string         `json:"question" validate:"omitempty,max=2000"`
	Aides        *[]string       `json:"aides" validate:"omitempty,max=10,dive,max=500"`
	Metadata     json.RawMessage `json:"metadata"`
}

// gameView is a game as served; Metadata is redacted for viewers
// without the answer key permission.
type gameView struct {
	game.Game
	Metadata any `json:"metadata"`
}

func viewOf(ctx context.Context, g game.Game) gameView {
	v := gameView{Game: g, Metadata: g.Metadata}
	if !rbac.Can(ctx, rbac.PermGameViewKey) {
		v.Metadata = schema.Redact(g.Metadata)
	}
	return v
}

type writeResult struct {
	Game     gameView         `json:"game"`
	Problems []schema.Problem `json:"problems"`
}

func resultOf(ctx context.Context, g game.Game, problems []schema.Problem) writeResult {
	if problems == nil {
		problems = []schema.Problem{}
	}
	return writeResult{Game: viewOf(ctx, g), Problems: problems}
}

// GET /subjects/{subjectID}/games
func ListGamesHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := svc.ListBySubject(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]gameView, 0, len(games))
		for _, g := range games {
			out = append(out, viewOf(r.Context(), g))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /games/{gameID}
func GetGameHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.Get(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(r.Context(), g))
	}
}

// POST /games  also accepts a generated draft; its temp fields are ignored.
func CreateGameHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameReq
		if !decodeDTO(w, r, &req) {
			return
		}
		g, problems, err := svc.Create(r.Context(), game.NewGame{
			SubjectID:    req.SubjectID,
			GameTypeID:   req.GameTypeID,
			Name:         req.Name,
			Instructions: req.Instructions,
			Question:     req.Question,
			Aides:        req.Aides,
			Metadata:     req.Metadata,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resultOf(r.Context(), g, problems))
	}
}

// PATCH /games/{gameID}
func UpdateGameHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchGameReq
		if !decodeDTO(w, r, &req) {
			return
		}
		if string(req.Metadata) == "null" {
			req.Metadata = nil
		}
		g, problems, err := svc.Update(r.Context(), chi.URLParam(r, "gameID"), game.Patch{
			GameTypeID:   req.GameTypeID,
			Name:         req.Name,
			Instructions: req.Instructions,
			Question:     req.Question,
			Aides:        req.Aides,
			Metadata:     req.Metadata,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resultOf(r.Context(), g, problems))
	}
}

// DELETE /games/{gameID}
func DeleteGameHandler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "gameID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

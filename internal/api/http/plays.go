package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/geometry"
	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/preview"
	"github.com/mind-engage/mindengage-games/internal/schema"
)

type playResp struct {
	ID   string       `json:"id"`
	View preview.View `json:"view"`
}

// POST /games/{gameID}/plays
func OpenPlayHandler(svc *game.Service, hub *preview.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.Get(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		id, view := hub.Open(g.ID, g.Metadata)
		writeJSON(w, http.StatusCreated, playResp{ID: id, View: view})
	}
}

// GET /plays/{playID}
func GetPlayHandler(hub *preview.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "playID")
		view, err := hub.Do(id, func(*preview.Session) error { return nil })
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, playResp{ID: id, View: view})
	}
}

// POST /plays/{playID}/submit  { "answer": {...} }
//
// The answer replaces the play's state before validating. Without one the
// state built by earlier moves is validated. A pending verdict leaves the
// play open.
func SubmitPlayHandler(hub *preview.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answer json.RawMessage `json:"answer"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		id := chi.URLParam(r, "playID")
		view, err := hub.Do(id, func(s *preview.Session) error {
			if len(req.Answer) > 0 && string(req.Answer) != "null" {
				a, err := grading.DecodeAnswer(s.Metadata(), req.Answer)
				if err != nil {
					return err
				}
				if err := s.SetAnswer(a); err != nil {
					return err
				}
			}
			_, err := s.Submit()
			return err
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, playResp{ID: id, View: view})
	}
}

// POST /plays/{playID}/reset
func ResetPlayHandler(hub *preview.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "playID")
		view, err := hub.Do(id, func(s *preview.Session) error { s.Reset(); return nil })
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, playResp{ID: id, View: view})
	}
}

// moveReq carries exactly one move. Click is in displayed pixels of an
// image fitted into Container.
type moveReq struct {
	Flip      *int            `json:"flip" validate:"omitempty,min=0"`
	Press     *string         `json:"press" validate:"omitempty,min=1"`
	Click     *geometry.Point `json:"click"`
	Container *geometry.Size  `json:"container" validate:"required_with=Click"`
}

// POST /plays/{playID}/moves
func MovePlayHandler(hub *preview.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveReq
		if !decodeDTO(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "playID")
		var result any
		view, err := hub.Do(id, func(s *preview.Session) (err error) {
			switch {
			case req.Flip != nil:
				result, err = s.Flip(*req.Flip)
			case req.Press != nil:
				result, err = s.Press(*req.Press)
			case req.Click != nil:
				result, err = click(s, *req.Container, *req.Click)
			default:
				err = fmt.Errorf("%w: empty move", preview.ErrInvalidMove)
			}
			return err
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "result": result, "view": view})
	}
}

type clickResult struct {
	Zone string `json:"zone,omitempty"`
	Hit  bool   `json:"hit"`
}

func click(s *preview.Session, container geometry.Size, p geometry.Point) (clickResult, error) {
	m, ok := s.Metadata().(schema.ImageInteractive)
	if !ok {
		return clickResult{}, fmt.Errorf("%w: click on %s", preview.ErrInvalidMove, s.Metadata().Kind())
	}
	l, ok := geometry.Fit(m.NaturalSize(), container)
	if !ok {
		return clickResult{}, fmt.Errorf("%w: image or container has no size", preview.ErrInvalidMove)
	}
	zone, hit, err := s.ClickAt(l, p)
	return clickResult{Zone: zone, Hit: hit}, err
}

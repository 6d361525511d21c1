package http

import (
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/generation"
)

type generateReq struct {
	SubjectID string   `json:"subject_id" validate:"required,max=64"`
	Prompt    string   `json:"prompt" validate:"required,max=4000"`
	Count     int      `json:"count" validate:"required,min=1"`
	TypeIDs   []string `json:"type_ids" validate:"omitempty,dive,required"`
}

// POST /generate  runs one sequential batch and returns the drafts. Drafts
// are not stored.
func GenerateHandler(svc *game.Service, gen generation.Generator, maxCount int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gen == nil {
			http.Error(w, "generation is not configured", http.StatusServiceUnavailable)
			return
		}
		var req generateReq
		if !decodeDTO(w, r, &req) {
			return
		}
		types, err := svc.Types(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		batch := generation.NewBatch(gen, types, generation.WithMaxCount(maxCount))
		res, err := batch.Run(r.Context(), req.Prompt, req.Count, req.TypeIDs)
		if err != nil {
			if r.Context().Err() != nil {
				log.Printf("gateway: generation cancelled after %d drafts", len(res.Drafts))
				return
			}
			writeErr(w, err)
			return
		}
		for i := range res.Drafts {
			res.Drafts[i].SubjectID = req.SubjectID
		}
		writeJSON(w, http.StatusOK, res)
	}
}

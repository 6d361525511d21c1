package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/generation"
	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/preview"
	"github.com/mind-engage/mindengage-games/internal/storage"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeDTO reads a JSON body into dst and runs its validate tags.
func decodeDTO(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, preview.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, preview.ErrSubmitted):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidMetadata):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrUnknownType),
		errors.Is(err, grading.ErrAnswerType),
		errors.Is(err, grading.ErrEmbeddedRule),
		errors.Is(err, preview.ErrInvalidMove),
		errors.Is(err, generation.ErrCount),
		errors.Is(err, storage.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("gateway: %v", err)
		http.Error(w, "internal error", status)
		return
	}
	var pe *game.ProblemsError
	if errors.As(err, &pe) {
		writeJSON(w, status, map[string]any{"error": game.ErrInvalidMetadata.Error(), "problems": pe.Problems})
		return
	}
	http.Error(w, err.Error(), status)
}

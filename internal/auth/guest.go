package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	authmw "github.com/mind-engage/mindengage-games/internal/auth/middleware"
	"github.com/mind-engage/mindengage-games/internal/rbac"
)

const guestCookie = "mg_guest_id"

// GuestLoginHandler gives pupils and parents a token without an account.
// The guest id is kept in a cookie so a browser keeps its identity.
//
// POST /auth/guest  { "role": "pupil|parent" }
func GuestLoginHandler(a *authmw.AuthService, secure bool) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Subject     string `json:"sub"`
		Role        string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role string `json:"role"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		role := req.Role
		if role == "" {
			role = rbac.RolePupil
		}
		if role != rbac.RolePupil && role != rbac.RoleParent {
			http.Error(w, "guests are pupils or parents", http.StatusBadRequest)
			return
		}

		var sub string
		if c, err := r.Cookie(guestCookie); err == nil && authmw.IsGuest(c.Value) {
			sub = c.Value
		} else {
			sub = authmw.GuestID(uuid.NewString())
		}
		tok, err := a.IssueJWT(sub, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookie,
			Value:    sub,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Subject: sub, Role: role})
	}
}

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authmw "github.com/mind-engage/mindengage-games/internal/auth/middleware"
	"github.com/mind-engage/mindengage-games/internal/rbac"
)

func TestGuestLogin(t *testing.T) {
	a := authmw.NewAuthService("k")
	h := GuestLoginHandler(a, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		Sub         string `json:"sub"`
		Role        string `json:"role"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&out)
	if out.Role != rbac.RolePupil || !authmw.IsGuest(out.Sub) {
		t.Errorf("out = %+v", out)
	}
	c, err := a.Parse(out.AccessToken)
	if err != nil || c.Sub != out.Sub {
		t.Errorf("token: %+v %v", c, err)
	}

	// the cookie keeps the identity, the role can change
	cookie := rec.Result().Cookies()[0]
	req := httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{"role":"parent"}`))
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var again struct {
		Sub  string `json:"sub"`
		Role string `json:"role"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&again)
	if again.Sub != out.Sub || again.Role != rbac.RoleParent {
		t.Errorf("again = %+v", again)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{"role":"teacher"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("guest teacher: %d", rec.Code)
	}
}

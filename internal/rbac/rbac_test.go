package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRolePermissions(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{RolePupil, PermGameView, true},
		{RolePupil, PermPlaySubmit, true},
		{RolePupil, PermGameViewKey, false},
		{RolePupil, PermGameCreate, false},
		{RoleParent, PermPlayCreate, true},
		{RoleParent, PermGameDelete, false},
		{RoleTeacher, PermGameViewKey, true},
		{RoleTeacher, PermGameGenerate, true},
		{RoleTeacher, PermPlaySubmit, true},
		{RoleTeacher, "users:list", false},
		{RoleAdmin, "anything:at-all", true},
		{"stranger", PermGameView, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%s, %s) = %v", tc.role, tc.perm, got)
		}
	}
	if !c.All(RoleTeacher, PermGameCreate, PermGameUpdate) || c.All(RolePupil, PermGameView, PermGameCreate) {
		t.Error("All")
	}
	if !c.Any(RolePupil, PermGameCreate, PermGameView) {
		t.Error("Any")
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermGameCreate)(ok)

	for role, want := range map[string]int{"": 403, RolePupil: 403, RoleTeacher: 204} {
		req := httptest.NewRequest(http.MethodPost, "/games", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d want %d", role, rec.Code, want)
		}
	}

	either := RequireAny(PermGameCreate, PermGameGenerate)(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithRole(context.Background(), RoleParent))
	rec := httptest.NewRecorder()
	either.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("parent RequireAny = %d", rec.Code)
	}
}

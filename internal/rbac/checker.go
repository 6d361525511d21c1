package rbac

import (
	"context"
	"strings"
)

// grants is the compiled permission list of one role. A trailing "*"
// grants every permission with that prefix.
type grants struct {
	exact    map[string]bool
	prefixes []string
}

type Checker struct {
	roles map[string]grants
}

// NewChecker compiles a role → permissions table; nil uses RolePermissions.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{roles: make(map[string]grants, len(rp))}
	for role, perms := range rp {
		g := grants{exact: map[string]bool{}}
		for _, p := range perms {
			if strings.HasSuffix(p, "*") {
				g.prefixes = append(g.prefixes, strings.TrimSuffix(p, "*"))
			} else {
				g.exact[p] = true
			}
		}
		c.roles[role] = g
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	if !ok {
		return false
	}
	if g.exact[perm] {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role string, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(roleKey{}).(string)
	return s
}

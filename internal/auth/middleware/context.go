package auth

import (
	"context"
	"strings"
)

type ctxKey struct{}

const guestPrefix = "guest|"

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sub)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// GuestID builds the subject of a guest session.
func GuestID(suffix string) string { return guestPrefix + suffix }

func IsGuest(sub string) bool { return strings.HasPrefix(sub, guestPrefix) }

package principal

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// Role names used by the platform's authorization checks.
const (
	RoleOrganizer = "organizer"
	RoleAttendee  = "attendee"
)

// Principal is the authenticated caller: user id plus the roles granted
// within the current tenant.
type Principal struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// IsOrganizer reports whether the principal may act on behalf of the tenant
// (cancel any registration, edit events).
func (p Principal) IsOrganizer() bool {
	return p.HasRole(RoleOrganizer)
}

type contextKey struct{}

// WithPrincipal returns a context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext retrieves the principal from the context.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// UserIDFromContext retrieves just the caller's user id.
// Returns the zero UUID and false if no principal is set.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return p.UserID, true
}

// LoggerExtractor returns a logger context extractor that attaches the
// caller's user id to every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := UserIDFromContext(ctx); ok {
			return slog.String("user_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}

package audit

import (
	"context"

	"github.com/vicentemv/user-management-api/internal/core/domain"
)

type actorKey struct{}

// WithActor returns a context carrying the identity of the account
// responsible for subsequent mutations. Admin services set it from the
// caller's JWT claims; the recording repository reads it when attributing
// entries.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the acting identity from ctx. The second return is
// false when no actor was set, which the recording repository treats as a
// self-service mutation (actor = subject).
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok && actor.ID != ""
}

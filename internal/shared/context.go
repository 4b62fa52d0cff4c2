package shared

import "context"

// Actor identifies the authenticated user performing an operation. The core
// never authenticates; it only records the identity it is handed.
type Actor struct {
	ID    int64
	Login string
}

type actorContextKey struct{}

// ContextWithActor stores the acting user in the context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the acting user, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

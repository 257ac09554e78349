package auth

import (
	"context"
	"net/http"

	"google.golang.org/grpc/metadata"
)

const ActorHeader = "X-Admin-ID"

type actorKey struct{}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// GetActorID returns the admin on whose behalf the request runs. Sessions
// are handled in front of this service; the id is only attribution for
// events and audit.
func GetActorID(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey{}).(string); ok {
		return val
	}

	// Fallback to metadata
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-admin-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// Middleware copies the actor header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(ActorHeader); id != "" {
			r = r.WithContext(WithActorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

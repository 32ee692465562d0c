package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/response"
)

type actorContextKey struct{}

// ResolveActor builds the membership.Actor for the verified token and stores it
// in the request context. Must run after AuthRequired.
func ResolveActor(resolver membership.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, ok := ClaimsFromContext(ctx)
			if !ok {
				response.Unauthorized(w, "Missing access token claims")
				return
			}

			role, err := resolver.ResolveEffectiveRole(ctx, claims.UserID)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			assignment, err := resolver.ResolveAssignment(ctx, claims.UserID)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			sites, err := resolver.ResolveSiteScope(ctx, claims.UserID)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			actor := membership.Actor{
				UserID:     claims.UserID,
				WorkerID:   claims.WorkerID,
				OrgID:      claims.OrgID,
				Role:       role,
				Assignment: assignment,
				SiteIDs:    sites,
			}
			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

func WithActor(ctx context.Context, actor membership.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored by ResolveActor
func ActorFromContext(ctx context.Context) (membership.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(membership.Actor)
	return actor, ok
}

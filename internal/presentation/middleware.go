package presentation

import (
	"context"
	"net/http"

	"github.com/navanithaadhav/Herbal-Hot/internal/application"
	"github.com/navanithaadhav/Herbal-Hot/internal/presentation/helpers"
)

type ctxKey int

const actorKey ctxKey = iota

// Identity headers are set by the edge proxy after it validates the session;
// this service only interprets them. Auth mechanics live upstream.
const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserRole  = "X-User-Role"

	roleStaff = "staff"
)

// RequireUser rejects anonymous requests and stores the actor in the context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerUserID)
		if id == "" {
			helpers.HttpError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		actor := application.Actor{
			UserID:  id,
			Email:   r.Header.Get(headerUserEmail),
			IsStaff: r.Header.Get(headerUserRole) == roleStaff,
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff guards the fulfillment transitions and admin listings.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r).IsStaff {
			helpers.HttpError(w, http.StatusForbidden, "Not authorized as staff")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func actorFrom(r *http.Request) application.Actor {
	a, _ := r.Context().Value(actorKey).(application.Actor)
	return a
}

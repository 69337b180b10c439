package middleware

import (
	"context"
	"net/http"

	"github.com/MahanteshPatil1214/agency-platform/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth resolves the session cookie into a session record and stashes it
// in the request context. Requests without a valid session pass through
// anonymously; route guards decide what anonymous users may see.
func Auth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			cookie, err := req.Cookie("session")
			if err != nil {
				next.ServeHTTP(w, req)
				return
			}

			sess, err := store.Get(req.Context(), cookie.Value)
			if err != nil || sess == nil {
				next.ServeHTTP(w, req)
				return
			}

			ctx := context.WithValue(req.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

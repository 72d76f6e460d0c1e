package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type tokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

type errorResponder interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

type Middleware struct {
	AuthClient tokenVerifier
	Resp       errorResponder
}

func NewMiddleware(client tokenVerifier, resp errorResponder) *Middleware {
	return &Middleware{AuthClient: client, Resp: resp}
}

// context key
type contextKey string

const UIDKey contextKey = "uid"

// FirebaseAuth rejects requests without a valid Firebase ID token. Tokens
// issued before a logout are rejected too.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := bearerToken(r)
		if err != nil {
			m.Resp.HandleError(w, r, err)
			return
		}

		token, err := m.AuthClient.VerifyIDTokenAndCheckRevoked(r.Context(), tokenStr)
		if err != nil {
			logger.FromContext(r.Context()).Debug("id token rejected", "error", err)
			m.Resp.HandleError(w, r, errs.NewAuthenticationError("invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), token.UID)))
	})
}

// OptionalAuth adds the uid when a valid token is present and otherwise
// passes the request through untouched.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := bearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.AuthClient.VerifyIDTokenAndCheckRevoked(r.Context(), tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), token.UID)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errs.NewAuthenticationError("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errs.NewAuthenticationError("invalid Authorization header")
	}
	return parts[1], nil
}

func withUID(ctx context.Context, uid string) context.Context {
	_, ctx = logger.With(ctx, "uid", uid)
	return context.WithValue(ctx, UIDKey, uid)
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

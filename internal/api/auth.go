package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/assurlink/courtage/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims are the fields read from the backend's access token
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT verifies an HS256 token signed with secret and returns its claims
func ParseJWT(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func extractBearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// authenticate opens a session for the token's identity, carries it in the
// request context and closes it once the handler returns.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	secret := []byte(h.Config.JWTSecret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}
		claims, err := ParseJWT(token, secret)
		if err != nil {
			h.Logger.Debug("rejected token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		role, err := session.ParseRole(claims.Role)
		if err != nil {
			writeError(w, http.StatusForbidden, "Unknown role", err)
			return
		}

		s := session.Open(session.Identity{Subject: claims.Subject, Email: claims.Email, Role: role}, h.now())
		defer func() {
			if err := s.Close(h.now()); err != nil && !errors.Is(err, session.ErrClosed) {
				h.Logger.Warn("failed to close session", zap.Error(err))
			}
		}()
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}

// requireRole rejects sessions whose role is not one of roles. Admin passes.
func requireRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "No session", nil)
				return
			}
			if !s.Identity().Role.Allows(roles...) {
				writeError(w, http.StatusForbidden, "Forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentSession returns the request's session. Routes behind authenticate
// always carry one.
func currentSession(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

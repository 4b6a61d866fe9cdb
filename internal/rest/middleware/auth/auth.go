// Package auth validates bearer tokens on REST requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/setup/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// RoleAdmin is the role claim that grants admin endpoints.
const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Admin  bool
}

// Claims are the JWT claims issued to users. The subject holds the user ID.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// Middleware validates HS256 bearer tokens.
type Middleware struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// New creates an auth middleware.
func New(cfg *config.Auth, logger *zap.Logger) *Middleware {
	return &Middleware{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: logger.Named("auth_middleware"),
	}
}

// AsRESTMiddleware attaches the caller's identity to the request context.
// Requests without a token pass through anonymously; an invalid token is
// rejected.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		token := bearerToken(req.Request)
		if token == "" {
			return next(w, req)
		}

		identity, err := m.Parse(token)
		if err != nil {
			m.logger.Debug("Rejected token", zap.Error(err))
			return fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
		}

		ctx := context.WithValue(req.Context(), contextKey{}, identity)
		return next(w, req.WithContext(ctx))
	}
}

// Parse validates a token and returns its identity.
func (m *Middleware) Parse(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return Identity{}, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	return Identity{UserID: userID, Admin: claims.Role == RoleAdmin}, nil
}

// Issue signs a token for a user. It backs the token command of the db
// tool and the tests.
func (m *Middleware) Issue(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if identity.Admin {
		claims.Role = RoleAdmin
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// FromContext returns the caller's identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}

// Require returns the caller's identity or ErrUnauthorized.
func Require(ctx context.Context) (Identity, error) {
	identity, ok := FromContext(ctx)
	if !ok {
		return Identity{}, fmt.Errorf("%w: authentication required", types.ErrUnauthorized)
	}
	return identity, nil
}

// RequireAdmin returns the caller's identity when it carries the admin role.
func RequireAdmin(ctx context.Context) (Identity, error) {
	identity, err := Require(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !identity.Admin {
		return Identity{}, fmt.Errorf("%w: admin role required", types.ErrForbidden)
	}
	return identity, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	// EventSource cannot set headers.
	if r.Header.Get("Accept") == "text/event-stream" {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

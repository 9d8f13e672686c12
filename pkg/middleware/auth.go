package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "unilab/pkg/errors"
	httputil "unilab/pkg/http"
	"unilab/pkg/logger"
	"unilab/pkg/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/julienschmidt/httprouter"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

const principalKey contextKey = "principal"

// Claims mirrors the token issued by the identity service.
type Claims struct {
	ID      string     `json:"id"`
	Role    model.Role `json:"role"`
	Profile string     `json:"profile,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID  string
	Role    model.Role
	Profile string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

type Authenticator struct {
	secret []byte
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

// Parse verifies an HS256 token and returns its principal.
func (a *Authenticator) Parse(tokenStr string) (Principal, error) {
	if len(a.secret) == 0 {
		return Principal{}, errors.New("authentication is not configured")
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errors.New("invalid token")
	}
	if claims.ID == "" || claims.Role == "" {
		return Principal{}, errors.New("token is missing id or role")
	}

	return Principal{UserID: claims.ID, Role: claims.Role, Profile: claims.Profile}, nil
}

// Authenticate attaches the principal of a valid bearer token to the request.
// It never rejects: routes decide through RequireRoles.
func (a *Authenticator) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get(AuthorizationHeader)
			if !strings.HasPrefix(authorization, bearer) {
				next.ServeHTTP(w, r)
				return
			}

			p, err := a.Parse(strings.TrimPrefix(authorization, bearer))
			if err != nil {
				a.log.Debug("Rejected bearer token",
					"request_id", requestIDFrom(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRoles guards a route. With no roles any authenticated caller passes.
func (a *Authenticator) RequireRoles(roles ...model.Role) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
				return
			}

			if len(roles) > 0 && !hasRole(p.Role, roles) {
				a.log.Warn("Forbidden role for route",
					"request_id", requestIDFrom(r.Context()),
					"user_id", p.UserID,
					"role", p.Role,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Forbidden("You do not have permission to perform this action"))
				return
			}

			next(w, r, ps)
		}
	}
}

func hasRole(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

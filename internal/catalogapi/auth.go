package catalogapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidIssuer = errors.New("invalid issuer")
)

// TokenMaker signs and verifies HS256 session tokens.
type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret, issuer string) *TokenMaker {
	return &TokenMaker{secret: []byte(secret), issuer: issuer}
}

type Claims struct {
	Email string     `json:"email"`
	Role  admin.Role `json:"role"`
	jwt.RegisteredClaims
}

// New signs a token for user valid for ttl.
func (t *TokenMaker) New(user admin.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if c.Issuer != t.issuer {
		return Claims{}, ErrInvalidIssuer
	}
	return c, nil
}

type claimsKey struct{}

// ClaimsFrom returns the verified claims RequireAdmin stored in ctx.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// RequireAdmin rejects requests without a valid bearer token (401) or whose
// token does not carry the admin role (403).
func RequireAdmin(tokens *TokenMaker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				web.RespondError(w, logger, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			claims, err := tokens.Parse(tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected admin token", "error", err)
				web.RespondError(w, logger, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			if claims.Role != admin.RoleAdmin {
				web.RespondError(w, logger, http.StatusForbidden, "Not authorized as an admin")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

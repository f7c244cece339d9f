package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"FundDesk/internal/model"
)

const tokenIssuer = "funddesk"

type contextKey string

const identityKey contextKey = "identity"

// Claims are the JWT claims carried by desk tokens.
type Claims struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for who.
func IssueToken(secret []byte, who model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: who.Name,
		Role: who.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns the identity it carries.
func ParseToken(secret []byte, raw string) (model.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Identity{}, err
	}
	if claims.Subject == "" {
		return model.Identity{}, errors.New("token subject is required")
	}
	role := claims.Role
	if role != model.RoleAdmin {
		role = model.RoleClient
	}
	return model.Identity{ID: claims.Subject, Name: claims.Name, Role: role}, nil
}

// AuthMiddleware requires a valid bearer token and stores the identity in
// the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token de acesso ausente.")
				return
			}
			who, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token de acesso inválido.")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, who)))
		})
	}
}

// RequireAdmin rejects non-admin identities.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, ok := IdentityFromContext(r.Context())
		if !ok || !who.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "FORBIDDEN", "Acesso restrito a administradores.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the identity set by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	who, ok := ctx.Value(identityKey).(model.Identity)
	return who, ok
}

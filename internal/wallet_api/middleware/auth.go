package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/user"
)

// PrincipalKey is the context key holding the authenticated user.Principal
const PrincipalKey = "principal"

var errMissingToken = errors.New("missing bearer token")

// Claims carried by access tokens. The subject is the user id.
type Claims struct {
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens issued by the identity provider
type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(cfg *config.AuthConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.JWTSecret), issuer: cfg.JWTIssuer}
}

// Verify validates signature, expiry and issuer and returns the acting principal
func (v *TokenVerifier) Verify(tokenString string) (user.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return user.Principal{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user.Principal{}, fmt.Errorf("invalid subject: %w", err)
	}

	role := claims.Role
	if role == "" {
		role = user.RoleUser
	}
	if role != user.RoleUser && role != user.RoleAdmin {
		return user.Principal{}, user.ErrInvalidRole
	}

	return user.Principal{UserID: userID, Username: claims.Username, Role: role}, nil
}

// Auth rejects requests without a valid bearer token and stores the principal for handlers
func Auth(verifier *TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var principal user.Principal
			if principal, err = verifier.Verify(token); err == nil {
				c.Set(PrincipalKey, principal)
				c.Next()
				return
			}
		}

		logger.Debug("Rejected bearer token",
			"path", c.Request.URL.Path,
			"correlation_id", GetCorrelationID(c),
			"error", err,
		)
		abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "A valid bearer token is required")
	}
}

// Admin requires an authenticated principal with the ADMIN role
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "A valid bearer token is required")
			return
		}
		if !principal.IsAdmin() {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Administrator role required")
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the principal stored by Auth
func GetPrincipal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return user.Principal{}, false
	}
	principal, ok := v.(user.Principal)
	return principal, ok
}

func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

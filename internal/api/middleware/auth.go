package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/songcontest/songcontest-api/internal/api/handler/v1/response"
	"github.com/songcontest/songcontest-api/internal/pkg/jwthelper"
)

const (
	bearerPrefix = "Bearer "
	userIDKey    = "userID"
)

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to another client")
)

type Authenticator struct {
	key []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{key: []byte(signingKey)}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// caller's user id in the gin context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := a.authenticate(ctx)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		ctx.Set(userIDKey, userID)
		ctx.Next()
	}
}

// OptionalJWT identifies the caller when a token is present and lets
// anonymous requests through. A present but invalid token is still refused.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := a.authenticate(ctx)
		switch {
		case errors.Is(err, errMissingToken):
		case err != nil:
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		default:
			ctx.Set(userIDKey, userID)
		}

		ctx.Next()
	}
}

func (a *Authenticator) authenticate(ctx *gin.Context) (string, error) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errMissingToken
	}

	claims, err := jwthelper.ParseToken(a.key, strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return "", err
	}
	if claims.UserAgent != "" && claims.UserAgent != ctx.Request.UserAgent() {
		return "", errUserAgentMismatch
	}

	return claims.Subject, nil
}

// UserID returns the authenticated caller, or "" for anonymous requests.
func UserID(ctx *gin.Context) string {
	return ctx.GetString(userIDKey)
}

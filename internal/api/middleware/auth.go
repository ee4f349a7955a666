package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"

	"github.com/gin-gonic/gin"
)

// userContextKey is where the resolved user lives in the gin context for
// the duration of a single request. It is never cached across requests.
const userContextKey = "currentUser"

// BasicAuth verifies HTTP Basic credentials against the user service and
// stores the resolved user in the request context. Only the token
// issuance endpoint uses it.
func BasicAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, plaintext, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="token"`)
			response.ErrorResponse(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		user, err := users.Authenticate(c.Request.Context(), username, plaintext)
		if err != nil {
			// A store failure is not a credential rejection.
			if errors.Is(err, response.ErrInvalidCredentials) {
				response.ErrorResponse(c, http.StatusUnauthorized, response.ErrInvalidCredentials.Error())
			} else {
				response.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// TokenAuth verifies a bearer token and stores the resolved user in the
// request context. Missing, unknown and expired tokens are all rejected
// with the same generic message.
func TokenAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header")
			c.Abort()
			return
		}

		user, err := tokens.Verify(c.Request.Context(), parts[1])
		if err != nil {
			// A store failure is not a token rejection.
			if errors.Is(err, response.ErrInvalidToken) {
				response.ErrorResponse(c, http.StatusUnauthorized, response.ErrInvalidToken.Error())
			} else {
				response.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by BasicAuth or TokenAuth, or nil
// if the request was not authenticated.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

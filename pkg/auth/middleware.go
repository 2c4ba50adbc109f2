package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	"github.com/opst/crqboard/pkg/domain"
)

const userKey = "crqboard.user"

// Require returns a middleware to check the bearer token and the permission.
//
// The user is available in handlers with UserOf.
func Require(a Interface, perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return binderr.Unauthorized("bearer token is required", nil)
			}
			user, err := a.Verify(token)
			if err != nil {
				return binderr.Unauthorized("token is not acceptable", err)
			}
			if !user.Can(perm) {
				return binderr.Forbidden("permission "+string(perm)+" is required", nil)
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// UserOf returns the user authenticated by Require.
func UserOf(c echo.Context) (domain.User, bool) {
	u, ok := c.Get(userKey).(domain.User)
	return u, ok
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

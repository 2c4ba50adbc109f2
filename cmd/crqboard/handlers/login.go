package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	bindauth "github.com/opst/crqboard/pkg/api-types-binding/auth"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	apiauth "github.com/opst/crqboard/pkg/api/types/auth"
	"github.com/opst/crqboard/pkg/auth"
)

func LoginHandler(iauth auth.Interface, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		login := new(apiauth.Login)
		if err := json.NewDecoder(c.Request().Body).Decode(login); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}

		session, err := iauth.Login(login.Name, login.Password)
		if err != nil {
			return binderr.Unauthorized("name or password is wrong", nil)
		}
		c.Logger().Infof("user %s logged in", session.User.Name)
		return c.JSON(http.StatusOK, bindauth.ComposeSession(session, loc))
	}
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	"github.com/opst/crqboard/pkg/domain/activity"
	"github.com/opst/crqboard/pkg/message"
)

func GetMessageHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		acts, err := iactivity.Activities(c.Request().Context())
		if err != nil {
			return binderr.FromError(err)
		}
		return c.String(http.StatusOK, message.Build(acts, iactivity.Catalogue(), iactivity.Now()))
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	bindstats "github.com/opst/crqboard/pkg/api-types-binding/stats"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity"
)

func GetStatsHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		acts, err := iactivity.Activities(c.Request().Context())
		if err != nil {
			return binderr.FromError(err)
		}
		report := domain.Statistics(acts, iactivity.Catalogue())
		return c.JSON(http.StatusOK, bindstats.ComposeReport(report, iactivity.Catalogue()))
	}
}

// GetDashboardHandler responses every board at once.
//
// Query "limit" is the number of upcoming activities.
func GetDashboardHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := domain.DefaultNextLimit
		if q := c.QueryParam("limit"); q != "" {
			l, err := strconv.Atoi(q)
			if err != nil || l < 1 {
				return binderr.BadRequest("limit should be a positive number", err)
			}
			limit = l
		}

		acts, err := iactivity.Activities(c.Request().Context())
		if err != nil {
			return binderr.FromError(err)
		}
		return c.JSON(http.StatusOK, bindstats.ComposeDashboard(
			acts, iactivity.Catalogue(), iactivity.Now(), iactivity.Location(), limit,
		))
	}
}

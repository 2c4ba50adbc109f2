package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	bindactivities "github.com/opst/crqboard/pkg/api-types-binding/activities"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	apiactivities "github.com/opst/crqboard/pkg/api/types/activities"
	"github.com/opst/crqboard/pkg/auth"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity"
	"github.com/opst/crqboard/pkg/utils"
)

func rowID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		return 0, binderr.BadRequest(param+" should be a number", err)
	}
	return id, nil
}

func requireJSON(c echo.Context) error {
	ctyp := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	if !strings.HasPrefix(ctyp, echo.MIMEApplicationJSON) {
		return binderr.BadRequest(
			"unexpected content type. it shoule be application/json", nil,
		)
	}
	return nil
}

// GetActivitiesHandler lists activities.
//
// Query "crq" and "status" narrow the list.
func GetActivitiesHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		crq := strings.TrimSpace(c.QueryParam("crq"))

		acts, err := iactivity.Activities(ctx)
		if err != nil {
			return binderr.FromError(err)
		}

		if s := c.QueryParam("status"); s != "" {
			status, err := domain.AsStatus(s)
			if err != nil {
				return binderr.FromError(err)
			}
			acts = domain.ByStatus(acts, status, crq, false)
		} else if crq != "" {
			acts = utils.Filter(acts, func(a domain.Activity) bool {
				return strings.EqualFold(a.CRQ, crq)
			})
		}

		return c.JSON(
			http.StatusOK,
			bindactivities.ComposeAll(acts, iactivity.Catalogue(), iactivity.Location()),
		)
	}
}

func GetActivityHandler(iactivity activity.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := rowID(c, param)
		if err != nil {
			return err
		}

		acts, err := iactivity.Activities(ctx)
		if err != nil {
			return binderr.FromError(err)
		}
		act, ok := domain.Find(acts, id)
		if !ok {
			return binderr.NotFound()
		}

		return c.JSON(
			http.StatusOK,
			bindactivities.ComposeDetail(act, acts, iactivity.Catalogue(), iactivity.Location()),
		)
	}
}

func PostActivityHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := requireJSON(c); err != nil {
			return err
		}

		req := new(apiactivities.Draft)
		if err := json.NewDecoder(c.Request().Body).Decode(req); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}
		draft, err := bindactivities.ParseDraft(*req, iactivity.Location())
		if err != nil {
			return binderr.FromError(err)
		}

		created, err := iactivity.Create(ctx, draft)
		if err != nil {
			return binderr.FromError(err)
		}
		if u, ok := auth.UserOf(c); ok {
			c.Logger().Infof("activity %s is created by %s", created.Key, u.Name)
		}
		return c.JSON(
			http.StatusCreated,
			bindactivities.Compose(created, iactivity.Catalogue(), iactivity.Location()),
		)
	}
}

func PutActivityHandler(iactivity activity.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := rowID(c, param)
		if err != nil {
			return err
		}
		if err := requireJSON(c); err != nil {
			return err
		}

		req := new(apiactivities.Update)
		if err := json.NewDecoder(c.Request().Body).Decode(req); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}
		upd, err := bindactivities.ParseUpdate(*req, iactivity.Location())
		if err != nil {
			return binderr.FromError(err)
		}

		updated, err := iactivity.Update(ctx, id, upd)
		if err != nil {
			return binderr.FromError(err)
		}
		if u, ok := auth.UserOf(c); ok {
			c.Logger().Infof("activity %s is updated to %s by %s", updated.Key, updated.Status, u.Name)
		}
		return c.JSON(
			http.StatusOK,
			bindactivities.Compose(updated, iactivity.Catalogue(), iactivity.Location()),
		)
	}
}

func DeleteActivityHandler(iactivity activity.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := rowID(c, param)
		if err != nil {
			return err
		}

		removed, err := iactivity.Delete(ctx, id)
		if err != nil {
			return binderr.FromError(err)
		}
		return c.JSON(http.StatusOK, bindstore.ComposeRemoved(removed))
	}
}

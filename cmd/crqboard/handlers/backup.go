package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/activity"
)

func GetBackupHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		backup, err := iactivity.Export(c.Request().Context())
		if err != nil {
			return binderr.FromError(err)
		}
		name := fmt.Sprintf("backup_%s.json", iactivity.Now().Format("20060102_150405"))
		c.Response().Header().Set(
			echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name),
		)
		return c.JSON(http.StatusOK, backup)
	}
}

func PutBackupHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := requireJSON(c); err != nil {
			return err
		}
		backup := new(domain.Backup)
		if err := json.NewDecoder(c.Request().Body).Decode(backup); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}

		result, errs, err := iactivity.Restore(c.Request().Context(), *backup)
		if err != nil {
			return binderr.FromError(err)
		}
		for _, e := range errs {
			c.Logger().Warnf("restore: skipped: %s", e)
		}
		return c.JSON(http.StatusOK, bindstore.ComposeRestore(result, errs))
	}
}

// DeleteBackupHandler clears the store.
func DeleteBackupHandler(iactivity activity.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := iactivity.Database().ClearAll(c.Request().Context())
		if err != nil {
			return binderr.FromError(err)
		}
		c.Logger().Warnf(
			"store is cleared: %d sheet rows, %d control rows", result.ExcelDeleted, result.ControlDeleted,
		)
		return c.JSON(http.StatusOK, bindstore.ComposeCleared(result))
	}
}

// DeleteSeqsHandler removes activities of a CRQ by seq.
//
// Seqs are given as repeated query "seq", each may be comma separated.
func DeleteSeqsHandler(iactivity activity.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		crq, ok := iactivity.Catalogue().Lookup(c.Param(param))
		if !ok {
			return binderr.NotFound()
		}

		seqs := []int{}
		for _, q := range c.QueryParams()["seq"] {
			for _, s := range strings.Split(q, ",") {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				n, err := strconv.Atoi(s)
				if err != nil {
					return binderr.BadRequest(fmt.Sprintf("seq %q is not a number", s), err)
				}
				seqs = append(seqs, n)
			}
		}
		if len(seqs) == 0 {
			return binderr.BadRequest("query seq is required", nil)
		}

		result, err := iactivity.Database().RemoveSeqs(c.Request().Context(), crq.Name, seqs)
		if err != nil {
			return binderr.FromError(err)
		}
		c.Logger().Warnf("%s seqs %v are removed", crq.Name, seqs)
		return c.JSON(http.StatusOK, bindstore.ComposeRemoved(result))
	}
}

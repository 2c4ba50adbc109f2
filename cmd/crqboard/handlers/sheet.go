package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/crqboard/pkg/api-types-binding/errors"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain/activity"
	"github.com/opst/crqboard/pkg/sheet"
)

// PostSheetHandler imports a spreadsheet uploaded as multipart form field.
func PostSheetHandler(iactivity activity.Interface, field string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		fh, err := c.FormFile(field)
		if err != nil {
			return binderr.BadRequest("spreadsheet should be uploaded as form field "+field, err)
		}
		f, err := fh.Open()
		if err != nil {
			return binderr.InternalServerError(err)
		}
		defer f.Close()

		wb, err := sheet.Load(f, iactivity.Catalogue())
		if err != nil {
			return binderr.BadRequest("the file can not be read as a spreadsheet (.xlsx)", err)
		}
		if len(wb.Sheets) == 0 {
			return binderr.BadRequest("no sheets are for known CRQs", nil)
		}
		for _, w := range wb.Warnings {
			c.Logger().Warnf("sheet import: %s", w)
		}

		result, err := iactivity.ImportSheet(ctx, wb.Records)
		if err != nil {
			return binderr.FromError(err)
		}
		c.Logger().Infof(
			"sheet %s is imported: saved %d, skipped %d, initialized %d",
			fh.Filename, result.Saved, result.Skipped, result.Initialized,
		)
		return c.JSON(http.StatusOK, bindstore.ComposeSheetImport(wb, result))
	}
}

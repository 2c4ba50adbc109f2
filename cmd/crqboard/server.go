package main

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/crqboard/cmd/crqboard/handlers"
	"github.com/opst/crqboard/pkg/auth"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/opst/crqboard/pkg/utils/echoutil"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

func BuildServer(board crqboard.CRQBoard, loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = echoutil.ErrorHandler(e)

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	iactivity := board.Activity()
	iauth := board.Auth()
	can := func(perm domain.Permission) echo.MiddlewareFunc {
		return auth.Require(iauth, perm)
	}

	e.POST(api("login"), handlers.LoginHandler(iauth, iactivity.Location()))

	{
		rowId := "rowId"
		e.GET(api("activities"), handlers.GetActivitiesHandler(iactivity), can(domain.PermDashboard))
		e.POST(api("activities"), handlers.PostActivityHandler(iactivity), can(domain.PermData))
		e.GET(api("activities/:rowId"), handlers.GetActivityHandler(iactivity, rowId), can(domain.PermDashboard))
		e.PUT(api("activities/:rowId"), handlers.PutActivityHandler(iactivity, rowId), can(domain.PermData))
		e.DELETE(api("activities/:rowId"), handlers.DeleteActivityHandler(iactivity, rowId), can(domain.PermData))
	}

	e.GET(api("stats"), handlers.GetStatsHandler(iactivity), can(domain.PermDashboard))
	e.GET(api("dashboard"), handlers.GetDashboardHandler(iactivity), can(domain.PermDashboard))
	e.GET(api("message"), handlers.GetMessageHandler(iactivity), can(domain.PermMessage))
	e.POST(api("sheet"), handlers.PostSheetHandler(iactivity, "file"), can(domain.PermData))

	{
		e.GET(api("backup"), handlers.GetBackupHandler(iactivity), can(domain.PermSettings))
		e.PUT(api("backup"), handlers.PutBackupHandler(iactivity), can(domain.PermSettings))
		e.DELETE(api("backup"), handlers.DeleteBackupHandler(iactivity), can(domain.PermSettings))
		e.DELETE(api("crqs/:crq/seqs"), handlers.DeleteSeqsHandler(iactivity, "crq"), can(domain.PermSettings))
	}

	return e
}

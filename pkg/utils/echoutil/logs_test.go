package echoutil_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/opst/crqboard/pkg/utils/echoutil"
)

func TestParseLevel(t *testing.T) {
	for name, testcase := range map[string]struct {
		when   string
		then   log.Lvl
		thenOk bool
	}{
		"debug":           {when: "debug", then: log.DEBUG, thenOk: true},
		"upper case info": {when: "INFO", then: log.INFO, thenOk: true},
		"empty":           {when: "", then: log.WARN, thenOk: true},
		"error":           {when: "error", then: log.ERROR, thenOk: true},
		"off":             {when: "off", then: log.OFF, thenOk: true},
		"unknown":         {when: "verbose", then: log.WARN, thenOk: false},
	} {
		t.Run(name, func(t *testing.T) {
			actual, ok := echoutil.ParseLevel(testcase.when)
			if actual != testcase.then || ok != testcase.thenOk {
				t.Errorf("ParseLevel(%q) = (%v, %v)", testcase.when, actual, ok)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	for name, testcase := range map[string]struct {
		when     error
		thenCode int
		thenLog  string
	}{
		"client error": {
			when: echo.NewHTTPError(http.StatusNotFound, "not found"), thenCode: http.StatusNotFound,
			thenLog: `"level":"WARN"`,
		},
		"server error": {
			when: echo.NewHTTPError(http.StatusInternalServerError, "boom"), thenCode: http.StatusInternalServerError,
			thenLog: `"level":"ERROR"`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			logs := new(bytes.Buffer)
			e := echo.New()
			e.Logger.SetOutput(logs)
			e.Logger.SetLevel(log.DEBUG)
			e.HTTPErrorHandler = echoutil.ErrorHandler(e)
			e.GET("/", func(echo.Context) error { return testcase.when }, echoutil.LogHandlerFunc)

			resp := httptest.NewRecorder()
			e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

			if resp.Code != testcase.thenCode {
				t.Errorf("status code: %d", resp.Code)
			}
			if !strings.Contains(logs.String(), testcase.thenLog) {
				t.Errorf("logs should contain %s:\n%s", testcase.thenLog, logs.String())
			}
		})
	}
}

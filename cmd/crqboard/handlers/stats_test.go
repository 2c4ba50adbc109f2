package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/opst/crqboard/cmd/crqboard/handlers"
	httptestutil "github.com/opst/crqboard/internal/testutils/http"
	apiactivities "github.com/opst/crqboard/pkg/api/types/activities"
	apistats "github.com/opst/crqboard/pkg/api/types/stats"
	"github.com/opst/crqboard/pkg/utils"
)

func TestGetStatsHandler(t *testing.T) {
	e := echo.New()
	c, resp := httptestutil.Get(e, "/api/stats/")

	testee := handlers.GetStatsHandler(service(t, newFixture().database()))
	if err := testee(c); err != nil {
		t.Fatal(err)
	}

	actual := apistats.Report{}
	if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
		t.Fatal(err)
	}

	if actual.Overall.Total != 3 || actual.Overall.Done != 1 || actual.Overall.Planned != 2 {
		t.Errorf("overall: %+v", actual.Overall)
	}
	crqs := utils.Map(actual.PerCRQ, func(s apistats.CRQStats) string { return s.CRQ })
	if diff := cmp.Diff([]string{"REDE", "OPENSHIFT", "NFS", "SI"}, crqs); diff != "" {
		t.Errorf("per crq: (-expected, +actual)\n%s", diff)
	}
}

func TestGetDashboardHandler(t *testing.T) {
	t.Run("it responses boards", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/dashboard/?limit=1")

		testee := handlers.GetDashboardHandler(service(t, newFixture().database()))
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		actual := apistats.Dashboard{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.Now != "10/11/2025 22:00:00" {
			t.Errorf("now: %s", actual.Now)
		}
		if len(actual.Next) != 1 || actual.Next[0].RowId != 2 {
			t.Errorf("next: %+v", actual.Next)
		}

		// REDE seq 2 should have started at 21:30.
		late := utils.Map(
			actual.Execution.ShouldBeRunning,
			func(a apiactivities.Activity) int64 { return a.RowId },
		)
		if diff := cmp.Diff([]int64{2}, late); diff != "" {
			t.Errorf("should be running: (-expected, +actual)\n%s", diff)
		}

		expectedBurndown := []apistats.BurndownPoint{
			{At: "10/11/2025 21:30:00", Remaining: 3},
			{At: "10/11/2025 21:30:00", Remaining: 2, Done: 1},
			{At: "10/11/2025 22:00:00", Remaining: 2, Done: 1},
		}
		if diff := cmp.Diff(expectedBurndown, actual.Burndown); diff != "" {
			t.Errorf("burndown: (-expected, +actual)\n%s", diff)
		}
		if len(actual.Gantt) != 2 || actual.Gantt[0].CRQ != "REDE" || actual.Gantt[1].CRQ != "NFS" {
			t.Errorf("gantt: %+v", actual.Gantt)
		}
	})

	for name, limit := range map[string]string{
		"not a number": "many",
		"zero":         "0",
	} {
		t.Run("it rejects limit: "+name, func(t *testing.T) {
			e := echo.New()
			c, _ := httptestutil.Get(e, "/api/dashboard/?limit="+limit)

			testee := handlers.GetDashboardHandler(service(t, newFixture().database()))
			if err := testee(c); !Status(http.StatusBadRequest)(err) {
				t.Errorf("expected 400, but %v", err)
			}
		})
	}
}

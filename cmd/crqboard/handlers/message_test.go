package handlers_test

import (
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/opst/crqboard/cmd/crqboard/handlers"
	httptestutil "github.com/opst/crqboard/internal/testutils/http"
)

func TestGetMessageHandler(t *testing.T) {
	e := echo.New()
	c, resp := httptestutil.Get(e, "/api/message/")

	testee := handlers.GetMessageHandler(service(t, newFixture().database()))
	if err := testee(c); err != nil {
		t.Fatal(err)
	}

	if ctyp := resp.Header().Get("Content-Type"); !strings.HasPrefix(ctyp, "text/plain") {
		t.Errorf("content type: %s", ctyp)
	}
	body := resp.Body.String()
	for _, want := range []string{
		"📅 Data: 10/11/2025 | 🕐 Horário: 22:00:00\n",
		"  ✅ Concluídas: 1/3 (33.3%)\n",
		"✅ Atualizado em: 10/11/2025 22:00:00\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("message should contain %q:\n%s", want, body)
		}
	}
}

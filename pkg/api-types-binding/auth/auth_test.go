package auth_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	bindauth "github.com/opst/crqboard/pkg/api-types-binding/auth"
	apiauth "github.com/opst/crqboard/pkg/api/types/auth"
	"github.com/opst/crqboard/pkg/auth"
	"github.com/opst/crqboard/pkg/domain"
)

func TestComposeSession(t *testing.T) {
	session := auth.Session{
		Token:     "header.payload.signature",
		ExpiresAt: time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC),
		User: domain.User{
			Name: "lider", Password: "lider123", DisplayName: "Líder da Mudança", Role: "lider",
			Permissions: []domain.Permission{domain.PermDashboard, domain.PermData},
		},
	}

	expected := apiauth.Session{
		Token:     "header.payload.signature",
		ExpiresAt: "2025-11-11T06:00:00-03:00",
		User: apiauth.User{
			Name: "lider", DisplayName: "Líder da Mudança", Role: "lider",
			Permissions: []string{"dashboard", "dados"},
			CanEdit:     true,
		},
	}
	if diff := cmp.Diff(expected, bindauth.ComposeSession(session, domain.Zone(-3))); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

func TestComposeUser_CanNotEdit(t *testing.T) {
	actual := bindauth.ComposeUser(domain.User{Name: "v", Permissions: []domain.Permission{domain.PermDashboard}})
	if actual.CanEdit {
		t.Errorf("CanEdit should be false: %+v", actual)
	}
	if actual.Permissions == nil {
		t.Error("permissions should not be nil")
	}
}

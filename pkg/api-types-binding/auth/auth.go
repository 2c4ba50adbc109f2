package auth

import (
	"time"

	apiauth "github.com/opst/crqboard/pkg/api/types/auth"
	"github.com/opst/crqboard/pkg/auth"
	"github.com/opst/crqboard/pkg/domain"
)

func ComposeUser(u domain.User) apiauth.User {
	perms := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, string(p))
	}
	return apiauth.User{
		Name:        u.Name,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Permissions: perms,
		CanEdit:     u.CanEdit(),
	}
}

// ComposeSession renders the session. Expiry is RFC3339 in loc.
func ComposeSession(s auth.Session, loc *time.Location) apiauth.Session {
	return apiauth.Session{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.In(loc).Format(time.RFC3339),
		User:      ComposeUser(s.User),
	}
}

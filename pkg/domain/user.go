package domain

import (
	"crypto/subtle"
	"slices"
	"strings"

	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

// Permission is a feature a user can use.
type Permission string

const (
	// read dashboards and statistics.
	PermDashboard Permission = "dashboard"

	// edit activities and import spreadsheets.
	PermData Permission = "dados"

	// read the consolidated message.
	PermMessage Permission = "mensagem"

	// backup, restore and clear the store.
	PermSettings Permission = "configuracoes"
)

func AsPermission(s string) (Permission, bool) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PermDashboard, PermData, PermMessage, PermSettings:
		return p, true
	}
	return "", false
}

type User struct {
	// login name. Case-insensitive.
	Name string

	Password    string
	DisplayName string
	Role        string
	Permissions []Permission
}

func (u User) Can(p Permission) bool {
	return slices.Contains(u.Permissions, p)
}

// CanEdit is true for users who can change activities.
func (u User) CanEdit() bool {
	return u.Can(PermData)
}

// Users is the static user table.
type Users []User

// DefaultUsers are the users when none are configured.
func DefaultUsers() Users {
	return Users{
		{
			Name: "visualizador", Password: "visual123",
			DisplayName: "Visualizador", Role: "visualizador",
			Permissions: []Permission{PermDashboard},
		},
		{
			Name: "lider", Password: "lider123",
			DisplayName: "Líder da Mudança", Role: "lider",
			Permissions: []Permission{PermDashboard, PermData, PermMessage},
		},
		{
			Name: "admin", Password: "admin123",
			DisplayName: "Administrador", Role: "administrador",
			Permissions: []Permission{PermDashboard, PermData, PermMessage, PermSettings},
		},
	}
}

func (us Users) Lookup(name string) (User, bool) {
	name = strings.TrimSpace(name)
	for _, u := range us {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	return User{}, false
}

// Authenticate checks name and password.
//
// It returns ErrUnauthorized for unknown users and wrong passwords alike.
func (us Users) Authenticate(name, password string) (User, error) {
	u, ok := us.Lookup(name)
	if !ok {
		return User{}, domerr.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return User{}, domerr.ErrUnauthorized
	}
	return u, nil
}

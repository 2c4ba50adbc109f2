package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/opst/crqboard/pkg/domain"
)

const (
	DefaultPort         = 8080
	DefaultDriver       = DriverSqlite
	DefaultSqliteURI    = "./data/activity_control.db"
	DefaultUTCOffset    = -3
	DefaultTokenTTL     = 12 * time.Hour
	DriverSqlite        = "sqlite"
	DriverPostgres      = "postgres"
	maxUTCOffsetInHours = 14
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/server.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ServerConfigMarshall struct {
	Port     int32                   `yaml:"port,omitempty"`
	Database *DatabaseConfigMarshall `yaml:"database,omitempty"`
	Clock    *ClockConfigMarshall    `yaml:"clock,omitempty"`
	Auth     *AuthConfigMarshall     `yaml:"auth"`
	CRQs     []CRQConfigMarshall     `yaml:"crqs,omitempty"`
}

var _ Marshalled[*ServerConfig] = &ServerConfigMarshall{}

func (s *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	if s == nil {
		panic(path + " is required")
	}
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || 65535 < port {
		panic(fmt.Sprintf("%s.port should be in 1-65535, but %d", path, port))
	}

	database := s.Database
	if database == nil {
		database = &DatabaseConfigMarshall{}
	}
	clock := s.Clock
	if clock == nil {
		clock = &ClockConfigMarshall{UTCOffset: ref(DefaultUTCOffset)}
	}

	catalogue := domain.DefaultCatalogue()
	if len(s.CRQs) != 0 {
		catalogue = domain.Catalogue{}
		for nth, c := range s.CRQs {
			crq := c.trySeal(fmt.Sprintf("%s.crqs[%d]", path, nth))
			if _, ok := catalogue.Lookup(crq.Name); ok {
				panic(fmt.Sprintf("%s.crqs[%d].name is duplicated: %s", path, nth, crq.Name))
			}
			catalogue = append(catalogue, crq)
		}
	}

	return &ServerConfig{
		port:      port,
		database:  database.trySeal(path + ".database"),
		clock:     clock.trySeal(path + ".clock"),
		auth:      nonnil(s.Auth, path+".auth").trySeal(path + ".auth"),
		catalogue: catalogue,
	}
}

type DatabaseConfigMarshall struct {
	// "sqlite" (default) or "postgres"
	Driver string `yaml:"driver,omitempty"`

	// file path for sqlite, connection url for postgres
	URI string `yaml:"uri,omitempty"`

	// directory of numbered schema versions. postgres only.
	SchemaRepository string `yaml:"schemaRepository,omitempty"`
}

func (d *DatabaseConfigMarshall) trySeal(path string) *DatabaseConfig {
	driver := strings.ToLower(strings.TrimSpace(d.Driver))
	if driver == "" {
		driver = DefaultDriver
	}

	switch driver {
	case DriverSqlite:
		uri := d.URI
		if uri == "" {
			uri = DefaultSqliteURI
		}
		if d.SchemaRepository != "" {
			panic(path + ".schemaRepository is for postgres. sqlite schema is built in")
		}
		return &DatabaseConfig{driver: driver, uri: uri}
	case DriverPostgres:
		return &DatabaseConfig{
			driver:           driver,
			uri:              required(d.URI, path+".uri"),
			schemaRepository: d.SchemaRepository,
		}
	default:
		panic(fmt.Sprintf(
			"%s.driver should be %s or %s, but %s", path, DriverSqlite, DriverPostgres, d.Driver,
		))
	}
}

type ClockConfigMarshall struct {
	// hours from UTC. nil is the default, -3.
	UTCOffset *int `yaml:"utcOffset,omitempty"`
}

func (c *ClockConfigMarshall) trySeal(path string) *ClockConfig {
	offset := DefaultUTCOffset
	if c.UTCOffset != nil {
		offset = *c.UTCOffset
	}
	if offset < -maxUTCOffsetInHours || maxUTCOffsetInHours < offset {
		panic(fmt.Sprintf("%s.utcOffset is out of range: %d", path, offset))
	}
	return &ClockConfig{utcOffset: offset, location: domain.Zone(offset)}
}

type AuthConfigMarshall struct {
	// HMAC key to sign session tokens.
	Secret string `yaml:"secret"`

	// lifetime of session tokens, like "12h". Default is 12h.
	TTL string `yaml:"ttl,omitempty"`

	Users []UserConfigMarshall `yaml:"users,omitempty"`
}

func (a *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	ttl := DefaultTokenTTL
	if a.TTL != "" {
		d, err := time.ParseDuration(a.TTL)
		if err != nil {
			panic(fmt.Errorf("%s.ttl can not be parsed: %w", path, err))
		}
		if d <= 0 {
			panic(fmt.Sprintf("%s.ttl should be positive, but %s", path, a.TTL))
		}
		ttl = d
	}

	users := domain.DefaultUsers()
	if len(a.Users) != 0 {
		users = domain.Users{}
		for nth, u := range a.Users {
			user := u.trySeal(fmt.Sprintf("%s.users[%d]", path, nth))
			if _, ok := users.Lookup(user.Name); ok {
				panic(fmt.Sprintf("%s.users[%d].name is duplicated: %s", path, nth, user.Name))
			}
			users = append(users, user)
		}
	}

	return &AuthConfig{
		secret: []byte(required(a.Secret, path+".secret")),
		ttl:    ttl,
		users:  users,
	}
}

type UserConfigMarshall struct {
	Name        string   `yaml:"name"`
	Password    string   `yaml:"password"`
	DisplayName string   `yaml:"displayName,omitempty"`
	Role        string   `yaml:"role,omitempty"`
	Permissions []string `yaml:"permissions"`
}

func (u *UserConfigMarshall) trySeal(path string) domain.User {
	name := required(strings.TrimSpace(u.Name), path+".name")
	display := u.DisplayName
	if display == "" {
		display = name
	}

	perms := []domain.Permission{}
	for nth, p := range u.Permissions {
		perm, ok := domain.AsPermission(p)
		if !ok {
			panic(fmt.Sprintf("%s.permissions[%d] is unknown: %s", path, nth, p))
		}
		perms = append(perms, perm)
	}

	return domain.User{
		Name:        name,
		Password:    required(u.Password, path+".password"),
		DisplayName: display,
		Role:        u.Role,
		Permissions: perms,
	}
}

type CRQConfigMarshall struct {
	Name  string `yaml:"name"`
	Total int    `yaml:"total,omitempty"`
	Emoji string `yaml:"emoji,omitempty"`
}

func (c *CRQConfigMarshall) trySeal(path string) domain.CRQ {
	if c.Total < 0 {
		panic(fmt.Sprintf("%s.total should not be negative, but %d", path, c.Total))
	}
	return domain.CRQ{
		Name:  strings.ToUpper(required(strings.TrimSpace(c.Name), path+".name")),
		Total: c.Total,
		Emoji: c.Emoji,
	}
}

func ref[T any](v T) *T {
	return &v
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

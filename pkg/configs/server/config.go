package server

import (
	"time"

	"github.com/opst/crqboard/pkg/domain"
)

// Configuration of the crqboard server and tools.
//
// to get `ServerConfig` instance, use `Unmarshal` or `LoadServerConfig`.
type ServerConfig struct {
	port      int32
	database  *DatabaseConfig
	clock     *ClockConfig
	auth      *AuthConfig
	catalogue domain.Catalogue
}

// port to listen. default = 8080
func (c *ServerConfig) Port() int32 {
	return c.port
}

func (c *ServerConfig) Database() *DatabaseConfig {
	return c.database
}

func (c *ServerConfig) Clock() *ClockConfig {
	return c.clock
}

func (c *ServerConfig) Auth() *AuthConfig {
	return c.auth
}

// CRQs of the change window, in display order.
func (c *ServerConfig) Catalogue() domain.Catalogue {
	return c.catalogue
}

type DatabaseConfig struct {
	driver           string
	uri              string
	schemaRepository string
}

// "sqlite" or "postgres"
func (d *DatabaseConfig) Driver() string {
	return d.driver
}

// sqlite file path, or postgres connection url.
func (d *DatabaseConfig) URI() string {
	return d.uri
}

// directory of postgres schema versions. Empty when not configured.
func (d *DatabaseConfig) SchemaRepository() string {
	return d.schemaRepository
}

type ClockConfig struct {
	utcOffset int
	location  *time.Location
}

// hours from UTC.
func (c *ClockConfig) UTCOffset() int {
	return c.utcOffset
}

// time zone operators work in.
func (c *ClockConfig) Location() *time.Location {
	return c.location
}

type AuthConfig struct {
	secret []byte
	ttl    time.Duration
	users  domain.Users
}

func (a *AuthConfig) Secret() []byte {
	return a.secret
}

func (a *AuthConfig) TTL() time.Duration {
	return a.ttl
}

func (a *AuthConfig) Users() domain.Users {
	return a.users
}

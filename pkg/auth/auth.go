// Package auth issues and verifies session tokens of the static user table.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opst/crqboard/pkg/domain"
	domerr "github.com/opst/crqboard/pkg/domain/errors"
	xe "github.com/opst/crqboard/pkg/errors"
)

// Issuer is the "iss" claim of session tokens.
const Issuer = "crqboard"

var ErrInvalidToken error = errors.New("invalid token")

// Claims of a session token.
//
// Subject is the user name.
type Claims struct {
	jwt.RegisteredClaims
	DisplayName string              `json:"displayName"`
	Role        string              `json:"role,omitempty"`
	Permissions []domain.Permission `json:"permissions"`
}

// Session is a logged-in user with a token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type Interface interface {
	// Login checks the credentials and issues a token.
	//
	// # Returns
	//
	// - error: ErrUnauthorized when the name or the password is wrong.
	Login(name, password string) (Session, error)

	// Verify checks the token and returns the user.
	//
	// # Returns
	//
	// - domain.User: user of the token, as found in the user table now.
	//
	// - error: ErrUnauthorized (wrapping ErrInvalidToken) when the token is broken, expired,
	// or its user is no longer in the table.
	Verify(token string) (domain.User, error)
}

type Option func(*authenticator) *authenticator

// WithClock sets the clock to issue and verify tokens. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *authenticator) *authenticator {
		a.now = now
		return a
	}
}

type authenticator struct {
	secret []byte
	ttl    time.Duration
	users  domain.Users
	now    func() time.Time
}

// New returns an authenticator.
//
// # Args
//
// - secret: HMAC key to sign tokens.
//
// - ttl: lifetime of tokens.
//
// - users: the user table.
func New(secret []byte, ttl time.Duration, users domain.Users, options ...Option) Interface {
	a := &authenticator{
		secret: secret,
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
	for _, o := range options {
		a = o(a)
	}
	return a
}

func (a *authenticator) Login(name, password string) (Session, error) {
	user, err := a.users.Authenticate(name, password)
	if err != nil {
		return Session{}, xe.Wrap(err)
	}

	now := a.now().Truncate(time.Second)
	exp := now.Add(a.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.Name,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Permissions: user.Permissions,
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, xe.Wrap(err)
	}
	return Session{Token: tok, ExpiresAt: exp, User: user}, nil
}

func (a *authenticator) Verify(token string) (domain.User, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return domain.User{}, errors.Join(domerr.ErrUnauthorized, ErrInvalidToken, err)
	}

	user, ok := a.users.Lookup(claims.Subject)
	if !ok {
		return domain.User{}, errors.Join(
			domerr.ErrUnauthorized, ErrInvalidToken,
			fmt.Errorf("user %q is not known", claims.Subject),
		)
	}
	return user, nil
}

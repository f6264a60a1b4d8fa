package i

import (
	dmn "github.com/beka-birhanu/pong-arena/domain"
)

// Authenticator handles account registration and credential verification.
type Authenticator interface {
	Register(username, password string) error
	SignIn(username, password string) (*dmn.User, string, error)
}

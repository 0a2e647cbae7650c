package service

import "errors"

// Client-caused failure modes surfaced by the service layer. Handlers map
// these to 401/400; domain.ErrNotFound maps to 404; anything else is an
// unexpected store error reported as a 500.
var (
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

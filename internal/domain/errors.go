package domain

import "errors"

// ErrNotFound is wrapped by repositories when a lookup matches nothing.
// Callers detect it with errors.Is and map it to a 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is wrapped when a unique constraint is violated
var ErrDuplicate = errors.New("already exists")

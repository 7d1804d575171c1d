package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateUsername indicates a username is already taken. The database
// unique index is the authority; there is no pre-check before insert.
var ErrDuplicateUsername = errors.New("repository: duplicate username")

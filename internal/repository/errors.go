// Package repository implements persistence over MySQL.  Sentinel errors
// defined here let the service layer distinguish failure scenarios without
// depending on driver-specific error codes.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique email index.
var ErrEmailExists = errors.New("email already exists")

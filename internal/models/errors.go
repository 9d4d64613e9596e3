// internal/models/errors.go
package models

import "errors"

var (
	// ErrDuplicateSlug is returned when creating a catalog entry whose slug
	// is already taken.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrDuplicateLogicalID is returned when creating an attribute whose
	// logical id is already taken.
	ErrDuplicateLogicalID = errors.New("logical id already exists")

	// ErrUnknownAttributeType is returned when a type tag does not map to a
	// known attribute type.
	ErrUnknownAttributeType = errors.New("unknown attribute type")

	// ErrAttributeNotFound is returned when an attribute referenced by id or
	// slug does not exist.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrGroupNotFound is returned when an attribute group referenced by id
	// or slug does not exist.
	ErrGroupNotFound = errors.New("attribute group not found")

	// ErrTypeImmutable is returned when an update attempts to change the
	// type of an attribute that already has stored values. Changing the type
	// would orphan those values in the wrong column; create a new attribute,
	// migrate the values, and retire the old one instead.
	ErrTypeImmutable = errors.New("attribute type cannot change once values are stored")
)

package grove

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds is returned when an instance index is not below the
	// number of active instances.
	ErrOutOfBounds = errors.New("grove: instance index out of bounds")

	// ErrCapacityExceeded is returned when more instances are assigned than
	// a buffer was allocated for. Buffers never grow in place.
	ErrCapacityExceeded = errors.New("grove: instance capacity exceeded")

	// ErrNoInstances is returned when instances are read or updated before
	// any were assigned.
	ErrNoInstances = errors.New("grove: no instances assigned")

	// ErrUniformSize is returned when uniform data does not match the size
	// declared for its binding.
	ErrUniformSize = errors.New("grove: uniform size mismatch")

	// ErrUnknownBinding is returned for a binding a material does not declare.
	ErrUnknownBinding = errors.New("grove: unknown uniform binding")
)

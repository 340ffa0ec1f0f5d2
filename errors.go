package fuzzydbscan

import "errors"

var (
	// ErrInvalidConfig is wrapped by every configuration error returned
	// before clustering starts.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrDimensionMismatch is wrapped when input shapes are inconsistent:
	// ragged vectors or a distance matrix whose length is not n*n.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNonFinite is wrapped when a vector coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")
)

package dynamo

import "errors"

// Domain errors for the gravitational core.
var (
	// ErrInvalidMass indicates a body constructed with a mass that is not strictly positive.
	ErrInvalidMass = errors.New("dynamo: mass must be strictly positive")

	// ErrDuplicateID indicates a body id that is already present in the system.
	ErrDuplicateID = errors.New("dynamo: duplicate body id")

	// ErrDivisionByZero indicates a vector divided by a zero scalar.
	ErrDivisionByZero = errors.New("dynamo: division by zero")

	// ErrMalformedVector indicates a component list that does not hold exactly three values.
	ErrMalformedVector = errors.New("dynamo: vector requires exactly 3 components")

	// ErrNonFinite indicates a body whose position or velocity contains NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite body state")
)

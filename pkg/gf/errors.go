package gf

import (
	"errors"

	"github.com/cerevo/PEAK-Rules/internal/engine"
)

// NoApplicableMethodsError is returned from Function.Call when no
// registered rule's signature implies the call's argument classes.
type NoApplicableMethodsError = engine.NoApplicableMethodsError

// AmbiguousMethodsError is returned from Function.Call when dominance
// leaves two or more incomparable actions at the winning band.
type AmbiguousMethodsError = engine.AmbiguousMethodsError

// IsNoApplicableMethods reports whether err is (or wraps) a
// NoApplicableMethodsError.
func IsNoApplicableMethods(err error) bool {
	var target *NoApplicableMethodsError
	return errors.As(err, &target)
}

// IsAmbiguousMethods reports whether err is (or wraps) an
// AmbiguousMethodsError.
func IsAmbiguousMethods(err error) bool {
	var target *AmbiguousMethodsError
	return errors.As(err, &target)
}

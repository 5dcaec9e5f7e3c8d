package party

import "errors"

// ErrFusionDepth is returned when fusion partners nest deeper than the
// schema allows. It is a protocol violation, not a validation failure.
var ErrFusionDepth = errors.New("party: fusion nesting too deep")

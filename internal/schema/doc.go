// Package schema provides the building blocks for records parsed from the
// wire: constrained field descriptors, slots that remember whether they were
// ever written, and a sticky-error pass that reads fields in declaration
// order.
//
// A value only reaches a Slot through Field.Store, which runs the field's
// constraint first. Reading a Slot that was never stored returns ErrUnset.
package schema

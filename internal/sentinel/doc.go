// Package sentinel provides a string-backed error type so sentinel errors can
// be declared as constants. Constants cannot be reassigned by importers, and
// the comparable type keeps errors.Is working through wrapped chains.
package sentinel

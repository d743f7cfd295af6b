// Package platform models simulated platform versions and decides which of
// them a test method runs against.
//
// A Table is the process-wide lookup of versions by level. Variants carry only
// the integer level and resolve the full Version through the table, which
// keeps variant identities small and safe to transmit. A Policy turns a merged
// configuration into the ordered list of versions to exercise.
package platform

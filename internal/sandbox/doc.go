// Package sandbox provides execution environments: isolated, cacheable
// runtime contexts that host one platform level in one resource mode.
//
// An Environment exposes the capabilities the lifecycle orchestrator drives:
// the active-thread binding, application set-up and tear-down hooks, the
// per-test lifecycle hook and the state providers reset after every variant.
//
// DiskFactory is the default Factory. Each environment gets its own data
// directory holding a SQLite state database copied from a per-level platform
// template. Templates are built once and shared across processes; building
// one is serialized with a file lock in the template directory.
package sandbox

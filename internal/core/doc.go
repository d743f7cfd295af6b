// Package core provides the internal implementation of the simenv runner.
// It contains the Runner (two-phase initialization, variant planning and
// execution, drained shutdown), the process-scoped Services it runs against
// (manifest resolver, environment cache, platform table) and the runner's
// Prometheus metrics.
package core

// Package lifecycle drives one execution variant through its states:
//
//	Selecting → Validating → SettingUp → Invoking → TearingDown → Resetting → Done
//
// A variant ends Failed or Skipped instead of Done when a state fails or the
// variant cannot run in its environment. Resetting runs on every path once
// Selecting has started: state providers are reset exactly once, an
// interrupted invocation thread is cleared and reported, and the environment's
// active-thread binding is restored to its value before the variant.
//
// The orchestrator is the only code that changes an environment's active
// thread. It holds the environment lock from SettingUp through Resetting, so
// variants sharing one environment never interleave their bindings.
package lifecycle

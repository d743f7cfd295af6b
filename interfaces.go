package simenv

import "context"

// Runner expands test methods into variants and runs each variant in an
// isolated, cached environment.
//
// Callers must follow this lifecycle ordering:
//
//	NewRunner → Initialize → Plan/Run/RunVariant (repeatable) → Shutdown
//
// Shutdown is safe to call at any point, including before Initialize.
type Runner interface {
	// Initialize prepares the data directory and wires collaborators.
	// Must be called before Plan, Run or RunVariant. Safe to call multiple
	// times: after a successful initialization later calls return nil. A
	// failed initialization may be retried.
	Initialize(ctx context.Context) error

	// Plan expands every method of class without running anything. A method
	// whose configuration is invalid carries a *VariantExpansionError in its
	// MethodPlan; it does not fail the call.
	//
	// Returns ErrNotInitialized or ErrShuttingDown.
	Plan(ctx context.Context, class TestClass) (*Plan, error)

	// Run expands and runs every method of class. Variants of a method run
	// in plan order and are reported in plan order. Test outcomes, including
	// expansion and setup failures, are reported in the Report; the error is
	// reserved for ErrNotInitialized and ErrShuttingDown.
	Run(ctx context.Context, class TestClass) (*Report, error)

	// RunVariant re-runs the single variant named by id.
	//
	// Returns ErrUnknownVariant when class has no such variant and a
	// *VariantExpansionError when the method cannot be expanded.
	RunVariant(ctx context.Context, class TestClass, id Identity) (*Result, error)

	// Shutdown waits for in-flight calls, then closes the environments the
	// Runner owns. Shared Services (WithServices) stay open.
	Shutdown() error
}

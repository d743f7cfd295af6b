package simenv

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/giantswarm/simenv/internal/core"
	"github.com/giantswarm/simenv/internal/lifecycle"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
	"github.com/giantswarm/simenv/internal/variant"
)

// Result and planning types. These are aliases of the internal types so
// that their methods are part of the public API.
type (
	// Variant is one concrete execution of a test method.
	Variant = variant.Variant
	// Identity names a variant: class, method, platform level and mode.
	// Its text form is accepted by ParseIdentity and RunVariant.
	Identity = variant.Identity
	// Result is the outcome of one variant.
	Result = lifecycle.Result
	// Status is the reported outcome of a variant.
	Status = lifecycle.Status
	// State is a lifecycle state recorded in Result.States.
	State = lifecycle.State
	// Plan is the expansion of every method of a class.
	Plan = core.Plan
	// MethodPlan is the expansion of one method.
	MethodPlan = core.MethodPlan
	// Report is the outcome of running a class.
	Report = core.Report
	// Manifest is a resolved application manifest.
	Manifest = manifest.Descriptor
	// PlatformVersion is a simulated platform version.
	PlatformVersion = platform.Version
)

// Collaborator interfaces a Runner can be configured with.
type (
	// PlatformPolicy selects the platform versions of a configuration.
	PlatformPolicy = platform.Policy
	// ManifestFactory identifies the manifest of a configuration.
	ManifestFactory = manifest.Factory
	// EnvironmentFactory creates isolated environments.
	EnvironmentFactory = sandbox.Factory
	// Environment is an isolated execution environment.
	Environment = sandbox.Environment
	// StateProvider resets process-wide state after every variant.
	StateProvider = sandbox.StateProvider
	// StateProviderFunc adapts a function to StateProvider.
	StateProviderFunc = sandbox.StateProviderFunc
	// StateStore is the platform state store of a disk-backed environment.
	// Rows outside the system scope are purged after every variant.
	StateStore = sandbox.Store
	// Class is the test class as bootstrapped into an environment.
	Class = sandbox.Class
)

// StateStore scopes. System rows survive resets.
const (
	ScopeSystem      = sandbox.ScopeSystem
	ScopeApplication = sandbox.ScopeApplication
	ScopeTest        = sandbox.ScopeTest
)

// Variant statuses.
const (
	StatusPassed  = lifecycle.StatusPassed
	StatusFailed  = lifecycle.StatusFailed
	StatusSkipped = lifecycle.StatusSkipped
	StatusIgnored = lifecycle.StatusIgnored
)

// Symbolic platform levels accepted in Config.SDK.
const (
	AllLevels   = platform.AllLevels
	TargetLevel = platform.TargetLevel
	OldestLevel = platform.OldestLevel
	NewestLevel = platform.NewestLevel
)

// ParseIdentity parses the text form of an Identity, Class#Method@Level/mode.
func ParseIdentity(s string) (Identity, error) {
	return variant.ParseIdentity(s)
}

// Platforms returns every platform version known to the default table, in
// level order, including unsupported ones.
func Platforms() []PlatformVersion {
	return platform.DefaultTable().All()
}

// DefaultPlatformPolicy returns the built-in selection policy over the
// default platform table. When enabled levels are given, only those survive
// selection; this narrows a run without editing test configuration.
//
//nolint:ireturn // Policies are pluggable.
func DefaultPlatformPolicy(enabled ...int) PlatformPolicy {
	return &platform.DefaultPolicy{Table: platform.DefaultTable(), Enabled: sets.New(enabled...)}
}

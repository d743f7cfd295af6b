package core

import (
	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrShuttingDown is returned by Run and Plan when the Runner is shutting down.
const ErrShuttingDown = sentinel.Error("runner is shutting down")

// ErrNotInitialized is returned by Run and Plan when Initialize has not been called.
const ErrNotInitialized = sentinel.Error("runner not initialized")

// ErrUnknownVariant is returned by RunVariant when the identity names no
// variant of the class.
const ErrUnknownVariant = sentinel.Error("unknown variant")

// ErrNoVariants is reported, wrapped as an assumption violation, for a method
// whose configuration selects no variants.
const ErrNoVariants = sentinel.Error("configuration selects no variants")

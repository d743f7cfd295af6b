// Package manifest resolves manifest identifiers into immutable descriptors
// and caches them for the life of the process.
//
// An Identifier is a value naming a manifest file, its resource locations and
// its library identifiers. A Descriptor is the parsed, capability-annotated
// result, with library descriptors embedded bottom-up. The Resolver builds at
// most one Descriptor per identifier key, even under concurrent misses.
package manifest

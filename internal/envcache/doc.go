// Package envcache memoizes execution environments by class-loader
// fingerprint, platform level and resource mode.
//
// The cache owns key computation, platform and mode validation and
// at-most-one creation per key. Building an environment is delegated to a
// sandbox.Factory. Environments live until Close; nothing is evicted
// implicitly.
package envcache

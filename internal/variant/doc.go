// Package variant expands a test method into its ordered execution variants:
// one per selected platform level and allowed resource mode.
//
// A Variant is lightweight. It refers to its manifest by identifier key and to
// its platform by level; the heavyweight descriptor and environment are looked
// up from process-wide caches when the variant runs. Identity is the
// serializable form of a variant and round-trips through text.
package variant

// Package table holds the row × column data model and cell classification.
//
// A [Table] is produced by a provider (the workspace API client or
// [ReadTSV]) and is read-only afterwards. Each cell is classified exactly
// once by [Classify] into one of five kinds:
//
//	KindEmpty        null, "", or []
//	KindScalar       a non-locator string, number or bool
//	KindLocator      "gs://bucket/key"
//	KindLocatorList  a list whose first element is a locator
//	KindScalarList   any other non-empty list
//
// The first element decides how a list is treated; a list mixing locators
// and plain values is a locator list if it starts with a locator.
package table

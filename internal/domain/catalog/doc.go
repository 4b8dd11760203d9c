// Package catalog contains the Catalog bounded context of the importer.
//
// Sheet rows are folded into immutable Item aggregates keyed by handle.
// A Catalog keeps the items in the order their handles were first seen,
// which is also the order they are published in.
package catalog

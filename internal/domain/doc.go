// Package domain defines the core domain types of the entrypoint store.
//
// An Entrypoint is a named group of taxonomy document locations. The package
// holds the entity types, the URI set value type used for exact-set
// comparison, and the error types the storage layer raises. No
// implementation code - just contracts.
package domain

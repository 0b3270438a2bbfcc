// Package mock provides deterministic test doubles for the ai
// interfaces. The mock embedder derives unit vectors from a text hash
// so tests never need a network service; behavior can be overridden
// per test via function fields.
package mock

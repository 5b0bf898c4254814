// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (user.go, event.go, lead.go, auth.go) hold shared
// types and cross-cutting interfaces. No implementation code, just contracts.
// Keeping interfaces on the consumer side prevents circular imports.
package domain

// Package kernel contains shared value objects used across the marketplace domain:
// UUID identifiers and Money amounts. These types enforce their invariants at
// construction time and are immutable afterwards, so aggregates built on top of
// them never observe partially valid identity or money values.
package kernel

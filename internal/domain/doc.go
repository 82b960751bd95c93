// Package domain contains the core entities and value objects of the lifecycle
// engine: the tracked profile, its ordered life stages, the structured result of
// an auto-update pass and the reminder campaign types. It is independent of any
// storage or delivery mechanism.
package domain

package domain

// Lifecycle is the explicit document lifecycle state. Soft-deleted documents
// stay in their collection with Status set to LifecycleDeleted and are
// excluded from reads, preserving the original data for audit.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleDeleted Lifecycle = "deleted"
)

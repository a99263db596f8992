package constants

// DispatchStatus is the canonical lifecycle status for a campaign dispatch job.
type DispatchStatus string

// Stable values (stored as-is in dispatch summaries). Transitions only move
// forward: PENDING -> RUNNING -> {COMPLETED|ABORTED}.
const (
	DispatchPending   DispatchStatus = "PENDING"
	DispatchRunning   DispatchStatus = "RUNNING"
	DispatchCompleted DispatchStatus = "COMPLETED"
	DispatchAborted   DispatchStatus = "ABORTED"
)

// ListingStatus is the commercial status of a listing.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "AVAILABLE"
	ListingReserved  ListingStatus = "RESERVED"
	ListingSold      ListingStatus = "SOLD"
	ListingRented    ListingStatus = "RENTED"
)

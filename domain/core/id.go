package core

import "github.com/google/uuid"

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// v7 keeps IDs sortable by creation time; fall back to v4 if the clock source fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ChartID        ID
	SubscriptionID ID
)

func (id ChartID) String() string        { return ID(id).String() }
func (id SubscriptionID) String() string { return ID(id).String() }

// NewChartID creates a chart instance identifier
func NewChartID() ChartID { return ChartID(NewID()) }

// NewSubscriptionID creates an event subscription identifier
func NewSubscriptionID() SubscriptionID { return SubscriptionID(NewID()) }

package ports

import (
	"time"

	"vizkit/domain/chart"
)

// Surface is an externally owned drawing target with named layers. Charts
// attach elements to it and clear what they own; they never destroy it.
type Surface interface {
	// Attach adds elements to a layer under the given owner
	Attach(layer chart.Layer, owner string, elems ...chart.Element) error
	// Clear removes everything owner attached to layer
	Clear(layer chart.Layer, owner string)
	// Remove removes everything owner attached to any layer
	Remove(owner string)
	// Elements returns a copy of a layer's elements in paint order
	Elements(layer chart.Layer) []chart.Element
	// Size reports the surface dimensions
	Size() chart.Dimensions
}

// Node is an element injected outside the surface, such as a tooltip
type Node interface {
	ID() string
	SetText(text string)
	SetVisible(visible bool)
	Move(x, y float64)
}

// Document is the global container charts inject detached nodes into
type Document interface {
	CreateNode(class string) Node
	RemoveNode(id string)
	Nodes() []Node
}

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel is idempotent.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// Package surface provides drawing targets charts can be rendered onto: an
// in-memory surface with SVG export, a detached-node document and a
// ticker-backed scheduler.
package surface

import (
	"sync"

	"vizkit/domain/chart"
	"vizkit/internal/errors"
)

// Memory is a thread-safe in-memory surface. Elements keep the order they
// were attached in within each layer.
type Memory struct {
	mu     sync.RWMutex
	dims   chart.Dimensions
	layers map[chart.Layer][]chart.Element
}

// NewMemory creates an empty surface of the given size
func NewMemory(dims chart.Dimensions) *Memory {
	layers := make(map[chart.Layer][]chart.Element, len(chart.Layers()))
	for _, layer := range chart.Layers() {
		layers[layer] = nil
	}
	return &Memory{dims: dims, layers: layers}
}

// Attach adds elements to layer. Unknown layers are rejected.
func (m *Memory) Attach(layer chart.Layer, owner string, elems ...chart.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.layers[layer]
	if !ok {
		return errors.InvalidInputf("unknown layer %q", layer)
	}
	for _, e := range elems {
		e.Owner = owner
		current = append(current, e)
	}
	m.layers[layer] = current
	return nil
}

// Clear removes owner's elements from layer
func (m *Memory) Clear(layer chart.Layer, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elems, ok := m.layers[layer]; ok {
		m.layers[layer] = without(elems, owner)
	}
}

// Remove removes owner's elements from every layer
func (m *Memory) Remove(owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for layer, elems := range m.layers {
		m.layers[layer] = without(elems, owner)
	}
}

func without(elems []chart.Element, owner string) []chart.Element {
	kept := elems[:0]
	for _, e := range elems {
		if e.Owner != owner {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(elems); i++ {
		elems[i] = chart.Element{}
	}
	return kept
}

// Elements returns a copy of layer's elements
func (m *Memory) Elements(layer chart.Layer) []chart.Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]chart.Element(nil), m.layers[layer]...)
}

// Owned returns every element owner has attached, in paint order
func (m *Memory) Owned(owner string) []chart.Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []chart.Element
	for _, layer := range chart.Layers() {
		for _, e := range m.layers[layer] {
			if e.Owner == owner {
				out = append(out, e)
			}
		}
	}
	return out
}

// Len counts the elements on all layers
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, elems := range m.layers {
		n += len(elems)
	}
	return n
}

func (m *Memory) Size() chart.Dimensions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dims
}

// SetSize changes the reported size; attached elements are left as they are
func (m *Memory) SetSize(dims chart.Dimensions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dims = dims
}

package surface

import (
	"sort"
	"sync"

	"vizkit/domain/core"
	"vizkit/ports"
)

// Document is an in-memory container for nodes charts inject outside their
// surface, such as tooltips
type Document struct {
	mu    sync.Mutex
	nodes map[string]*Node
	order []string
}

func NewDocument() *Document {
	return &Document{nodes: make(map[string]*Node)}
}

// CreateNode adds a hidden node with the given class
func (d *Document) CreateNode(class string) ports.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := &Node{id: core.NewID().String(), Class: class}
	d.nodes[n.id] = n
	d.order = append(d.order, n.id)
	return n
}

// RemoveNode deletes a node; unknown IDs are ignored
func (d *Document) RemoveNode(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[id]; !ok {
		return
	}
	delete(d.nodes, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Nodes returns the live nodes in creation order
func (d *Document) Nodes() []ports.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ports.Node, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.nodes[id])
	}
	return out
}

// Classes lists the classes of the live nodes, sorted
func (d *Document) Classes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	classes := make([]string, 0, len(d.nodes))
	for _, n := range d.nodes {
		classes = append(classes, n.Class)
	}
	sort.Strings(classes)
	return classes
}

// Node is a detached element with text and a position
type Node struct {
	mu      sync.Mutex
	id      string
	Class   string
	text    string
	visible bool
	x, y    float64
}

func (n *Node) ID() string { return n.id }

func (n *Node) SetText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
}

func (n *Node) SetVisible(visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = visible
}

func (n *Node) Move(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.x, n.y = x, y
}

// Text returns the node's current text
func (n *Node) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

// Visible reports whether the node is shown
func (n *Node) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

// Position returns where the node was last moved to
func (n *Node) Position() (float64, float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.x, n.y
}

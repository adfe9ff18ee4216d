package scene

import (
	"fmt"
	"strings"
)

// Scene is the top-level immutable data structure produced by script
// evaluation.
type Scene struct {
	Nodes     map[NodeID]*Node        `json:"nodes"`
	Roots     []NodeID                `json:"roots"`
	NameIndex map[string]NodeID       `json:"name_index"`
	Elements  map[string]ElementStyle `json:"elements,omitempty"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Elements:  make(map[string]ElementStyle),
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (s *Scene) AddRoot(id NodeID) {
	s.Roots = append(s.Roots, id)
}

// SetElement records a per-scene element style. Symbols are case-insensitive.
func (s *Scene) SetElement(symbol string, style ElementStyle) {
	s.Elements[strings.ToUpper(symbol)] = style
}

// Element returns the per-scene style for symbol, if any.
func (s *Scene) Element(symbol string) (ElementStyle, bool) {
	st, ok := s.Elements[strings.ToUpper(symbol)]
	return st, ok
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// OfKind returns all nodes of the given kind, in no particular order.
func (s *Scene) OfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, n := range s.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}

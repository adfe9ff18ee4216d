package scene

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeAtom      NodeKind = iota // sphere at an atom position
	NodeBond                      // cylinder between two atoms
	NodeRibbon                    // backbone ribbon through a trace
	NodeCell                      // wireframe box (unit cell)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (model)
)

func (k NodeKind) String() string {
	switch k {
	case NodeAtom:
		return "atom"
	case NodeBond:
		return "bond"
	case NodeRibbon:
		return "ribbon"
	case NodeCell:
		return "cell"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// DisplayName returns the node name, or its short ID when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

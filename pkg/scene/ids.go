package scene

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// NodeID is a content-addressed identifier derived from a node's path in
// the script (its name, or the form that created it).
type NodeID string

// ZeroID is the unset NodeID.
const ZeroID NodeID = ""

// NewNodeID hashes path into a NodeID.
func NewNodeID(path string) NodeID {
	sum := blake2b.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

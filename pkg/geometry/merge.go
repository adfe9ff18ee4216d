package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrDroppedGroups is returned by MergeFirstGroup when the source
	// geometry holds more than one group. Only the first one was merged.
	ErrDroppedGroups = errors.New("geometry: source has groups beyond the first")

	// ErrNotGrouped is returned when a merge source is a flat geometry.
	ErrNotGrouped = errors.New("geometry: source geometry is not grouped")
)

// MergeFirstGroup moves the first group of src's geometry onto the end of
// dst. A source mesh without geometry, or with no groups, is a no-op.
//
// Merging is limited to a single group: when src holds more, the rest stay
// on src and ErrDroppedGroups is returned after the first group has been
// moved. Callers that need every group use [MergeAll].
func MergeFirstGroup(dst *Grouped, src *Mesh) error {
	sg, err := sourceGroups(src)
	if err != nil || sg == nil || len(sg.groups) == 0 {
		return err
	}
	dst.groups = append(dst.groups, sg.groups[0])
	sg.groups = sg.groups[1:]
	if n := len(sg.groups); n > 0 {
		return fmt.Errorf("merge %q: %d group(s) not merged: %w", src.Name, n, ErrDroppedGroups)
	}
	return nil
}

// MergeAll moves every group of src's geometry onto the end of dst, in
// order. A source mesh without geometry is a no-op.
func MergeAll(dst *Grouped, src *Mesh) error {
	sg, err := sourceGroups(src)
	if err != nil || sg == nil {
		return err
	}
	dst.groups = append(dst.groups, sg.groups...)
	sg.groups = nil
	return nil
}

func sourceGroups(src *Mesh) (*Grouped, error) {
	if src == nil || src.Geometry == nil {
		return nil, nil
	}
	switch g := src.Geometry.(type) {
	case *Grouped:
		return g, nil
	case *Flat:
		return nil, fmt.Errorf("merge %q: %w", src.Name, ErrNotGrouped)
	}
	return nil, nil
}

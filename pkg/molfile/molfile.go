// Package molfile reads PDB and MDL SDF structure files into a scene. Only
// the first model or record of a file is read.
package molfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/scene"
)

// ErrFormat is returned for malformed or unsupported input.
var ErrFormat = errors.New("molfile: bad format")

// Parse reads data in the given format ("pdb" or "sdf") and returns a scene
// with a single root model named name.
func Parse(name, format string, data []byte) (*scene.Scene, error) {
	var (
		s   *scene.Scene
		err error
	)
	switch strings.ToLower(format) {
	case "pdb", "ent":
		s, err = parsePDB(name, data)
	case "sdf", "mol":
		s, err = parseSDF(name, data)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, format)
	}
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("molfile parsed", "format", format, "nodes", s.NodeCount())
	return s, nil
}

// builder accumulates nodes under one root model.
type builder struct {
	s        *scene.Scene
	prefix   string
	children []scene.NodeID
	serials  map[string]scene.NodeID
}

func newBuilder(name string) *builder {
	return &builder{
		s:       scene.New(),
		prefix:  "molfile/" + name + "/",
		serials: make(map[string]scene.NodeID),
	}
}

func (b *builder) atom(serial, element string, pos scene.Vec3) {
	if _, dup := b.serials[serial]; dup {
		return
	}
	id := scene.NewNodeID(b.prefix + "atom/" + serial)
	b.s.AddNode(&scene.Node{
		ID:   id,
		Kind: scene.NodeAtom,
		Name: "atom " + serial,
		Data: scene.AtomData{Element: element, Position: pos},
	})
	b.serials[serial] = id
	b.children = append(b.children, id)
}

// bond links two atoms by serial. Unknown serials and repeated pairs are
// skipped.
func (b *builder) bond(x, y string) {
	a, okA := b.serials[x]
	c, okC := b.serials[y]
	if !okA || !okC || a == c {
		return
	}
	if x > y {
		x, y = y, x
	}
	id := scene.NewNodeID(b.prefix + "bond/" + x + "-" + y)
	if b.s.Get(id) != nil {
		return
	}
	b.s.AddNode(&scene.Node{ID: id, Kind: scene.NodeBond, Data: scene.BondData{A: a, B: c}})
	b.children = append(b.children, id)
}

func (b *builder) ribbon(chain string, trace []scene.Vec3) {
	id := scene.NewNodeID(b.prefix + "ribbon/" + chain)
	b.s.AddNode(&scene.Node{
		ID:   id,
		Kind: scene.NodeRibbon,
		Data: scene.RibbonData{Chain: chain, Trace: trace},
	})
	b.children = append(b.children, id)
}

func (b *builder) finish(name string) *scene.Scene {
	id := scene.NewNodeID(b.prefix + "model")
	b.s.AddNode(&scene.Node{
		ID:       id,
		Kind:     scene.NodeGroup,
		Name:     name,
		Children: b.children,
		Data:     scene.GroupData{},
	})
	b.s.AddRoot(id)
	return b.s
}

// --- PDB ---

// parsePDB reads ATOM, HETATM and CONECT records up to the first ENDMDL.
// C-alpha atoms of ATOM records form one backbone ribbon per chain.
func parsePDB(name string, data []byte) (*scene.Scene, error) {
	b := newBuilder(name)
	var chains []string
	traces := make(map[string][]scene.Vec3)

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
scan:
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch record(line) {
		case "ATOM", "HETATM":
			serial := column(line, 7, 11)
			x, errX := parseFloat(column(line, 31, 38))
			y, errY := parseFloat(column(line, 39, 46))
			z, errZ := parseFloat(column(line, 47, 54))
			if err := errors.Join(errX, errY, errZ); err != nil || serial == "" {
				return nil, fmt.Errorf("%w: pdb line %d: bad atom record", ErrFormat, lineNo)
			}
			if alt := column(line, 17, 17); alt != "" && alt != "A" {
				continue
			}
			atomName := column(line, 13, 16)
			pos := scene.Vec3{X: x, Y: y, Z: z}
			b.atom(serial, pdbElement(line, atomName), pos)

			if record(line) == "ATOM" && atomName == "CA" {
				chain := column(line, 22, 22)
				if _, seen := traces[chain]; !seen {
					chains = append(chains, chain)
				}
				traces[chain] = append(traces[chain], pos)
			}
		case "CONECT":
			from := column(line, 7, 11)
			for _, c := range [][2]int{{12, 16}, {17, 21}, {22, 26}, {27, 31}} {
				if to := column(line, c[0], c[1]); to != "" {
					b.bond(from, to)
				}
			}
		case "ENDMDL":
			break scan
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("molfile: pdb: %w", err)
	}
	if len(b.serials) == 0 {
		return nil, fmt.Errorf("%w: pdb has no atoms", ErrFormat)
	}
	for _, chain := range chains {
		if len(traces[chain]) >= 2 {
			b.ribbon(chain, traces[chain])
		}
	}
	return b.finish(name), nil
}

func record(line string) string {
	return strings.TrimSpace(column(line, 1, 6))
}

// column returns the trimmed 1-based inclusive column range of a fixed
// width record, clipped to the line.
func column(line string, from, to int) string {
	if from > len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from-1 : to])
}

// pdbElement prefers the element column and falls back to the first letter
// of the atom name.
func pdbElement(line, atomName string) string {
	if el := column(line, 77, 78); el != "" {
		return el
	}
	for _, r := range atomName {
		if r >= 'A' && r <= 'Z' {
			return string(r)
		}
	}
	return "X"
}

// --- SDF ---

// parseSDF reads the V2000 connection table of the first record.
func parseSDF(name string, data []byte) (*scene.Scene, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("%w: sdf header truncated", ErrFormat)
	}
	counts := lines[3]
	if !strings.Contains(counts, "V2000") {
		return nil, fmt.Errorf("%w: only V2000 connection tables are supported", ErrFormat)
	}
	nAtoms, errA := strconv.Atoi(column(counts, 1, 3))
	nBonds, errB := strconv.Atoi(column(counts, 4, 6))
	if errA != nil || errB != nil || nAtoms <= 0 || nBonds < 0 {
		return nil, fmt.Errorf("%w: sdf counts line %q", ErrFormat, counts)
	}
	if len(lines) < 4+nAtoms+nBonds {
		return nil, fmt.Errorf("%w: sdf has %d lines, counts need %d", ErrFormat, len(lines), 4+nAtoms+nBonds)
	}

	b := newBuilder(name)
	for i := 0; i < nAtoms; i++ {
		line := lines[4+i]
		x, errX := parseFloat(column(line, 1, 10))
		y, errY := parseFloat(column(line, 11, 20))
		z, errZ := parseFloat(column(line, 21, 30))
		el := column(line, 32, 34)
		if err := errors.Join(errX, errY, errZ); err != nil || el == "" {
			return nil, fmt.Errorf("%w: sdf line %d: bad atom", ErrFormat, 5+i)
		}
		b.atom(strconv.Itoa(i+1), el, scene.Vec3{X: x, Y: y, Z: z})
	}
	for i := 0; i < nBonds; i++ {
		line := lines[4+nAtoms+i]
		a, errA := strconv.Atoi(column(line, 1, 3))
		c, errC := strconv.Atoi(column(line, 4, 6))
		if errA != nil || errC != nil {
			return nil, fmt.Errorf("%w: sdf line %d: bad bond", ErrFormat, 5+nAtoms+i)
		}
		b.bond(strconv.Itoa(a), strconv.Itoa(c))
	}
	return b.finish(name), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

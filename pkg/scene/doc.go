// Package scene defines the molecular scene graph evaluated from a scene
// script. The graph is a DAG of atoms, bonds, backbone ribbons, unit cells,
// transforms and groups. It is never mutated after evaluation; each
// evaluation produces a new graph.
package scene

// Package geometry holds the drawable mesh data that molmesh hands to a
// rasterizer, and the operations that prepare it for upload.
//
// A mesh builder appends vertices, colors, normals and connectivity into the
// growable staging containers of a [Group]. [Finalize] then seals every group
// into fixed typed buffers ([Buffer]) and releases the staging storage; once
// a group is finalized its staging is gone and no append path remains.
//
// Indexed meshes use [Grouped], an ordered list of groups each addressing at
// most [MaxGroupVertices] vertices so that uint16 indices suffice. Simple
// wireframe drawings use [Flat], a single vertex/color pair with no indices.
//
// Quad-faced meshes (backbone ribbons) get smooth per-vertex normals from
// [AccumulateNormals], which must run once, after all faces exist and before
// [Finalize]. [MergeFirstGroup] and [MergeAll] fold sub-meshes into a
// combined drawable.
//
// Nothing in this package is safe for concurrent use. A geometry is owned by
// exactly one caller while it is being built, accumulated or finalized.
package geometry

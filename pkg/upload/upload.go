// Package upload turns finalized geometry into GPU buffer and draw
// descriptors. It performs no GPU calls; a renderer creates buffers from the
// returned payloads and records one draw per [Draw].
package upload

import (
	"errors"
	"fmt"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/gogpu/gputypes"
)

// ErrNotFinalized is returned when a mesh still holds staging data.
var ErrNotFinalized = errors.New("upload: geometry not finalized")

// Shader locations of the per-vertex attributes.
const (
	LocationPosition uint32 = 0
	LocationColor    uint32 = 1
	LocationNormal   uint32 = 2
)

// vec3Stride is the byte stride of one float32x3 attribute.
const vec3Stride = 12

// copyAlignment is the size granularity of queue buffer writes.
const copyAlignment = 4

// Buffer is one GPU buffer to create and fill.
type Buffer struct {
	Label string
	Usage gputypes.BufferUsage
	// Size is len(Data) rounded up to the copy alignment.
	Size uint64
	Data []byte
}

// Draw describes a single draw call. Vertex buffers are bound in slot order
// and Layouts[i] describes VertexBuffers[i].
type Draw struct {
	Label         string
	Layouts       []gputypes.VertexBufferLayout
	VertexBuffers []*Buffer
	VertexCount   uint32

	// Index is nil for non-indexed draws.
	Index       *Buffer
	IndexFormat gputypes.IndexFormat
	IndexCount  uint32

	Topology  gputypes.PrimitiveTopology
	FrontFace gputypes.FrontFace
	CullMode  gputypes.CullMode
}

// Indexed reports whether the draw uses an index buffer.
func (d Draw) Indexed() bool {
	return d.Index != nil
}

// Plan returns the draws for a finalized mesh. Each group yields a triangle
// draw when it has faces and a line draw when it has lines; both share the
// group's vertex buffers. Triangle draws cull according to mesh.Side; line
// draws never cull. A flat geometry yields one non-indexed line draw.
// Empty meshes and groups produce no draws.
func Plan(mesh *geometry.Mesh) ([]Draw, error) {
	if mesh == nil || mesh.Geometry == nil {
		return nil, nil
	}
	var draws []Draw
	switch g := mesh.Geometry.(type) {
	case *geometry.Grouped:
		for i, grp := range g.Groups() {
			if !grp.Finalized() {
				return nil, fmt.Errorf("%w: %s group %d", ErrNotFinalized, mesh.Name, i)
			}
			draws = append(draws, planGroup(fmt.Sprintf("%s/%d", mesh.Name, i), grp.Buffers(), mesh.Side)...)
		}
	case *geometry.Flat:
		if !g.Finalized() {
			return nil, fmt.Errorf("%w: %s", ErrNotFinalized, mesh.Name)
		}
		if d, ok := planFlat(mesh.Name, g.Buffers()); ok {
			draws = append(draws, d)
		}
	}
	logging.Logger().Debug("upload plan", "mesh", mesh.Name, "draws", len(draws))
	return draws, nil
}

// cullMode maps a mesh side onto the pipeline cull mode for its faces.
func cullMode(side geometry.Side) gputypes.CullMode {
	switch side {
	case geometry.BackSide:
		return gputypes.CullModeFront
	case geometry.DoubleSide:
		return gputypes.CullModeNone
	default:
		return gputypes.CullModeBack
	}
}

func planGroup(label string, b *geometry.GroupBuffers, side geometry.Side) []Draw {
	if b.Vertices.Len() == 0 {
		return nil
	}
	layouts, buffers := vertexInputs(label, []channel{
		{"position", LocationPosition, b.Vertices},
		{"color", LocationColor, b.Colors},
		{"normal", LocationNormal, b.Normals},
	})
	vertexCount := uint32(b.Vertices.Len() / 3)

	var draws []Draw
	if b.Faces.Len() > 0 {
		draws = append(draws, Draw{
			Label:         label + "/faces",
			Layouts:       layouts,
			VertexBuffers: buffers,
			VertexCount:   vertexCount,
			Index:         indexBuffer(label+"/faces", b.Faces),
			IndexFormat:   gputypes.IndexFormatUint16,
			IndexCount:    uint32(b.Faces.Len()),
			Topology:      gputypes.PrimitiveTopologyTriangleList,
			FrontFace:     gputypes.FrontFaceCCW,
			CullMode:      cullMode(side),
		})
	}
	if b.Lines.Len() > 0 {
		draws = append(draws, Draw{
			Label:         label + "/lines",
			Layouts:       layouts,
			VertexBuffers: buffers,
			VertexCount:   vertexCount,
			Index:         indexBuffer(label+"/lines", b.Lines),
			IndexFormat:   gputypes.IndexFormatUint16,
			IndexCount:    uint32(b.Lines.Len()),
			Topology:      gputypes.PrimitiveTopologyLineList,
			FrontFace:     gputypes.FrontFaceCCW,
			CullMode:      gputypes.CullModeNone,
		})
	}
	return draws
}

func planFlat(label string, b *geometry.FlatBuffers) (Draw, bool) {
	if b.Vertices.Len() == 0 {
		return Draw{}, false
	}
	layouts, buffers := vertexInputs(label, []channel{
		{"position", LocationPosition, b.Vertices},
		{"color", LocationColor, b.Colors},
	})
	return Draw{
		Label:         label + "/lines",
		Layouts:       layouts,
		VertexBuffers: buffers,
		VertexCount:   uint32(b.Vertices.Len() / 3),
		Topology:      gputypes.PrimitiveTopologyLineList,
		FrontFace:     gputypes.FrontFaceCCW,
		CullMode:      gputypes.CullModeNone,
	}, true
}

type channel struct {
	name     string
	location uint32
	data     *geometry.Buffer[float32]
}

// vertexInputs builds one buffer and layout per populated channel. Channels
// whose buffer is nil are left out, so the shader sees no binding for them.
func vertexInputs(label string, channels []channel) ([]gputypes.VertexBufferLayout, []*Buffer) {
	var layouts []gputypes.VertexBufferLayout
	var buffers []*Buffer
	for _, c := range channels {
		if c.data.Len() == 0 {
			continue
		}
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: vec3Stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: c.location},
			},
		})
		buffers = append(buffers, newBuffer(label+"/"+c.name,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, c.data.Bytes()))
	}
	return layouts, buffers
}

func indexBuffer(label string, idx *geometry.Buffer[uint16]) *Buffer {
	return newBuffer(label+"/index", gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst, idx.Bytes())
}

// newBuffer pads data to the copy alignment. An odd count of uint16
// indices is the only case that needs it.
func newBuffer(label string, usage gputypes.BufferUsage, data []byte) *Buffer {
	size := alignUp(uint64(len(data)), copyAlignment)
	if pad := int(size) - len(data); pad > 0 {
		data = append(data, make([]byte, pad)...)
	}
	return &Buffer{Label: label, Usage: usage, Size: size, Data: data}
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

package viewer

import (
	"fmt"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/upload"
)

// Device is the part of a GPU device the gpu backend drives. Submit
// receives the draws of one frame in order.
type Device interface {
	Submit(draws []upload.Draw) error
}

type gpuViewer struct {
	dev Device
}

func newGPUViewer(opts Options) (Viewer, error) {
	if opts.Device == nil {
		return nil, ErrNoDevice
	}
	return &gpuViewer{dev: opts.Device}, nil
}

func (v *gpuViewer) Name() string { return "gpu" }

// Show plans every mesh and submits all draws as one frame.
func (v *gpuViewer) Show(meshes []*geometry.Mesh) error {
	var draws []upload.Draw
	var bytes uint64
	for _, m := range meshes {
		d, err := upload.Plan(m)
		if err != nil {
			return fmt.Errorf("viewer: gpu: %w", err)
		}
		for _, dr := range d {
			for _, b := range dr.VertexBuffers {
				bytes += b.Size
			}
			if dr.Index != nil {
				bytes += dr.Index.Size
			}
		}
		draws = append(draws, d...)
	}
	logging.Logger().Debug("viewer: gpu submit", "draws", len(draws), "bytes", bytes)
	if err := v.dev.Submit(draws); err != nil {
		return fmt.Errorf("viewer: gpu submit: %w", err)
	}
	return nil
}

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/molmesh/pkg/scene"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// Fatal evaluation errors. None of them carry a scene.
var (
	ErrTimeout    = errors.New("engine: evaluation timed out")
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
	ErrPanic      = errors.New("engine: panic during evaluation")
)

// outcome is what an evaluation goroutine hands back to Evaluate.
type outcome struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// current reports whether gen is still the newest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks until ch delivers or the engine timeout fires. A result that
// arrives after a newer Evaluate call started is dropped as superseded; a
// goroutine still running after a timeout is left to finish on its own and
// its send lands in the buffered channel.
func (e *Engine) await(ch <-chan outcome, gen uint64) (*scene.Scene, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

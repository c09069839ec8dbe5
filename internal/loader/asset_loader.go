package loader

import (
	"context"
	"errors"

	"github.com/zhanong/ecsframework/internal/scene"
)

// ErrReleased is returned by Poll on a handle that was released.
var ErrReleased = errors.New("load handle released")

// AssetLoader issues scene loads. Load must not block on the load itself.
type AssetLoader interface {
	Load(ctx context.Context, asset scene.Asset) (Handle, error)
}

// Handle tracks one issued load.
type Handle interface {
	// Poll reports whether the load has finished. It never blocks.
	Poll() (done bool, err error)
	// Release frees the loaded (or loading) scene. Releasing twice is a no-op.
	Release()
}

// SimulatedLoader completes each load after the asset's LatencyTicks polls.
type SimulatedLoader struct {
	issued   int
	released int
}

// NewSimulatedLoader creates a simulated loader.
func NewSimulatedLoader() *SimulatedLoader {
	return &SimulatedLoader{}
}

func (l *SimulatedLoader) Load(ctx context.Context, asset scene.Asset) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.issued++
	return &simulatedHandle{owner: l, remaining: asset.LatencyTicks}, nil
}

// Issued returns how many loads were issued.
func (l *SimulatedLoader) Issued() int { return l.issued }

// Released returns how many handles were released.
func (l *SimulatedLoader) Released() int { return l.released }

type simulatedHandle struct {
	owner     *SimulatedLoader
	remaining int
	released  bool
}

func (h *simulatedHandle) Poll() (bool, error) {
	if h.released {
		return false, ErrReleased
	}
	if h.remaining <= 0 {
		return true, nil
	}
	h.remaining--
	return false, nil
}

func (h *simulatedHandle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.owner.released++
}

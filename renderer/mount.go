package renderer

import (
	"context"
	"sync"

	"github.com/richinsley/gothermal/engine"
)

// Mount is one engine bound to one container.
type Mount struct {
	engine *engine.Engine
	once   sync.Once
}

// MountEffect creates and initializes an engine for cfg. If initialization
// fails the engine is disposed and nothing stays attached.
func MountEffect(ctx context.Context, cfg engine.Config) (*Mount, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Init(ctx); err != nil {
		e.Dispose()
		return nil, err
	}
	return &Mount{engine: e}, nil
}

func (m *Mount) Engine() *engine.Engine {
	return m.engine
}

// Unmount disposes the engine. Safe to call more than once.
func (m *Mount) Unmount() {
	m.once.Do(m.engine.Dispose)
}

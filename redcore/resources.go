package redcore

import (
	"sync"

	"go.uber.org/zap"
)

// ClientResources holds process-wide state (a shared listener executor
// and shutdown hooks) as an explicit value threaded into constructors
// rather than global state. One ClientResources can be shared by many
// Endpoints; Shutdown runs every registered shutdown hook once.
type ClientResources struct {
	// ListenerExecutor runs Command listener callbacks. Nil means "run
	// inline on whichever goroutine completes the command" — see
	// future.go.
	ListenerExecutor func(func())

	Logger *zap.Logger

	mu    sync.Mutex
	hooks []func()
}

// NewClientResources returns resources with a no-op logger and an inline
// listener executor; callers override what they need.
func NewClientResources() *ClientResources {
	return &ClientResources{Logger: zap.NewNop()}
}

// OnShutdown registers a hook to run when Shutdown is called. Hooks run
// in reverse registration order, so the last-registered hook — typically
// the outermost wrapper — is the first one unwound.
func (r *ClientResources) OnShutdown(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Shutdown runs every registered hook exactly once.
func (r *ClientResources) Shutdown() {
	r.mu.Lock()
	hooks := r.hooks
	r.hooks = nil
	r.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

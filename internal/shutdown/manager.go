// Package shutdown runs registered cleanup steps once, on a signal or on request.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ecg-annotator/internal/logger"
)

// DefaultStepTimeout bounds each cleanup step
const DefaultStepTimeout = 10 * time.Second

type step struct {
	name string
	fn   func() error
}

type Manager struct {
	steps       []step
	logger      logger.Logger
	stepTimeout time.Duration

	mu      sync.Mutex
	once    sync.Once
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger:      log,
		stepTimeout: DefaultStepTimeout,
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetStepTimeout changes how long a single step may run before it is abandoned
func (m *Manager) SetStepTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepTimeout = d
}

// Register adds a cleanup step. Steps run in reverse registration order.
func (m *Manager) Register(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Listen runs Shutdown when SIGINT or SIGTERM arrives. onSignal, if set, runs
// after the steps complete, typically to quit the UI loop.
func (m *Manager) Listen(onSignal func()) {
	m.mu.Lock()
	if m.sigChan != nil {
		m.mu.Unlock()
		return
	}
	m.sigChan = make(chan os.Signal, 1)
	sigChan := m.sigChan
	m.mu.Unlock()

	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("Shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			if onSignal != nil {
				onSignal()
			}
		case <-m.done:
		}
	}()
}

// Shutdown runs every step once. Later calls return immediately.
func (m *Manager) Shutdown() {
	m.once.Do(m.run)
}

func (m *Manager) run() {
	m.mu.Lock()
	steps := append([]step(nil), m.steps...)
	timeout := m.stepTimeout
	sigChan := m.sigChan
	m.mu.Unlock()

	if sigChan != nil {
		signal.Stop(sigChan)
	}
	m.cancel()

	m.logger.Info("Shutdown sequence initiated", map[string]interface{}{
		"steps": len(steps),
	})

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.fn()
		}()

		select {
		case err := <-errCh:
			if err != nil {
				m.logger.Error("Shutdown step failed", err, map[string]interface{}{"step": s.name})
			} else {
				m.logger.Debug("Shutdown step completed", map[string]interface{}{"step": s.name})
			}
		case <-time.After(timeout):
			m.logger.Warning("Shutdown step timeout", map[string]interface{}{
				"step":    s.name,
				"timeout": timeout.String(),
			})
		}
	}

	close(m.done)
	m.logger.Info("Shutdown sequence completed", nil)
}

// Context is cancelled when shutdown starts
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Done is closed once every step has finished or timed out
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
)

var (
	ErrRunning     = errors.New("poll: loop already running")
	ErrInvalidLoop = errors.New("poll: interval and func required")
)

// Func es un tick. Si el ctx está cancelado al volver, el resultado se descarta.
type Func func(ctx context.Context) error

// Loop es el único timer de una vista: Start al montar, Stop al desmontar.
// Stop cancela el request en vuelo y espera a que la goroutine termine, así
// ningún resultado se aplica después del Stop.
type Loop struct {
	Name      string
	Interval  time.Duration
	Fn        Func
	Immediate bool // corre un tick apenas arranca

	Log     logger.Logger
	Metrics *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	kick   chan struct{}
}

func (l *Loop) Start(parent context.Context) error {
	if l.Interval <= 0 || l.Fn == nil {
		return ErrInvalidLoop
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.kick = make(chan struct{}, 1)

	go l.run(ctx, l.done, l.kick)
	return nil
}

// Stop es idempotente.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done, l.kick = nil, nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Trigger pide un tick inmediato (p.ej. después de enviar un mensaje).
// No bloquea; si ya hay uno pendiente no encola otro.
func (l *Loop) Trigger() {
	l.mu.Lock()
	kick := l.kick
	l.mu.Unlock()
	if kick == nil {
		return
	}
	select {
	case kick <- struct{}{}:
	default:
	}
}

func (l *Loop) run(ctx context.Context, done chan struct{}, kick chan struct{}) {
	defer close(done)

	t := time.NewTicker(l.Interval)
	defer t.Stop()

	if l.Immediate {
		l.tick(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.tick(ctx)
		case <-kick:
			l.tick(ctx)
			t.Reset(l.Interval)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := l.Fn(ctx)
	if ctx.Err() != nil {
		// vista desmontada durante el tick: el resultado no cuenta
		return
	}
	l.Metrics.PollTick(l.Name, err)
	if err != nil && l.Log != nil {
		// best-effort: se loguea y se sigue con el próximo tick
		l.Log.Warn("poll tick failed", map[string]any{"view": l.Name, "err": err})
	}
}

// Registry garantiza un solo loop por vista (clave).
type Registry struct {
	// ops serializa Start/Stop: el reemplazo de un loop por clave es atómico.
	ops sync.Mutex

	mu    sync.Mutex
	loops map[string]*Loop
}

func NewRegistry() *Registry {
	return &Registry{loops: map[string]*Loop{}}
}

// Start detiene el loop previo de la misma clave antes de arrancar el nuevo.
func (r *Registry) Start(ctx context.Context, key string, l *Loop) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	prev := r.loops[key]
	delete(r.loops, key)
	r.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	if err := l.Start(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	r.loops[key] = l
	r.mu.Unlock()
	return nil
}

func (r *Registry) Stop(key string) {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	l := r.loops[key]
	delete(r.loops, key)
	r.mu.Unlock()
	if l != nil {
		l.Stop()
	}
}

func (r *Registry) StopAll() {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	loops := r.loops
	r.loops = map[string]*Loop{}
	r.mu.Unlock()
	for _, l := range loops {
		l.Stop()
	}
}

// Active reporta cuántos loops hay corriendo.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.loops {
		if l.Running() {
			n++
		}
	}
	return n
}

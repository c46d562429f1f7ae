package notifications

import (
	"context"
	"sync"
	"time"

	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
	"petcare-client/internal/platform/poll"
)

const DefaultInterval = 20 * time.Second

type BadgeOptions struct {
	Interval time.Duration
	Log      logger.Logger
	Metrics  *metrics.Metrics
	// OnChange se llama cuando el conteo cambia.
	OnChange func(count int)
}

// Badge mantiene el conteo de no leídas con un loop de polling.
type Badge struct {
	svc      *Service
	loop     *poll.Loop
	onChange func(int)

	mu     sync.Mutex
	count  int
	loaded bool
}

func NewBadge(svc *Service, opts BadgeOptions) *Badge {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	b := &Badge{svc: svc, onChange: opts.OnChange}
	b.loop = &poll.Loop{
		Name:      "notifications",
		Interval:  interval,
		Fn:        b.tick,
		Immediate: true,
		Log:       opts.Log,
		Metrics:   opts.Metrics,
	}
	return b
}

func (b *Badge) Key() string { return "notifications:badge" }

func (b *Badge) Loop() *poll.Loop { return b.loop }

func (b *Badge) Start(ctx context.Context) error { return b.loop.Start(ctx) }

func (b *Badge) Stop() { b.loop.Stop() }

func (b *Badge) Refresh() { b.loop.Trigger() }

func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Badge) tick(ctx context.Context) error {
	n, err := b.svc.UnreadCount(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	b.mu.Lock()
	changed := !b.loaded || n != b.count
	b.count, b.loaded = n, true
	b.mu.Unlock()

	if changed && b.onChange != nil {
		b.onChange(n)
	}
	return nil
}

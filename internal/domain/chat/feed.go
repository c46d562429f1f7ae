package chat

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
	"petcare-client/internal/platform/poll"
)

const DefaultInterval = 3 * time.Second

type FeedOptions struct {
	Interval time.Duration
	Log      logger.Logger
	Metrics  *metrics.Metrics
	// OnUpdate se llama con cada lista aplicada (desde la goroutine del loop).
	OnUpdate func([]Message)
}

// Feed es la vista de mensajes de una sala: un loop de polling que mantiene
// la última lista conocida.
type Feed struct {
	svc      *Service
	room     int64
	loop     *poll.Loop
	onUpdate func([]Message)

	mu   sync.RWMutex
	msgs []Message
}

func NewFeed(svc *Service, room int64, opts FeedOptions) *Feed {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	f := &Feed{svc: svc, room: room, onUpdate: opts.OnUpdate}
	f.loop = &poll.Loop{
		Name:      "chat",
		Interval:  interval,
		Fn:        f.tick,
		Immediate: true,
		Log:       opts.Log,
		Metrics:   opts.Metrics,
	}
	return f
}

// Key es la clave del feed en un poll.Registry.
func (f *Feed) Key() string { return "chat:" + strconv.FormatInt(f.room, 10) }

func (f *Feed) Loop() *poll.Loop { return f.loop }

func (f *Feed) Start(ctx context.Context) error { return f.loop.Start(ctx) }

func (f *Feed) Stop() { f.loop.Stop() }

// Refresh pide un fetch inmediato (después de enviar).
func (f *Feed) Refresh() { f.loop.Trigger() }

func (f *Feed) Messages() []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.msgs)
}

func (f *Feed) tick(ctx context.Context) error {
	list, err := f.svc.Messages(ctx, f.room)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	f.mu.Lock()
	f.msgs = list
	f.mu.Unlock()

	if f.onUpdate != nil {
		f.onUpdate(slices.Clone(list))
	}
	return nil
}

package notifications

import (
	"context"
	"slices"
	"sync"

	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
)

// Inbox es la lista de notificaciones en pantalla. Marcar como leído cambia
// el estado local primero; si el servidor falla, el cambio se revierte.
type Inbox struct {
	svc     *Service
	log     logger.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	items []Notification
}

func NewInbox(svc *Service, log logger.Logger, m *metrics.Metrics) *Inbox {
	if log == nil {
		log = logger.Nop()
	}
	return &Inbox{svc: svc, log: log, metrics: m}
}

func (in *Inbox) Load(ctx context.Context) ([]Notification, error) {
	list, err := in.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	in.mu.Lock()
	in.items = list
	in.mu.Unlock()
	return slices.Clone(list), nil
}

func (in *Inbox) Items() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.items)
}

func (in *Inbox) Unread() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return CountUnread(in.items)
}

// MarkRead marca local y después en el servidor. Si falla vuelve al estado
// previo, que puede ser "leída" si ya lo estaba.
func (in *Inbox) MarkRead(ctx context.Context, id int64) error {
	prev, ok := in.flip(id)
	if !ok {
		return ErrNotFound
	}
	if err := in.svc.MarkRead(ctx, id); err != nil {
		in.setRead([]int64{id}, prev)
		in.metrics.OptimisticRevert("notifications.mark_read")
		in.log.Warn("mark read reverted", map[string]any{"notification_id": id, "err": err})
		return err
	}
	return nil
}

func (in *Inbox) MarkAllRead(ctx context.Context) error {
	in.mu.Lock()
	var unread []int64
	for _, n := range in.items {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	in.mu.Unlock()
	if len(unread) == 0 {
		return nil
	}

	in.setRead(unread, true)
	if err := in.svc.MarkAllRead(ctx); err != nil {
		// solo se revierten las que estaban sin leer
		in.setRead(unread, false)
		in.metrics.OptimisticRevert("notifications.mark_all_read")
		in.log.Warn("mark all read reverted", map[string]any{"count": len(unread), "err": err})
		return err
	}
	return nil
}

// flip marca id como leída y devuelve el valor anterior.
func (in *Inbox) flip(id int64) (prev bool, ok bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].ID == id {
			prev = in.items[i].IsRead
			in.items[i].IsRead = true
			return prev, true
		}
	}
	return false, false
}

// setRead reporta si encontró al menos un id.
func (in *Inbox) setRead(ids []int64, read bool) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	found := false
	for i := range in.items {
		if slices.Contains(ids, in.items[i].ID) {
			in.items[i].IsRead = read
			found = true
		}
	}
	return found
}

package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"petcare-client/internal/ports/media"
)

// Refresher es lo que el composer necesita del feed.
type Refresher interface {
	Refresh()
}

// Composer es el input de la sala: texto + un adjunto opcional.
type Composer struct {
	svc      *Service
	room     int64
	feed     Refresher
	uploader media.Uploader

	mu         sync.Mutex
	text       string
	attachment *media.Upload
	sending    bool
}

func NewComposer(svc *Service, room int64, feed Refresher, uploader media.Uploader) *Composer {
	return &Composer{svc: svc, room: room, feed: feed, uploader: uploader}
}

func (c *Composer) SetText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
}

// Draft devuelve el borrador actual.
func (c *Composer) Draft() (string, *media.Upload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attachment == nil {
		return c.text, nil
	}
	a := *c.attachment
	return c.text, &a
}

// Attach sube el archivo y lo deja como adjunto del borrador.
func (c *Composer) Attach(ctx context.Context, name string, r io.Reader) (media.Upload, error) {
	if c.uploader == nil {
		return media.Upload{}, ErrNoUploader
	}
	up, err := c.uploader.Upload(ctx, name, r)
	if err != nil {
		return media.Upload{}, fmt.Errorf("upload attachment: %w", err)
	}
	c.mu.Lock()
	c.attachment = &up
	c.mu.Unlock()
	return up, nil
}

func (c *Composer) ClearAttachment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachment = nil
}

// Send limpia el borrador antes de confirmar (optimista), manda el mensaje y
// pide un refetch. Si falla, el borrador vuelve salvo que el usuario ya haya
// escrito otra cosa.
func (c *Composer) Send(ctx context.Context) (Message, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return Message{}, ErrSendInFlight
	}
	text, att := c.text, c.attachment
	if strings.TrimSpace(text) == "" && att == nil {
		c.mu.Unlock()
		return Message{}, ErrEmptyMessage
	}
	c.text, c.attachment = "", nil
	c.sending = true
	c.mu.Unlock()

	req := SendRequest{Room: c.room, Content: text}
	if att != nil {
		req.AttachmentURL = att.URL
		req.AttachmentType = att.Kind
	}
	msg, err := c.svc.Send(ctx, req)

	c.mu.Lock()
	c.sending = false
	if err != nil {
		if c.text == "" {
			c.text = text
		}
		if c.attachment == nil {
			c.attachment = att
		}
		c.mu.Unlock()
		return Message{}, err
	}
	c.mu.Unlock()

	if c.feed != nil {
		c.feed.Refresh()
	}
	return msg, nil
}

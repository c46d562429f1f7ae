package chat

import (
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"petcare-client/internal/ports/media"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotConfirmed = errors.New("room deletion not confirmed")
	ErrEmptyMessage = errors.New("write a message or attach a file")
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrNoUploader   = errors.New("attachments are not configured")
)

// Room junta a un dueño y un prestador alrededor de una reserva o servicio.
type Room struct {
	ID          int64     `json:"id"`
	Owner       int64     `json:"owner"`
	Provider    int64     `json:"provider"`
	Booking     int64     `json:"booking,omitempty"`
	Service     int64     `json:"service,omitempty"`
	IsSupport   bool      `json:"is_support,omitempty"`
	LastMessage string    `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Counterpart devuelve el otro participante de la sala.
func (r Room) Counterpart(userID int64) int64 {
	if userID == r.Owner {
		return r.Provider
	}
	return r.Owner
}

type Message struct {
	ID             int64      `json:"id"`
	Room           int64      `json:"room"`
	Sender         int64      `json:"sender"`
	Content        string     `json:"content"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentType media.Kind `json:"attachment_type,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitzero"`
}

// HasAttachment reporta si el mensaje trae un adjunto.
func (m Message) HasAttachment() bool {
	return strings.TrimSpace(m.AttachmentURL) != ""
}

// AttachmentKind: el tipo que manda el servidor es la fuente de verdad; la
// heurística por URL queda solo para mensajes viejos sin attachment_type.
func (m Message) AttachmentKind(imageHost string) media.Kind {
	if !m.HasAttachment() {
		return ""
	}
	switch m.AttachmentType {
	case media.KindImage, media.KindFile:
		return m.AttachmentType
	}
	return GuessKind(m.AttachmentURL, imageHost)
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".webp": true, ".heic": true,
}

// GuessKind clasifica por extensión o por el host de imágenes (/image/ en el path).
func GuessKind(rawURL, imageHost string) media.Kind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return media.KindFile
	}
	if imageExts[strings.ToLower(path.Ext(u.Path))] {
		return media.KindImage
	}
	if imageHost != "" && strings.EqualFold(u.Hostname(), imageHost) && strings.Contains(u.Path, "/image/") {
		return media.KindImage
	}
	return media.KindFile
}

type SendRequest struct {
	Room           int64      `json:"room"`
	Content        string     `json:"content"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentType media.Kind `json:"attachment_type,omitempty"`
}

type TicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

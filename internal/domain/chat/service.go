package chat

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
)

// Confirmer pide confirmación explícita para acciones destructivas.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapta una función a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

type Service struct {
	api *httpclient.Client
	log logger.Logger
}

func NewService(api *httpclient.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{api: api, log: log.With(map[string]any{"flow": "chat"})}
}

func (s *Service) Rooms(ctx context.Context) ([]Room, error) {
	return httpclient.GetList[Room](ctx, s.api, "/chat-rooms/", nil)
}

// DeleteRoom borra la sala solo si el Confirmer acepta. Es irreversible.
func (s *Service) DeleteRoom(ctx context.Context, id int64, c Confirmer) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if c == nil {
		return ErrNotConfirmed
	}
	ok, err := c.Confirm(ctx, fmt.Sprintf("Delete chat room %d and all its messages? This cannot be undone.", id))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	if err := s.api.Delete(ctx, fmt.Sprintf("/chat-rooms/%d/", id)); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	s.log.Info("chat room deleted", map[string]any{"room_id": id})
	return nil
}

// Messages trae los mensajes de la sala. Un payload con forma inesperada
// se toma como lista vacía.
func (s *Service) Messages(ctx context.Context, room int64) ([]Message, error) {
	if room <= 0 {
		return nil, ErrInvalidInput
	}
	q := url.Values{"room": {strconv.FormatInt(room, 10)}}
	return httpclient.GetList[Message](ctx, s.api, "/messages/", q)
}

func (s *Service) Send(ctx context.Context, in SendRequest) (Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.AttachmentURL = strings.TrimSpace(in.AttachmentURL)
	if in.Room <= 0 {
		return Message{}, ErrInvalidInput
	}
	if in.Content == "" && in.AttachmentURL == "" {
		return Message{}, ErrEmptyMessage
	}
	if in.AttachmentURL == "" {
		in.AttachmentType = ""
	}

	var out Message
	if err := s.api.Post(ctx, "/messages/", in, &out); err != nil {
		return Message{}, fmt.Errorf("send message: %w", err)
	}
	return out, nil
}

// CreateSupportTicket abre una sala con soporte.
func (s *Service) CreateSupportTicket(ctx context.Context, subject, message string) (Room, error) {
	in := TicketRequest{Subject: strings.TrimSpace(subject), Message: strings.TrimSpace(message)}
	if in.Subject == "" {
		return Room{}, httpclient.Invalid("subject", "required")
	}
	if in.Message == "" {
		return Room{}, httpclient.Invalid("message", "required")
	}

	var out Room
	if err := s.api.Post(ctx, "/chat/create-ticket/", in, &out); err != nil {
		return Room{}, fmt.Errorf("create ticket: %w", err)
	}
	return out, nil
}

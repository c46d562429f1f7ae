package notifications

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"petcare-client/internal/platform/httpclient"
)

type Service struct {
	api *httpclient.Client
}

func NewService(api *httpclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]Notification, error) {
	return httpclient.GetList[Notification](ctx, s.api, "/notifications/", nil)
}

// UnreadCount usa el endpoint de conteo; si el servidor no lo tiene (404/405)
// cuenta sobre la lista completa.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	raw, err := s.api.DoRaw(ctx, httpclient.Request{Method: http.MethodGet, Path: "/notifications/unread_count/"})
	if err == nil {
		for _, path := range []string{"unread_count", "count"} {
			if v := gjson.GetBytes(raw, path); v.Exists() {
				return int(v.Int()), nil
			}
		}
	} else if !httpclient.IsNotFound(err) {
		return 0, err
	}

	list, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return CountUnread(list), nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/notifications/%d/mark_read/", id), nil, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.api.Post(ctx, "/notifications/mark_all_read/", nil, nil); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

package certifications

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"petcare-client/internal/platform/httpclient"
)

type Service struct {
	api *httpclient.Client
}

func NewService(api *httpclient.Client) *Service {
	return &Service{api: api}
}

// List trae las certificaciones; providerID > 0 pide solo las de ese prestador.
func (s *Service) List(ctx context.Context, providerID int64) ([]Certification, error) {
	var q url.Values
	if providerID > 0 {
		q = url.Values{"provider": {strconv.FormatInt(providerID, 10)}}
	}
	list, err := httpclient.GetList[Certification](ctx, s.api, "/certifications/", q)
	if err != nil {
		return nil, err
	}
	if providerID <= 0 {
		return list, nil
	}
	out := list[:0]
	for _, c := range list {
		if c.Provider == providerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Certification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Document = strings.TrimSpace(in.Document)
	if in.Title == "" {
		return Certification{}, httpclient.Invalid("title", "required")
	}
	if u, err := url.ParseRequestURI(in.Document); err != nil || u.Host == "" {
		return Certification{}, httpclient.Invalid("document", "upload the document first")
	}

	var out Certification
	if err := s.api.Post(ctx, "/certifications/", in, &out); err != nil {
		return Certification{}, fmt.Errorf("create certification: %w", err)
	}
	return out, nil
}

// HasApproved indica si el prestador tiene al menos una certificación aprobada.
func (s *Service) HasApproved(ctx context.Context, providerID int64) (bool, error) {
	list, err := s.List(ctx, providerID)
	if err != nil {
		return false, err
	}
	for _, c := range list {
		if c.Approved() {
			return true, nil
		}
	}
	return false, nil
}

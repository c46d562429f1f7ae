package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
)

type Service struct {
	api *httpclient.Client
	log logger.Logger
}

func NewService(api *httpclient.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{api: api, log: log.With(map[string]any{"flow": "reviews"})}
}

// ItemResult es el resultado de una entrada del batch.
type ItemResult struct {
	Key    KindKey
	Review Review
	Err    error
}

// BatchError: el batch se mandó entero pero algunas entradas fallaron.
type BatchError struct {
	Failed    []ItemResult
	Succeeded []KindKey
}

func (e *BatchError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Key.String()
	}
	return fmt.Sprintf("reviews: %d of %d failed (%s)",
		len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(names, ", "))
}

func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f.Err
	}
	return out
}

// Submit manda un POST /reviews/ por entrada, en paralelo, y espera a todos.
// Un borrador vacío no hace ningún request.
func (s *Service) Submit(ctx context.Context, d *Draft) ([]ItemResult, error) {
	keys, reqs, err := d.Batch()
	if err != nil {
		return nil, err
	}

	results := make([]ItemResult, len(reqs))
	// Todos los POST salen a la vez.
	var g errgroup.Group
	for i := range reqs {
		g.Go(func() error {
			var out Review
			err := s.api.Post(ctx, "/reviews/", reqs[i], &out)
			results[i] = ItemResult{Key: keys[i], Review: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	be := &BatchError{}
	for _, r := range results {
		if r.Err != nil {
			be.Failed = append(be.Failed, r)
		} else {
			be.Succeeded = append(be.Succeeded, r.Key)
		}
	}
	if len(be.Failed) > 0 {
		s.log.Warn("review batch partially failed", map[string]any{
			"booking_id": d.Booking().ID,
			"failed":     len(be.Failed),
			"succeeded":  len(be.Succeeded),
		})
		return results, be
	}
	s.log.Info("review batch submitted", map[string]any{"booking_id": d.Booking().ID, "count": len(results)})
	return results, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Review, error) {
	q := url.Values{}
	if f.Booking > 0 {
		q.Set("booking", strconv.FormatInt(f.Booking, 10))
	}
	if f.Service > 0 {
		q.Set("service", strconv.FormatInt(f.Service, 10))
	}
	if f.Provider > 0 {
		q.Set("provider", strconv.FormatInt(f.Provider, 10))
	}
	list, err := httpclient.GetList[Review](ctx, s.api, "/reviews/", q)
	if err != nil {
		return nil, err
	}

	out := list[:0]
	for _, r := range list {
		if f.Booking > 0 && r.Booking != f.Booking {
			continue
		}
		if f.Service > 0 && r.Service != f.Service {
			continue
		}
		if f.Provider > 0 && r.Provider != f.Provider {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// FailedKeys es un helper para la vista: qué entradas reintentar.
func FailedKeys(err error) []KindKey {
	var be *BatchError
	if !errors.As(err, &be) {
		return nil
	}
	out := make([]KindKey, len(be.Failed))
	for i, f := range be.Failed {
		out[i] = f.Key
	}
	sortKeys(out)
	return out
}

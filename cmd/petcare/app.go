package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petcare-client/internal/adapters/media/multipart"
	s3media "petcare-client/internal/adapters/media/s3"
	"petcare-client/internal/adapters/storage/file"
	mem "petcare-client/internal/adapters/storage/memory"
	pg "petcare-client/internal/adapters/storage/postgres"
	rds "petcare-client/internal/adapters/storage/redis"
	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/notifications"
	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/config"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
	"petcare-client/internal/platform/poll"
	"petcare-client/internal/ports/media"
	"petcare-client/internal/session"
)

// app junta todo lo que los comandos necesitan. Cada comando es una "vista".
type app struct {
	cfg     config.Config
	log     logger.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	out     io.Writer
	in      io.Reader

	api   *httpclient.Client
	sess  *session.Store
	polls *poll.Registry

	users    *users.Service
	pets     *pets.Service
	certs    *certifications.Service
	services *services.Catalog
	bookings *bookings.Service
	reviews  *reviews.Service
	chat     *chat.Service
	notifs   *notifications.Service

	uploader media.Uploader
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config, log logger.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	api, err := httpclient.New(httpclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  log,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		reg:     reg,
		metrics: m,
		out:     os.Stdout,
		in:      os.Stdin,
		api:     api,
		polls:   poll.NewRegistry(),
	}

	repo, err := a.sessionRepo(ctx)
	if err != nil {
		return nil, err
	}
	a.sess = session.NewStore(api, repo, log)

	a.users = users.NewService(api)
	a.pets = pets.NewService(api)
	a.certs = certifications.NewService(api)
	a.services = services.NewCatalog(api, a.certs)
	a.bookings = bookings.NewService(api, log)
	a.reviews = reviews.NewService(api, log)
	a.chat = chat.NewService(api, log)
	a.notifs = notifications.NewService(api)

	// sin uploader configurado los adjuntos quedan deshabilitados
	if up, err := a.mediaUploader(); err != nil {
		log.Warn("media uploader disabled", map[string]any{"err": err})
	} else {
		a.uploader = up
	}
	return a, nil
}

func (a *app) sessionRepo(ctx context.Context) (session.Repository, error) {
	sc := a.cfg.Session
	switch sc.Backend {
	case "memory":
		return mem.NewSessionRepo(), nil
	case "file":
		return file.NewSessionRepo(sc.FilePath)
	case "redis":
		rc := rds.Config{Address: sc.Redis.Address, Password: sc.Redis.Password, DB: sc.Redis.DB, Key: sc.Redis.Key}
		client := rds.NewClient(rc)
		if err := rds.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		repo := rds.NewSessionRepo(client, rc)
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case "postgres":
		db, err := pg.Open(sc.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return pg.NewSessionRepo(db, os.Getenv("PETCARE_PROFILE")), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", sc.Backend)
	}
}

var errNoMedia = errors.New("media upload not configured")

func (a *app) mediaUploader() (media.Uploader, error) {
	mc := a.cfg.Media
	switch mc.Provider {
	case "s3":
		if mc.S3.Bucket == "" {
			return nil, errNoMedia
		}
		return s3media.NewUploader(s3media.Config{
			Bucket:    mc.S3.Bucket,
			Region:    mc.S3.Region,
			Endpoint:  mc.S3.Endpoint,
			AccessKey: mc.S3.AccessKey,
			SecretKey: mc.S3.SecretKey,
			PublicURL: mc.S3.PublicURL,
			Prefix:    mc.S3.Prefix,
		})
	default:
		c := multipart.NewClient(multipart.Config{
			UploadURL: mc.Multipart.UploadURL,
			FileField: mc.Multipart.FileField,
			Fields:    mc.Multipart.Fields,
			URLPath:   mc.Multipart.URLPath,
		})
		if !c.IsConfigured() {
			return nil, errNoMedia
		}
		return c, nil
	}
}

// serveMetrics expone /metrics mientras dura un comando "watch".
func (a *app) serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server", map[string]any{"addr": addr, "err": err})
		}
	}()
	a.log.Info("metrics listening", map[string]any{"addr": addr})
}

func (a *app) Close() {
	a.polls.StopAll()
	for _, c := range a.closers {
		_ = c()
	}
}

// user es la guarda de las vistas autenticadas.
func (a *app) user() (users.User, error) {
	return a.sess.RequireUser()
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"petcare-client/internal/adapters/auth/jwtauth"
	"petcare-client/internal/mockapi"
	"petcare-client/internal/platform/config"
	"petcare-client/internal/platform/logger"
	"petcare-client/internal/ports/auth"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "archivo YAML de config")
		addr    = flag.String("addr", "", "dirección de escucha (pisa mockapi.addr)")
		prefix  = flag.String("prefix", "/api", "prefijo de las rutas")
		dev     = flag.Bool("dev", false, "sin JWT: acepta X-Debug-User-ID")
		noSeed  = flag.Bool("no-seed", false, "arrancar sin datos demo")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.NewFromEnv().Error("config", map[string]any{"err": err})
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    "petcare-mockapi",
	})

	listen := cfg.MockAPI.Addr
	if *addr != "" {
		listen = *addr
	}

	store := mockapi.NewStore()
	if !*noSeed {
		demo, err := mockapi.Seed(store)
		if err != nil {
			log.Error("seed", map[string]any{"err": err})
			os.Exit(1)
		}
		log.Info("demo data loaded", map[string]any{
			"owner":    mockapi.DemoOwnerEmail,
			"provider": mockapi.DemoProviderEmail,
			"password": mockapi.DemoPassword,
			"walk_id":  demo.Walk,
		})
	}

	signer, err := jwtauth.NewSigner(jwtauth.Config{Secret: cfg.MockAPI.JWTSecret})
	if err != nil {
		log.Error("jwt signer", map[string]any{"err": err})
		os.Exit(1)
	}
	var verifier auth.AuthVerifier = signer
	if *dev {
		verifier = nil // modo dev
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := mockapi.NewRouter(mockapi.Options{
		Store:     store,
		Verifier:  verifier,
		Issuer:    signer,
		Log:       log,
		RateLimit: cfg.MockAPI.RateLimit,
		Registry:  reg,
	})

	root := chi.NewRouter()
	if *prefix == "" || *prefix == "/" {
		root.Mount("/", api)
	} else {
		root.Mount(*prefix, api)
	}

	srv := &http.Server{
		Addr:         listen,
		Handler:      root,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": listen, "prefix": *prefix, "dev": *dev})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
}

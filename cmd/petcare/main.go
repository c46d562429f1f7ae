package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"petcare-client/internal/platform/config"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
	"petcare-client/internal/session"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: petcare [-config file] [-metrics-addr addr] <command> [args]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", name, commands[name].help)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", os.Getenv("PETCARE_CONFIG"), "YAML config file")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics here while watching (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		return 2
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    "petcare",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	if !cmd.anonymous {
		if _, err := a.sess.Restore(ctx); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
			log.Warn("session restore failed", map[string]any{"err": err})
		}
	}

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		return report(err)
	}
	return 0
}

func report(err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, "not logged in: run `petcare login` first")
	case httpclient.Classify(err) == httpclient.KindUnknown:
		// errores locales (flujo, confirmaciones, archivos) ya son legibles
		fmt.Fprintln(os.Stderr, "error:", err)
	default:
		fmt.Fprintln(os.Stderr, "error:", httpclient.UserMessage(err))
	}
	return 1
}

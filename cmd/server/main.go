package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mwhite/pointdeck/internal/api"
	"github.com/mwhite/pointdeck/internal/config"
	"github.com/mwhite/pointdeck/internal/registry"
	"github.com/mwhite/pointdeck/internal/server"
	"github.com/mwhite/pointdeck/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	reapGrace      time.Duration
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "", "server address")
	flag.DurationVar(&reapGrace, "reap-grace", 0, "how long an empty room is kept before deletion")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[pointdeck] ", log.LstdFlags)

	cfg, err := config.Load(addr, allowedOrigins, reapGrace)
	if err != nil {
		logger.Fatal("config:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	reg := registry.NewRegistry(registry.NewMemoryStore())

	pokerServer, err := server.NewPokerServer(logger, reg, statsUpdater, cfg.ReapGrace)
	if err != nil {
		logger.Fatal("new poker server:", err)
	}

	srv := api.NewPointdeckApp(mux, logger, pokerServer, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go pokerServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down poker server...")
	if err := pokerServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("poker server shutdown:", err)
	}

	logger.Println("shutdown complete")
}

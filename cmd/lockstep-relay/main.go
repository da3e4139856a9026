// Command lockstep-relay fans command batches out to every connected lockstep client.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lixenwraith/lockstep/network"
	"github.com/lixenwraith/lockstep/service"
)

func main() {
	addr := flag.String("addr", network.DefaultConfig().Address, "Listen address")
	path := flag.String("path", network.DefaultConfig().Path, "Websocket endpoint path")
	maxPeers := flag.Int("max-peers", network.DefaultConfig().MaxPeers, "Maximum connected clients")
	debugFlag := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debugFlag {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(level)

	cfg := network.ServerConfig(*addr)
	cfg.Path = *path
	cfg.MaxPeers = *maxPeers

	hub := service.NewHub(log.Logger)
	if err := hub.Register(network.NewRelayService(log.Logger), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register relay: %v\n", err)
		os.Exit(1)
	}
	if err := hub.InitAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init relay: %v\n", err)
		os.Exit(1)
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start relay: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.Info().Str("signal", s.String()).Msg("shutting down")

	if err := hub.StopAll(); err != nil {
		log.Error().Err(err).Msg("shutdown")
		os.Exit(1)
	}
}

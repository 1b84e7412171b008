package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"Freehand/internal/config"
	"Freehand/internal/logging"
	fnet "Freehand/internal/net"
	"Freehand/internal/ui"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		serve      = flag.Bool("serve", false, "run the websocket event server instead of the desktop app")
		listen     = flag.String("listen", "", "server listen address (overrides [server] listen)")
		mdns       = flag.Bool("mdns", false, "advertise the server over mDNS")
		discover   = flag.Duration("discover", 0, "browse for servers on the LAN for this long and exit")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error (overrides [log] level)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = c
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *mdns {
		cfg.Server.MDNS = true
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	switch {
	case *discover > 0:
		err = fnet.Browse(*discover, func(addr string) { fmt.Printf("ws://%s/ws\n", addr) })
	case *serve:
		err = runServer(cfg, *configPath, log)
	default:
		ui.RunApp(cfg, *configPath, log)
	}
	if err != nil {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func runServer(cfg config.Config, configPath string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := fnet.NewServer(cfg, log)
	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	log.Info("input clients can connect", "url", "ws://"+net.JoinHostPort(fnet.OutgoingIP(), strconv.Itoa(port))+"/ws")

	if cfg.Server.MDNS {
		adv, err := fnet.Advertise(port)
		if err != nil {
			log.Warn("mdns advertise failed", "err", err)
		} else {
			defer adv.Shutdown()
		}
	}

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, log, func(c config.Config) { srv.Reconfigure(c.Engine) })
			if err != nil {
				log.Warn("config watch stopped", "err", err)
			}
		}()
	}

	if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

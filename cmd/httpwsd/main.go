// Command httpwsd serves the from-scratch HTTP/1.1 + WebSocket endpoint of
// spec.md on a single TCP listener.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/httpwsd/internal/config"
	"github.com/yourusername/httpwsd/internal/handler"
	"github.com/yourusername/httpwsd/internal/logging"
	"github.com/yourusername/httpwsd/internal/metrics"
	"github.com/yourusername/httpwsd/internal/session"
	"github.com/yourusername/httpwsd/internal/wssession"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "httpwsd",
		Short: "A from-scratch HTTP/1.1 and WebSocket server on one TCP endpoint",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(serveCmd)
	return root
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	reg := metrics.New()
	router := handler.NewRouter(cfg.StaticRoot, reg)

	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.BindAddress, err)
	}
	log.Infow("listening", "addr", ln.Addr().String())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	upgrade := func(ctx context.Context, conn net.Conn, log *logging.Logger, reg *metrics.Registry) {
		wssession.Run(ctx, conn, handler.EchoOnMessage, wssession.Options{
			HeartbeatInterval: cfg.WSHeartbeatInterval(),
			PongTimeout:       cfg.WSPongTimeout(),
		}, log, reg)
	}

	opts := session.Options{
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		IdleTimeout:    cfg.KeepAliveTimeout(),
		MaxRequests:    cfg.KeepAliveMaxRequests,
	}

	var wg sync.WaitGroup
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				log.Infow("shutdown complete")
				return nil
			default:
				log.Warnw("accept error", "err", err)
				continue
			}
		}

		reg.ConnectionsTotal.Inc()
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := session.New(conn, opts, router, upgrade, log, reg)
			sess.Run(ctx)
		}()
	}
}

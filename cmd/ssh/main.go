package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/cloth/internal/config"
	clothlog "github.com/tomz197/cloth/internal/logging"
	loopcfg "github.com/tomz197/cloth/internal/loop/config"
	"github.com/tomz197/cloth/internal/loop/server"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	logger := clothlog.New(os.Stderr, "ssh")
	if err := config.Load(".env"); err != nil {
		logger.Fatal("failed to load env file", "err", err)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	stepCfg, err := config.StepFromEnv()
	if err != nil {
		logger.Fatal("invalid step config", "err", err)
	}
	opts := server.DefaultOptions()
	opts.Step = stepCfg
	opts.Logger = logger.WithPrefix("sim")

	// Shared simulation, observed by every SSH session
	simServer, err := server.NewServer(opts)
	if err != nil {
		logger.Fatal("failed to create simulation", "err", err)
	}
	ctx, cancelServer := context.WithCancel(context.Background())
	go simServer.Run(ctx)

	sshOpts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			telemetryMiddleware(simServer, logger),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	}
	if hostKeyPath != "" {
		sshOpts = append(sshOpts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(sshOpts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Tell sessions to close, stop accepting, then stop the simulation
	simServer.Shutdown(15 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = s.Shutdown(shutdownCtx)
	cancelServer()
	if err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// telemetryMiddleware streams a line of simulation telemetry to the
// session until the client disconnects or the server shuts down.
func telemetryMiddleware(sim server.SimServer, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			sub := sim.Subscribe(sess.User())
			defer sim.Unsubscribe(sub.ID)

			top := sim.Topology()
			fmt.Fprintf(sess, "cloth %dx%d particles, %d triangles\r\n", top.Width, top.Height, len(top.Indices)/3)

			ticker := time.NewTicker(time.Second / loopcfg.TelemetryFrequency)
			defer ticker.Stop()

			var latest *server.Snapshot
			for {
				select {
				case <-sess.Context().Done():
					logger.Debug("session closed", "user", sess.User())
					next(sess)
					return
				case ev, ok := <-sub.Events:
					if !ok {
						next(sess)
						return
					}
					if ev.Type == server.EventServerShutdown {
						fmt.Fprint(sess, "server shutting down\r\n")
						next(sess)
						return
					}
					latest = ev.Snapshot
				case <-ticker.C:
					if latest == nil {
						continue
					}
					if _, err := fmt.Fprint(sess, telemetryLine(latest)); err != nil {
						next(sess)
						return
					}
				}
			}
		}
	}
}

func telemetryLine(s *server.Snapshot) string {
	wind := "off"
	if s.WindEnabled {
		wind = "on"
	}
	return fmt.Sprintf("tick=%d stretch=%.4f mean=%.5f lowest=%.3f ball=(%.2f,%.2f,%.2f) hits=%d wind=%s\r\n",
		s.Tick, s.Stats.MaxStretch, s.Stats.MeanStretch, s.Stats.LowestY,
		s.Ball.Center[0], s.Ball.Center[1], s.Ball.Center[2], s.Collisions, wind)
}

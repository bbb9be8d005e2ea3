package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/cloth/internal/config"
	"github.com/tomz197/cloth/internal/logging"
	"github.com/tomz197/cloth/internal/loop/server"
	"github.com/tomz197/cloth/internal/protocol"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	// Frames are public telemetry; any origin may read them.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	logger := logging.New(os.Stderr, "web")
	if err := config.Load(".env"); err != nil {
		logger.Fatal("failed to load env file", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)

	stepCfg, err := config.StepFromEnv()
	if err != nil {
		logger.Fatal("invalid step config", "err", err)
	}
	opts := server.DefaultOptions()
	opts.Step = stepCfg
	opts.Logger = logger.WithPrefix("sim")

	sim, err := server.NewServer(opts)
	if err != nil {
		logger.Fatal("failed to create simulation", "err", err)
	}
	ctx, cancelSim := context.WithCancel(context.Background())
	go sim.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/topology", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sim.Topology().Message()); err != nil {
			logger.Warn("write topology", "err", err)
		}
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveFrames(w, r, sim, logger)
	})

	addr := net.JoinHostPort(host, port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "addr", addr, "ws", "/ws", "topology", "/topology")
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")
	sim.Shutdown(5 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	cancelSim()
	if err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// serveFrames upgrades the connection and streams the topology followed by
// one frame message per broadcast tick.
func serveFrames(w http.ResponseWriter, r *http.Request, sim server.SimServer, logger *log.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("upgrade", "err", err)
		return
	}
	defer conn.Close()

	sub := sim.Subscribe(r.RemoteAddr)
	defer sim.Unsubscribe(sub.ID)
	logger.Info("renderer connected", "remote", r.RemoteAddr, "id", sub.ID)

	// Reader goroutine only services control frames and detects close
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := send(conn, protocol.MsgTopology, sim.Topology().Message()); err != nil {
		logger.Warn("write topology", "remote", r.RemoteAddr, "err", err)
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			logger.Info("renderer disconnected", "remote", r.RemoteAddr)
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			if ev.Type == server.EventServerShutdown {
				_ = send(conn, protocol.MsgShutdown, protocol.Shutdown{Reason: "server shutting down"})
				return
			}
			if err := send(conn, protocol.MsgFrame, ev.Snapshot.Frame()); err != nil {
				logger.Warn("write frame", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}
}

func send(conn *websocket.Conn, t string, payload any) error {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}

package server

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/cloth"
	"github.com/tomz197/cloth/internal/loop/config"
	"github.com/tomz197/cloth/internal/object"
)

// SimServer is the interface frontends use to talk to the simulation.
// Decouples the SSH and websocket frontends from the concrete Server.
type SimServer interface {
	Subscribe(name string) *Subscriber
	Unsubscribe(id int)
	SendControl(c Control)
	Snapshot() *Snapshot
	Topology() Topology
}

// Server owns one cloth simulation and advances it on a fixed tick.
// Only the Run goroutine mutates the simulation; everyone else reads
// immutable snapshots.
type Server struct {
	sim     *cloth.Simulation
	ball    *object.Ball
	sweeper *object.Sweeper
	logger  *log.Logger

	snapshot    atomic.Pointer[Snapshot]
	subscribers map[int]*Subscriber
	nextID      int
	controlCh   chan Control
	registerCh  chan *Subscriber
	mu          sync.RWMutex

	direction      mgl64.Vec3 // Held ball direction from the last control
	tickTime       time.Duration
	broadcastEvery int
	topology       Topology
}

// Compile-time check that Server implements SimServer.
var _ SimServer = (*Server)(nil)

// Options configures a Server. Zero fields fall back to DefaultOptions.
type Options struct {
	Step           cloth.StepConfig
	ParticlesX     int
	ParticlesY     int
	Sweep          bool // Move the ball automatically while no direction is held
	Wind           bool // Start with wind enabled
	TickTime       time.Duration
	BroadcastEvery int
	Logger         *log.Logger
}

// DefaultOptions returns the configuration used by the commands.
func DefaultOptions() Options {
	return Options{
		Step: cloth.StepConfig{
			Damping:    config.DefaultDamping,
			TimeStep2:  config.DefaultTimeStep2,
			Iterations: config.DefaultIterations,
			Workers:    config.DefaultWorkerCount,
		},
		ParticlesX:     config.ParticlesPerRow,
		ParticlesY:     config.ParticleRows,
		Sweep:          true,
		TickTime:       config.ServerTickTime,
		BroadcastEvery: config.BroadcastEvery,
	}
}

// Subscriber receives events from the server. Events is closed when the
// subscriber is unregistered.
type Subscriber struct {
	ID     int
	Name   string
	Events chan Event
}

// EventType identifies the type of subscriber event.
type EventType int

const (
	EventFrame EventType = iota
	EventServerShutdown
)

// Event is sent from the server to subscribers.
type Event struct {
	Type     EventType
	Snapshot *Snapshot // Set for EventFrame
}

// WindCommand changes the wind state.
type WindCommand int

const (
	WindUnchanged WindCommand = iota
	WindOn
	WindOff
	WindToggle
)

// Control steers the simulation. Direction is held until the next control
// arrives, so a control that only changes Wind also releases the ball
// (Direction is then zero). Frontends that toggle wind while steering must
// resend the held direction.
type Control struct {
	Direction mgl64.Vec3
	Wind      WindCommand
}

// NewServer creates a server with a freshly built cloth and ball.
func NewServer(opts Options) (*Server, error) {
	def := DefaultOptions()
	if opts.ParticlesX == 0 {
		opts.ParticlesX = def.ParticlesX
	}
	if opts.ParticlesY == 0 {
		opts.ParticlesY = def.ParticlesY
	}
	if opts.Step == (cloth.StepConfig{}) {
		opts.Step = def.Step
	}
	if opts.TickTime <= 0 {
		opts.TickTime = def.TickTime
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = def.BroadcastEvery
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if err := opts.Step.Validate(); err != nil {
		return nil, err
	}

	mesh, err := cloth.NewMesh(
		mgl64.Vec3{config.ClothOriginX, config.ClothOriginY, config.ClothOriginZ},
		config.ClothWidth, config.ClothHeight,
		opts.ParticlesX, opts.ParticlesY,
	)
	if err != nil {
		return nil, fmt.Errorf("build cloth: %w", err)
	}

	ball := object.NewBall(mgl64.Vec3{config.BallX, config.BallY, config.BallZ}, config.BallRadius, config.BallSpeed)

	s := &Server{
		sim: &cloth.Simulation{
			Mesh:        mesh,
			Ball:        ball.Sphere,
			Config:      opts.Step,
			Gravity:     mgl64.Vec3{0, config.GravityY, 0},
			Wind:        mgl64.Vec3{0, 0, config.WindZ},
			WindEnabled: opts.Wind,
		},
		ball:           ball,
		logger:         opts.Logger,
		subscribers:    make(map[int]*Subscriber),
		nextID:         1,
		controlCh:      make(chan Control, config.ControlBuffer),
		registerCh:     make(chan *Subscriber, 16),
		tickTime:       opts.TickTime,
		broadcastEvery: opts.BroadcastEvery,
		topology: Topology{
			Width:   mesh.Width(),
			Height:  mesh.Height(),
			Indices: mesh.Indices(),
		},
	}
	if opts.Sweep {
		s.sweeper = &object.Sweeper{
			Axis:        object.Back,
			Amplitude:   config.SweepAmplitude,
			PeriodTicks: config.SweepPeriodTicks,
		}
	}

	s.publish(cloth.StepResult{})
	return s, nil
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("simulation started",
		"particles", s.sim.Mesh.Len(),
		"constraints", len(s.sim.Mesh.Constraints()),
		"iterations", s.sim.Config.Iterations,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", "tick", s.sim.Tick)
			return
		default:
		}

		frameStart := time.Now()
		s.Advance()

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < s.tickTime {
			time.Sleep(s.tickTime - elapsed)
		} else {
			s.logger.Debug("tick overran", "tick", s.sim.Tick, "elapsed", elapsed)
		}
	}
}

// Advance runs exactly one tick. Run calls it in a loop; tests and batch
// drivers may call it directly but never concurrently with Run.
func (s *Server) Advance() *Snapshot {
	s.processRegistrations()
	s.collectControls()

	switch {
	case s.direction != (mgl64.Vec3{}):
		s.ball.Move(s.direction)
	case s.sweeper != nil:
		s.ball.Move(s.sweeper.Next(s.ball.Speed))
	}
	s.sim.Ball = s.ball.Sphere

	res := s.sim.Step()
	snap := s.publish(res)

	if s.sim.Tick%s.broadcastEvery == 0 {
		s.broadcast(Event{Type: EventFrame, Snapshot: snap})
	}
	return snap
}

// Shutdown gracefully shuts down the server by notifying all subscribers
// and waiting for them to unsubscribe (up to the given timeout).
// The caller should cancel the server context once its frontends have
// stopped.
func (s *Server) Shutdown(timeout time.Duration) {
	s.notifyShutdown()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.subscribers)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// Subscribe registers a new subscriber. It starts receiving events on the
// next tick.
func (s *Server) Subscribe(name string) *Subscriber {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	sub := &Subscriber{
		ID:     id,
		Name:   name,
		Events: make(chan Event, config.SubscriberBuffer),
	}
	s.registerCh <- sub
	return sub
}

// Unsubscribe removes a subscriber and closes its event channel. It does
// not wait for a tick, so it also works after Run has returned.
func (s *Server) Unsubscribe(id int) {
	s.mu.Lock()
	sub, ok := s.subscribers[id]
	if ok {
		close(sub.Events)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
	if ok {
		s.logger.Debug("subscriber left", "id", id)
	}
}

// SendControl queues a control for the next tick.
func (s *Server) SendControl(c Control) {
	select {
	case s.controlCh <- c:
	default:
		// Control channel full, drop control
	}
}

// Snapshot returns the most recently published snapshot.
func (s *Server) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Topology returns the static triangle list of the cloth.
func (s *Server) Topology() Topology {
	return s.topology
}

// Subscribers returns the number of registered subscribers.
func (s *Server) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// processRegistrations adds pending subscribers.
func (s *Server) processRegistrations() {
	for {
		select {
		case sub := <-s.registerCh:
			s.mu.Lock()
			s.subscribers[sub.ID] = sub
			s.mu.Unlock()
			s.logger.Debug("subscriber joined", "id", sub.ID, "name", sub.Name)
		default:
			return
		}
	}
}

// collectControls applies all pending controls in arrival order.
func (s *Server) collectControls() {
	for {
		select {
		case c := <-s.controlCh:
			s.direction = c.Direction
			switch c.Wind {
			case WindOn:
				s.sim.WindEnabled = true
			case WindOff:
				s.sim.WindEnabled = false
			case WindToggle:
				s.sim.WindEnabled = !s.sim.WindEnabled
			}
		default:
			return
		}
	}
}

// broadcast delivers ev to every subscriber without blocking the tick.
// Slow subscribers miss frames.
func (s *Server) broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		select {
		case sub.Events <- ev:
		default:
		}
	}
}

// notifyShutdown delivers EventServerShutdown to every subscriber. A full
// buffer loses its oldest event instead of the shutdown notice.
func (s *Server) notifyShutdown() {
	ev := Event{Type: EventServerShutdown}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		for sent := false; !sent; {
			select {
			case sub.Events <- ev:
				sent = true
			default:
				select {
				case <-sub.Events:
				default:
				}
			}
		}
	}
}

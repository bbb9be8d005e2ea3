package server

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/cloth"
	"github.com/tomz197/cloth/internal/protocol"
)

// Snapshot is an immutable view of one completed tick.
type Snapshot struct {
	Tick        int
	Positions   []mgl64.Vec3 // Row-major particle positions
	Ball        cloth.Sphere
	WindEnabled bool
	Stats       cloth.Stats
	Collisions  int
}

// Topology is the static grid shape shared by every snapshot.
type Topology struct {
	Width   int
	Height  int
	Indices []uint32
}

// publish builds and stores a snapshot of the current simulation state.
// Positions are copied into a fresh slice since readers hold snapshots
// across ticks.
func (s *Server) publish(res cloth.StepResult) *Snapshot {
	snap := &Snapshot{
		Tick:        s.sim.Tick,
		Positions:   s.sim.Mesh.Positions(make([]mgl64.Vec3, 0, s.sim.Mesh.Len())),
		Ball:        s.sim.Ball,
		WindEnabled: s.sim.WindEnabled,
		Stats:       s.sim.Mesh.Measure(),
		Collisions:  res.Collisions,
	}
	s.snapshot.Store(snap)
	return snap
}

// Frame converts the snapshot into its wire form.
func (snap *Snapshot) Frame() protocol.Frame {
	positions := make([][3]float64, len(snap.Positions))
	for i, p := range snap.Positions {
		positions[i] = p
	}
	return protocol.Frame{
		Tick:      snap.Tick,
		Positions: positions,
		Ball: protocol.Ball{
			Center: snap.Ball.Center,
			Radius: snap.Ball.Radius,
		},
		Wind: snap.WindEnabled,
		Stats: protocol.Stats{
			MaxStretch:  snap.Stats.MaxStretch,
			MeanStretch: snap.Stats.MeanStretch,
			LowestY:     snap.Stats.LowestY,
			Collisions:  snap.Collisions,
		},
	}
}

// Message converts the topology into its wire form.
func (t Topology) Message() protocol.Topology {
	return protocol.Topology{
		Width:   t.Width,
		Height:  t.Height,
		Indices: t.Indices,
	}
}

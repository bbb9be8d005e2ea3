// Package protocol defines the JSON messages streamed to external renderers.
package protocol

import "encoding/json"

// Message types carried in Envelope.T.
const (
	MsgTopology = "topology" // Topology, sent first on every stream
	MsgFrame    = "frame"    // Frame, one per broadcast tick
	MsgShutdown = "shutdown" // Shutdown, last message before close
)

// Envelope wraps every message as {"t": type, "p": payload}.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// Topology is the static triangle list of the cloth grid, sent once.
type Topology struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Indices []uint32 `json:"indices"`
}

// Frame is one published simulation step.
type Frame struct {
	Tick      int          `json:"tick"`
	Positions [][3]float64 `json:"positions"` // Row-major
	Ball      Ball         `json:"ball"`
	Wind      bool         `json:"wind"`
	Stats     Stats        `json:"stats"`
}

// Ball is the sphere collider at the time of a frame.
type Ball struct {
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
}

// Stats summarizes constraint stretch and collisions for a frame.
type Stats struct {
	MaxStretch  float64 `json:"maxStretch"`
	MeanStretch float64 `json:"meanStretch"`
	LowestY     float64 `json:"lowestY"`
	Collisions  int     `json:"collisions"`
}

// Shutdown tells the renderer the server is going away.
type Shutdown struct {
	Reason string `json:"reason,omitempty"`
}

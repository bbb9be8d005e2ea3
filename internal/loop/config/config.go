// Package config centralizes all tunable simulation parameters.
package config

import "time"

// Cloth sheet - size in world units and particle resolution.
// The sheet hangs from its two top corners at ClothOrigin.
const (
	ClothWidth         = 15.0
	ClothHeight        = 10.0
	ParticlesPerRow    = 75
	ParticleRows       = 50
	ClothOriginX       = -7.5
	ClothOriginY       = 5.0
	ClothOriginZ       = 0.0
	DefaultIterations  = 30
	DefaultDamping     = 0.01
	DefaultTimeStep2   = 0.25
	DefaultWorkerCount = 1
)

// External forces, added once per step.
const (
	GravityY = -0.09
	WindZ    = -0.01 // Applied only while wind is enabled
)

// Ball collider
const (
	BallX      = 0.0
	BallY      = 0.0
	BallZ      = 1.0
	BallRadius = 2.0
	BallSpeed  = 0.25 // World units per tick along the control direction
)

// Automatic sweep used when no client steers the ball.
const (
	SweepAmplitude   = 4.0 // Distance from the start point along z
	SweepPeriodTicks = 480 // Ticks for one full back-and-forth
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)

// Telemetry and frame fan-out
const (
	BroadcastEvery     = 3  // Ticks between subscriber events
	SubscriberBuffer   = 16 // Buffered events per subscriber before drops
	ControlBuffer      = 64
	TelemetryFrequency = 4 // Telemetry lines per second on SSH sessions
)

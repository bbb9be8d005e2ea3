package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tomz197/cloth/internal/config"
	"github.com/tomz197/cloth/internal/logging"
	loopcfg "github.com/tomz197/cloth/internal/loop/config"
	"github.com/tomz197/cloth/internal/loop/server"
	"github.com/tomz197/cloth/internal/protocol"
)

// dump is the file written by -out.
type dump struct {
	Topology protocol.Topology `json:"topology"`
	Frame    protocol.Frame    `json:"frame"`
}

func main() {
	logger := logging.New(os.Stderr, "cloth")

	envFile := flag.String("env", ".env", "Optional .env file with CLOTH_* settings")
	steps := flag.Int("steps", 600, "Number of fixed steps to run")
	width := flag.Int("width", loopcfg.ParticlesPerRow, "Particles per row")
	height := flag.Int("height", loopcfg.ParticleRows, "Particle rows")
	wind := flag.Bool("wind", false, "Enable wind from the start")
	sweep := flag.Bool("sweep", true, "Sweep the ball back and forth")
	every := flag.Int("report", 60, "Log telemetry every N steps (0 disables)")
	out := flag.String("out", "", "Write final positions and topology as JSON to this path")
	flag.Parse()

	if err := config.Load(*envFile); err != nil {
		logger.Fatal("failed to load env file", "err", err)
	}
	stepCfg, err := config.StepFromEnv()
	if err != nil {
		logger.Fatal("invalid step config", "err", err)
	}

	srv, err := server.NewServer(server.Options{
		Step:       stepCfg,
		ParticlesX: *width,
		ParticlesY: *height,
		Sweep:      *sweep,
		Wind:       *wind,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to build simulation", "err", err)
	}

	logger.Info("running",
		"steps", *steps,
		"particles", *width * *height,
		"iterations", stepCfg.Iterations,
		"damping", stepCfg.Damping,
		"timestep2", stepCfg.TimeStep2,
		"workers", stepCfg.Workers,
	)

	start := time.Now()
	snap := srv.Snapshot()
	for i := 0; i < *steps; i++ {
		snap = srv.Advance()
		if !snap.Stats.Finite {
			logger.Error("simulation diverged", "tick", snap.Tick)
			os.Exit(1)
		}
		if *every > 0 && snap.Tick%*every == 0 {
			logger.Info("step",
				"tick", snap.Tick,
				"maxStretch", fmt.Sprintf("%.4f", snap.Stats.MaxStretch),
				"meanStretch", fmt.Sprintf("%.5f", snap.Stats.MeanStretch),
				"lowestY", fmt.Sprintf("%.3f", snap.Stats.LowestY),
				"collisions", snap.Collisions,
			)
		}
	}
	elapsed := time.Since(start)
	logger.Info("done",
		"tick", snap.Tick,
		"elapsed", elapsed.Round(time.Millisecond),
		"perStep", (elapsed / time.Duration(max(*steps, 1))).Round(time.Microsecond),
	)

	if *out != "" {
		if err := writeDump(*out, srv.Topology().Message(), snap.Frame()); err != nil {
			logger.Fatal("failed to write output", "path", *out, "err", err)
		}
		logger.Info("wrote positions", "path", *out)
	}
}

func writeDump(path string, top protocol.Topology, frame protocol.Frame) error {
	data, err := json.MarshalIndent(dump{Topology: top, Frame: frame}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

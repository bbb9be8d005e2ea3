// Package config provides shared configuration utilities.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/tomz197/cloth/internal/cloth"
	loopcfg "github.com/tomz197/cloth/internal/loop/config"
)

// Load reads KEY=VALUE pairs from the given .env files into the process
// environment. Variables already set win. Missing files are not an error.
func Load(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt parses the variable as an int, returning fallback when unset.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// GetEnvFloat parses the variable as a float64, returning fallback when unset.
func GetEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// GetEnvBool parses the variable with strconv.ParseBool, returning fallback when unset.
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// StepFromEnv builds a validated step config from CLOTH_DAMPING,
// CLOTH_TIMESTEP2, CLOTH_ITERATIONS and CLOTH_WORKERS.
func StepFromEnv() (cloth.StepConfig, error) {
	cfg := cloth.StepConfig{}
	var errs []error
	var err error

	cfg.Damping, err = GetEnvFloat("CLOTH_DAMPING", loopcfg.DefaultDamping)
	errs = append(errs, err)
	cfg.TimeStep2, err = GetEnvFloat("CLOTH_TIMESTEP2", loopcfg.DefaultTimeStep2)
	errs = append(errs, err)
	cfg.Iterations, err = GetEnvInt("CLOTH_ITERATIONS", loopcfg.DefaultIterations)
	errs = append(errs, err)
	cfg.Workers, err = GetEnvInt("CLOTH_WORKERS", loopcfg.DefaultWorkerCount)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return cloth.StepConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return cloth.StepConfig{}, err
	}
	return cfg, nil
}

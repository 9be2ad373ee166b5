package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPaths []string // .hcl and .lisp files or directories

	// Frames limits the number of frames rendered. 0 renders until the
	// context is cancelled.
	Frames int
	// FPS paces the frame loop. 0 renders as fast as possible.
	FPS float64

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	RemoteURL       string
	RemoteNamespace string
	OTLPEndpoint    string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ProjectPaths) == 0 {
		return nil, errors.New("at least one project path is required")
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.FPS < 0 {
		return nil, fmt.Errorf("fps must not be negative, got %g", cfg.FPS)
	}
	if cfg.Frames == 0 && cfg.FPS == 0 {
		return nil, errors.New("an unlimited frame count needs an fps limit")
	}
	return &cfg, nil
}

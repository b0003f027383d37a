package sandbox

import (
	"slices"
	"time"
)

// Policy defines resource limits for sandbox execution.
type Policy struct {
	MaxMemory     string        `mapstructure:"max_memory"`     // Docker memory limit (e.g. "256m")
	MaxTimeout    time.Duration `mapstructure:"max_timeout"`    // Maximum execution time
	MaxOutput     int           `mapstructure:"max_output"`     // Bytes of console output kept per run
	MaxConcurrent int64         `mapstructure:"max_concurrent"` // Simultaneous evaluations
	Network       bool          `mapstructure:"network"`        // Whether network access is allowed
	Image         string        `mapstructure:"image"`          // Image used for script runs
	Images        []string      `mapstructure:"images"`         // Allowed Docker images
}

// DefaultPolicy returns safe defaults for code execution.
func DefaultPolicy() Policy {
	return Policy{
		MaxMemory:     "128m",
		MaxTimeout:    5 * time.Second,
		MaxOutput:     64 << 10,
		MaxConcurrent: 4,
		Network:       false,
		Image:         "node:22-slim",
		Images: []string{
			"node:22-slim",
			"node:20-slim",
		},
	}
}

// IsImageAllowed checks if an image is on the allowlist.
func (p Policy) IsImageAllowed(image string) bool {
	return slices.Contains(p.Images, image)
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxMemory == "" {
		p.MaxMemory = d.MaxMemory
	}
	if p.MaxTimeout <= 0 {
		p.MaxTimeout = d.MaxTimeout
	}
	if p.MaxOutput <= 0 {
		p.MaxOutput = d.MaxOutput
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = d.MaxConcurrent
	}
	if p.Image == "" {
		p.Image = d.Image
	}
	if len(p.Images) == 0 {
		p.Images = d.Images
	}
	return p
}

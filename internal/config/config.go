// Package config loads the two configuration layers: service settings (file +
// environment via koanf) and per-project role enablement read from a bounded
// section of the project's instructions file.
package config

import (
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Service holds deployment-level settings. Values layer as defaults, then the
// optional config file, then ROLEFLOW_* environment variables.
type Service struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Router struct {
		// Threshold is the activation ratio: a role activates when its score
		// reaches threshold x the maximum score for the task.
		Threshold float64 `koanf:"threshold"`
	} `koanf:"router"`

	Pipeline struct {
		LoopBackBudget     int `koanf:"loopback_budget"`
		StepTimeoutSeconds int `koanf:"step_timeout_seconds"`
	} `koanf:"pipeline"`

	Steps struct {
		// Endpoints maps role id to a step-producer base URL. Roles without
		// an endpoint use the built-in producer.
		Endpoints map[string]string `koanf:"endpoints"`
	} `koanf:"steps"`

	Project struct {
		// File is the instructions file scanned for the bounded role section.
		File string `koanf:"file"`
	} `koanf:"project"`
}

// LoadService reads service configuration. path may be empty, and a missing
// file is not an error: defaults plus environment variables apply.
func LoadService(path string) (*Service, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("router.threshold", 0.7)
	k.Set("pipeline.loopback_budget", 3)
	k.Set("pipeline.step_timeout_seconds", 120)
	k.Set("project.file", "AGENTS.md")

	if path != "" {
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, err
		}
	}

	// ROLEFLOW_ROUTER_THRESHOLD -> router.threshold
	if err := k.Load(env.Provider("ROLEFLOW_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "ROLEFLOW_")), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Service
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

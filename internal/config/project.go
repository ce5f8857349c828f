package config

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/roleflow/internal/role"
)

// Markers bounding the roleflow section inside a project instructions file.
const (
	SectionBegin = "<!-- roleflow:begin -->"
	SectionEnd   = "<!-- roleflow:end -->"
)

// RoleSetting is the per-role entry of the project section.
type RoleSetting struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`

	// ExtraKeywords extend the role's trigger vocabulary for this project.
	ExtraKeywords []string `yaml:"extra_keywords"`
}

// ProjectConfig is the per-project role configuration. The zero value means
// full defaults: all roles enabled, no extra keywords.
type ProjectConfig struct {
	Roles map[string]RoleSetting `yaml:"roles"`
}

// Disabled returns the set of roles the project turned off.
func (pc *ProjectConfig) Disabled() map[role.ID]bool {
	out := make(map[role.ID]bool)
	for id, rs := range pc.Roles {
		if rs.Enabled != nil && !*rs.Enabled {
			out[role.ID(id)] = true
		}
	}
	return out
}

// Extra returns project-supplied trigger keywords per role.
func (pc *ProjectConfig) Extra() map[role.ID][]string {
	out := make(map[role.ID][]string)
	for id, rs := range pc.Roles {
		if len(rs.ExtraKeywords) > 0 {
			out[role.ID(id)] = rs.ExtraKeywords
		}
	}
	return out
}

// LoadProject reads the bounded roleflow section from the instructions file
// at path. Absence of the file or the section means full defaults. Malformed
// content degrades to defaults with a warning; it never fails the request.
// Unknown role ids are dropped with a warning for forward compatibility.
func LoadProject(path string, reg *role.Registry, logger *zap.Logger) *ProjectConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("no project instructions file, using defaults",
			zap.String("path", path))
		return &ProjectConfig{}
	}

	body, ok := boundedSection(string(data))
	if !ok {
		logger.Debug("no roleflow section in project file, using defaults",
			zap.String("path", path))
		return &ProjectConfig{}
	}

	var pc ProjectConfig
	if err := yaml.Unmarshal([]byte(body), &pc); err != nil {
		logger.Warn("malformed roleflow section, using defaults",
			zap.String("path", path), zap.Error(err))
		return &ProjectConfig{}
	}

	for id := range pc.Roles {
		if !reg.Known(role.ID(id)) {
			logger.Warn("ignoring unknown role id in project config",
				zap.String("role", id))
			delete(pc.Roles, id)
		}
	}

	return &pc
}

// boundedSection extracts the text between the begin and end markers. A begin
// marker without a matching end marker yields no section.
func boundedSection(text string) (string, bool) {
	start := strings.Index(text, SectionBegin)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(SectionBegin):]
	end := strings.Index(rest, SectionEnd)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

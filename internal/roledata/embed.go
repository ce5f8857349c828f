// Package roledata embeds the built-in role playbooks for distribution
// inside the roleflow binary. A playbook is the working checklist the
// built-in step producer includes for a role when no external producer
// endpoint is configured.
package roledata

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed playbooks
var playbookFS embed.FS

// Playbook returns the embedded playbook for a role id.
func Playbook(role string) (string, bool) {
	data, err := playbookFS.ReadFile("playbooks/" + role + ".md")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Roles lists the role ids that ship with an embedded playbook, sorted.
func Roles() []string {
	entries, err := fs.ReadDir(playbookFS, "playbooks")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/roleflow/internal/config"
	"github.com/dusk-indust/roleflow/internal/role"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show the role table as configured for this project",
	Long: `Prints every role in pipeline order with its focus, owned conflict
dimensions, and fallback. Roles the project disabled are shown with the
role that absorbed their vocabulary and decision authority.`,
	RunE: runRoles,
}

func runRoles(cmd *cobra.Command, args []string) error {
	reg := role.MustBuiltin()
	pc := config.LoadProject(cfg.Project.File, reg, logger)
	view, err := reg.Activate(pc.Disabled(), pc.Extra())
	if err != nil {
		return err
	}

	disabled := pc.Disabled()
	for _, r := range reg.Roles() {
		if disabled[r.ID] {
			if absorber, ok := view.Resolve(r.ID); ok {
				fmt.Printf("%d. %-10s (disabled, absorbed by %s)\n", r.Position, r.ID, absorber.ID)
			}
			continue
		}
		impl := ""
		if r.Implementation {
			impl = "  [implementation]"
		}
		fmt.Printf("%d. %-10s %s%s\n", r.Position, r.ID, r.Focus, impl)

		ar, ok := view.Lookup(r.ID)
		if !ok {
			continue
		}
		if len(ar.Owns) > 0 {
			fmt.Printf("   owns: %s\n", strings.Join(ar.Owns, ", "))
		}
		if len(ar.Absorbed) > 0 {
			absorbed := make([]string, len(ar.Absorbed))
			for i, id := range ar.Absorbed {
				absorbed[i] = string(id)
			}
			fmt.Printf("   absorbed: %s\n", strings.Join(absorbed, ", "))
		}
		fmt.Printf("   fallback: %s\n", r.Fallback)
	}
	return nil
}

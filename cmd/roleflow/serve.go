package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/roleflow/internal/mcptools"
	"github.com/dusk-indust/roleflow/internal/role"
	"github.com/dusk-indust/roleflow/internal/rolestep"
)

var (
	stepRole   string
	stepListen string
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Run as an MCP server on stdio",
	Long: `Exposes route_task, run_task, and list_roles as MCP tools so a
coding-assistant client can drive roleflow without shelling out.
Blocks until stdin is closed or the process is interrupted.`,
	RunE: runServeMCP,
}

var serveStepCmd = &cobra.Command{
	Use:   "serve-step",
	Short: "Run a step producer for one role over HTTP",
	Long: `Serves the built-in step producer for a single role, with its role
card published at the well-known URI. Useful for exercising endpoint
discovery and distributed-pipeline wiring locally.`,
	RunE: runServeStep,
}

func init() {
	serveStepCmd.Flags().StringVar(&stepRole, "role", "", "role id this producer serves (required)")
	serveStepCmd.Flags().StringVar(&stepListen, "listen", "127.0.0.1:0", "address to listen on")
	_ = serveStepCmd.MarkFlagRequired("role")
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	server := mcptools.NewRoleFlowMCPServer(svc, role.MustBuiltin())
	return mcptools.RunRoleFlowMCPServerStdio(cmd.Context(), server)
}

func runServeStep(cmd *cobra.Command, args []string) error {
	reg := role.MustBuiltin()
	r, ok := reg.Lookup(role.ID(stepRole))
	if !ok {
		return fmt.Errorf("unknown role %q", stepRole)
	}

	server := rolestep.NewServer(rolestep.RoleCard{
		Name:        "roleflow-" + string(r.ID),
		Role:        string(r.ID),
		Version:     version,
		Description: r.Focus,
	}, rolestep.NewStaticProducer())

	if err := server.Start(cmd.Context(), stepListen); err != nil {
		return err
	}
	fmt.Printf("serving %s step producer on %s\n", r.ID, server.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	return server.Stop(cmd.Context())
}

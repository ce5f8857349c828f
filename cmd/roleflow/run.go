package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/roleflow/internal/export"
	"github.com/dusk-indust/roleflow/internal/orchestrator"
	"github.com/dusk-indust/roleflow/internal/role"
	"github.com/dusk-indust/roleflow/internal/rolestep"
)

var routeCmd = &cobra.Command{
	Use:   "route [task...]",
	Short: "Classify a task without executing it",
	Long: `Scores the task against every enabled role's trigger vocabulary and
prints the activation decisions. A task with no clear signal prints the
role focus areas instead of guessing; pass --accept-defaults to route
such tasks to the implementation role.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Route a task and execute the activated roles in pipeline order",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTask,
}

var outputFormat string

func init() {
	routeCmd.Flags().BoolVar(&acceptDefaults, "accept-defaults", false, "route unclassifiable tasks to the implementation role")
	runCmd.Flags().BoolVar(&acceptDefaults, "accept-defaults", false, "route unclassifiable tasks to the implementation role")
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", "markdown", "output format: markdown or json")
}

// newService wires the orchestrator service from config and flags.
func newService(ctx context.Context) (*orchestrator.Service, error) {
	producer, err := newProducer(ctx)
	if err != nil {
		return nil, err
	}
	svc := orchestrator.NewService(role.MustBuiltin(), cfg, producer, logger)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

// newProducer picks the step producer: configured endpoints first, merged
// with any probed ones; the built-in producer covers the rest.
func newProducer(ctx context.Context) (rolestep.Producer, error) {
	endpoints := make(map[string]string, len(cfg.Steps.Endpoints))
	for id, url := range cfg.Steps.Endpoints {
		endpoints[id] = url
	}
	if len(discover) > 0 {
		for id, url := range rolestep.Probe(ctx, discover, probeTimeout, logger) {
			if _, configured := endpoints[id]; !configured {
				endpoints[id] = url
			}
		}
	}
	if len(endpoints) == 0 {
		return rolestep.NewStaticProducer(), nil
	}
	return rolestep.NewHTTPClient(endpoints), nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	decisions, err := svc.Route(cmd.Context(), orchestrator.TaskRequest{
		Text:           strings.Join(args, " "),
		AcceptDefaults: acceptDefaults,
	})
	if err != nil {
		return printAmbiguity(err)
	}

	for _, d := range decisions {
		marker := "  "
		if d.Activated {
			marker = "->"
		}
		line := fmt.Sprintf("%s %-10s %5.1f", marker, d.Role, d.Score)
		if d.Activated {
			line += "  [" + string(d.Reason) + "]"
		}
		fmt.Println(line)
	}
	return nil
}

func runTask(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range svc.Progress() {
			fmt.Println(orchestrator.FormatProgress(ev))
		}
	}()

	doc, err := svc.Run(cmd.Context(), orchestrator.TaskRequest{
		Text:           strings.Join(args, " "),
		AcceptDefaults: acceptDefaults,
	})
	svc.Close()
	<-done
	if err != nil {
		return printAmbiguity(err)
	}

	return printDocument(doc)
}

// printAmbiguity renders an ambiguous-task error as a clarification prompt;
// any other error passes through.
func printAmbiguity(err error) error {
	var ambErr *orchestrator.ActivationAmbiguityError
	if !errors.As(err, &ambErr) {
		return err
	}
	fmt.Println("No role signals clearly for this task. Which of these is it about?")
	for _, focus := range ambErr.FocusAreas {
		fmt.Printf("  - %s\n", focus)
	}
	fmt.Println("Rephrase the task, prefix it with @<role>, or pass --accept-defaults.")
	return err
}

func printDocument(doc *orchestrator.FinalDocument) error {
	if outputFormat == "json" {
		out, err := export.RenderJSON(doc)
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	}
	fmt.Println()
	fmt.Print(export.RenderMarkdown(doc))
	return nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshharrison/timeloom/internal/graph"
	"github.com/joshharrison/timeloom/internal/order"
	"github.com/joshharrison/timeloom/internal/planner"
	"github.com/joshharrison/timeloom/internal/report"
	"github.com/joshharrison/timeloom/internal/request"
	"github.com/joshharrison/timeloom/internal/task"
	"github.com/joshharrison/timeloom/internal/ui"
)

var (
	flagJSON   bool
	flagOutput string
	flagFormat string
	flagQuiet  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "timeloom",
		Short: "Plan tasks into a recurring daily work window",
		Long: `Timeloom reads a planning request (tasks, dependencies, deadlines and
blocked calendar intervals), computes a deterministic dependency-aware
order, and carves each task's minutes out of the daily work window,
splitting tasks across days when they don't fit.`,
	}

	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(vizCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <request-file>",
		Short: "Compute the schedule and deadline warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.Load(args[0])
			if err != nil {
				return err
			}

			rpt, err := planner.Run(req)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(rpt)
			}

			if flagOutput != "" {
				data, err := json.MarshalIndent(rpt, "", "  ")
				if err != nil {
					return err
				}
				return os.WriteFile(flagOutput, data, 0644)
			}

			if !flagQuiet {
				ui.PrintLogo()
			}
			printReport(rpt)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOutput, "output", "", "Save the JSON report to a file")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress the logo")

	return cmd
}

func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <request-file>",
		Short: "Print the deterministic topological task order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := loadTaskSet(args[0])
			if err != nil {
				return err
			}

			ids, err := order.Sequence(ts)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(ids)
			}

			for i, id := range ids {
				t := ts.ByID[id]
				fmt.Printf("%2d. %s  %s  %s\n", i+1, ui.TaskPrefix(id), t.Title,
					ui.Dim(fmt.Sprintf("(due %s, prio %d)", task.FormatStamp(t.Deadline), t.Priority)))
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <request-file>",
		Short: "Validate task structure and acyclicity without scheduling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := loadTaskSet(args[0])
			if err != nil {
				var cycleErr *task.CycleError
				if errors.As(err, &cycleErr) {
					fmt.Printf("%s %s\n", ui.Red("✗"),
						ui.BoldRed("cycle: "+strings.Join(cycleErr.Path, " → ")))
				}
				return err
			}

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"tasks": ts.TaskCount(),
					"valid": true,
				})
			}

			fmt.Printf("%s %s tasks, dependencies form a DAG\n", ui.Green("✓"), ui.Bold(ts.TaskCount()))
			return nil
		},
	}
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz <request-file>",
		Short: "Print the dependency graph (ascii or dot)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.Load(args[0])
			if err != nil {
				return err
			}

			ts, err := graph.Validate(req.Tasks)
			if err != nil {
				return err
			}
			if err := ts.DetectCycle(); err != nil {
				return err
			}
			ids, err := order.Sequence(ts)
			if err != nil {
				return err
			}

			late := lateTasks(req, ts, ids)

			if flagFormat == "dot" {
				printDOT(ts, ids, late)
				return nil
			}

			printASCIIGraph(ts, ids, late)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

// loadTaskSet is shared logic for order and check: load, validate and
// cycle-check without scheduling anything.
func loadTaskSet(path string) (*graph.TaskSet, error) {
	req, err := request.Load(path)
	if err != nil {
		return nil, err
	}
	ts, err := graph.Validate(req.Tasks)
	if err != nil {
		return nil, err
	}
	if err := ts.DetectCycle(); err != nil {
		return nil, err
	}
	return ts, nil
}

// lateTasks runs placement and returns the ids whose final block ends
// after their deadline, for highlighting in graph output.
func lateTasks(req *task.Request, ts *graph.TaskSet, ids []string) map[string]bool {
	blocks := planner.Place(ids, ts, req.Window, req.Blocked, req.PlanningStart)

	lastEnd := make(map[string]task.ScheduledBlock)
	for _, b := range blocks {
		lastEnd[b.TaskID] = b
	}

	late := make(map[string]bool)
	for _, id := range ids {
		if b, ok := lastEnd[id]; ok && b.End.After(ts.ByID[id].Deadline) {
			late[id] = true
		}
	}
	return late
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printReport(rpt *report.Report) {
	fmt.Printf("🗓  %s\n", ui.BoldCyan("Timeloom Schedule"))
	fmt.Println(ui.Cyan("═══════════════════"))
	fmt.Println()
	fmt.Printf("Start:   %s\n", ui.Bold(rpt.PlanningStart))
	fmt.Printf("Window:  %s–%s daily\n", ui.Bold(rpt.WorkWindow.Start), ui.Bold(rpt.WorkWindow.End))
	fmt.Printf("Order:   %s\n", strings.Join(rpt.TaskOrder, " → "))
	fmt.Println()

	currentDay := ""
	for _, b := range rpt.Schedule {
		day := b.Start[:10]
		if day != currentDay {
			fmt.Printf("  %s\n", ui.BoldWhite(day))
			currentDay = day
		}
		fmt.Printf("    %s–%s  %s %s  %s\n",
			b.Start[11:16], b.End[11:16],
			ui.TaskPrefix(b.TaskID), b.Title,
			ui.Dim(fmt.Sprintf("[%d min]", b.Minutes)))
	}

	if len(rpt.Warnings) > 0 {
		fmt.Printf("\n%s\n", ui.BoldYellow("Warnings:"))
		for _, w := range rpt.Warnings {
			fmt.Printf("  %s %s\n", ui.Yellow("⚠"), w)
		}
	} else {
		fmt.Printf("\n%s\n", ui.Green("✓ All deadlines met."))
	}
}

func printASCIIGraph(ts *graph.TaskSet, ids []string, late map[string]bool) {
	fmt.Printf("🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Println(ui.Cyan("═══════════════════════"))
	fmt.Println()

	for _, id := range ids {
		t := ts.ByID[id]
		mark := " "
		if late[id] {
			mark = ui.BoldYellow("⚠")
		}
		fmt.Printf("  %s %s %s %s\n", mark, ui.TaskPrefix(id), t.Title,
			ui.Dim(fmt.Sprintf("(%d min)", t.DurationMin)))
		for _, dep := range t.DependsOn {
			fmt.Printf("      %s %s\n", ui.Dim("└──→ after"), ui.Magenta(dep))
		}
	}
}

func printDOT(ts *graph.TaskSet, ids []string, late map[string]bool) {
	fmt.Println("digraph timeloom {")
	fmt.Println("  rankdir=LR;")
	fmt.Println("  node [shape=box, style=rounded];")
	fmt.Println()

	for _, id := range ids {
		t := ts.ByID[id]
		label := fmt.Sprintf("%s\\n%s", id, t.Title)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if late[id] {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Printf("  %q [%s];\n", id, attrs)
	}

	fmt.Println()

	for _, id := range ids {
		for _, dep := range ts.ByID[id].DependsOn {
			fmt.Printf("  %q -> %q;\n", dep, id)
		}
	}

	fmt.Println("}")
}

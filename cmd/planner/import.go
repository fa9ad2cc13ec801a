package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/course-planner/cmd/api"
	planrepo "github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	planservice "github.com/FACorreiaa/course-planner/internal/domain/plan/service"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
)

var (
	importStudent  string
	importPlan     string
	importPlanName string
)

var importCmd = &cobra.Command{
	Use:   "import <transcript.pdf>",
	Short: "Upload a transcript and optionally merge it into a plan",
	Long: `import stores the transcript, extracts its courses and saves the parsed
list. With --plan (or --new-plan) the courses are then merged into that plan
and the reconciliation report is printed. An existing --plan must belong to
the student; this is checked before the transcript is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importStudent, "student", "", "student ID (required)")
	importCmd.Flags().StringVar(&importPlan, "plan", "", "plan ID to populate")
	importCmd.Flags().StringVar(&importPlanName, "new-plan", "", "create a plan with this name and populate it")
	_ = importCmd.MarkFlagRequired("student")
	importCmd.MarkFlagsMutuallyExclusive("plan", "new-plan")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	studentID, err := uuid.Parse(importStudent)
	if err != nil {
		return fmt.Errorf("invalid --student: %w", err)
	}
	var planID uuid.UUID
	if importPlan != "" {
		if planID, err = uuid.Parse(importPlan); err != nil {
			return fmt.Errorf("invalid --plan: %w", err)
		}
	}

	data, err := readDocument(args[0])
	if err != nil {
		return err
	}

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()
	stop := startMetrics(deps)
	defer stop()

	ctx := cmd.Context()
	name := filepath.Base(args[0])

	var (
		t      *repository.Transcript
		report *planservice.ReconcileReport
	)
	if planID != uuid.Nil {
		t, report, err = deps.TranscriptService.Import(ctx, studentID, planID, name, data)
	} else {
		t, err = deps.TranscriptService.Upload(ctx, studentID, name, data)
		if err == nil && importPlanName != "" {
			var plan *planrepo.Plan
			if plan, err = deps.PlanService.CreatePlan(ctx, studentID, importPlanName); err == nil {
				planID = plan.ID
				report, err = deps.TranscriptService.AutoPopulate(ctx, studentID, t.ID, planID)
			}
		}
	}
	if err != nil {
		return err
	}

	out := struct {
		TranscriptID uuid.UUID  `json:"transcript_id"`
		Strategy     string     `json:"strategy"`
		Courses      int        `json:"courses"`
		PlanID       *uuid.UUID `json:"plan_id,omitempty"`
		Report       any        `json:"report,omitempty"`
	}{
		TranscriptID: t.ID,
		Strategy:     string(t.Strategy),
		Courses:      len(t.Courses),
	}
	if report != nil {
		out.PlanID = &planID
		out.Report = report
	}

	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

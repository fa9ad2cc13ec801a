package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/course-planner/cmd/api"
)

var (
	listStudent string
	listPlan    string
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Inspect stored transcripts",
}

var transcriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a student's transcripts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTranscriptsList,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect course plans",
}

var planCoursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses in a plan by term and position",
	Args:  cobra.NoArgs,
	RunE:  runPlanCourses,
}

func init() {
	transcriptsListCmd.Flags().StringVar(&listStudent, "student", "", "student ID (required)")
	_ = transcriptsListCmd.MarkFlagRequired("student")
	transcriptsCmd.AddCommand(transcriptsListCmd)
	rootCmd.AddCommand(transcriptsCmd)

	planCoursesCmd.Flags().StringVar(&listStudent, "student", "", "student ID (required)")
	planCoursesCmd.Flags().StringVar(&listPlan, "plan", "", "plan ID (required)")
	_ = planCoursesCmd.MarkFlagRequired("student")
	_ = planCoursesCmd.MarkFlagRequired("plan")
	planCmd.AddCommand(planCoursesCmd)
	rootCmd.AddCommand(planCmd)
}

type transcriptSummary struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	Strategy  string    `json:"strategy"`
	Courses   int       `json:"courses"`
	CreatedAt time.Time `json:"created_at"`
}

func runTranscriptsList(cmd *cobra.Command, args []string) error {
	studentID, err := uuid.Parse(listStudent)
	if err != nil {
		return fmt.Errorf("invalid --student: %w", err)
	}

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	transcripts, err := deps.TranscriptService.List(cmd.Context(), studentID)
	if err != nil {
		return err
	}

	out := make([]transcriptSummary, 0, len(transcripts))
	for _, t := range transcripts {
		out = append(out, transcriptSummary{
			ID:        t.ID,
			FileName:  t.FileName,
			Strategy:  string(t.Strategy),
			Courses:   len(t.Courses),
			CreatedAt: t.CreatedAt,
		})
	}
	return printJSON(cmd.OutOrStdout(), out)
}

type planCourseView struct {
	CourseID uuid.UUID `json:"course_id"`
	Term     string    `json:"term"`
	Year     string    `json:"year"`
	Position int       `json:"position"`
}

func runPlanCourses(cmd *cobra.Command, args []string) error {
	studentID, err := uuid.Parse(listStudent)
	if err != nil {
		return fmt.Errorf("invalid --student: %w", err)
	}
	planID, err := uuid.Parse(listPlan)
	if err != nil {
		return fmt.Errorf("invalid --plan: %w", err)
	}

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	courses, err := deps.PlanService.ListCourses(cmd.Context(), studentID, planID)
	if err != nil {
		return err
	}

	out := make([]planCourseView, 0, len(courses))
	for _, pc := range courses {
		out = append(out, planCourseView{
			CourseID: pc.CourseID,
			Term:     pc.Term,
			Year:     pc.Year,
			Position: pc.Position,
		})
	}
	return printJSON(cmd.OutOrStdout(), out)
}

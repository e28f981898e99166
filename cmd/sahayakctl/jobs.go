package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sahayak-backend/internal/proactive"
	"sahayak-backend/internal/prompts"
	"sahayak-backend/internal/repository"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run one tick of a scheduled job",
}

var jobsSuggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "Refresh proactive suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, proactive.JobSuggestions)
	},
}

var jobsBriefingsCmd = &cobra.Command{
	Use:   "briefings",
	Short: "Write this week's briefings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, proactive.JobBriefings)
	},
}

func init() {
	for _, c := range []*cobra.Command{jobsSuggestionsCmd, jobsBriefingsCmd} {
		c.Flags().String("teacher", "", "Run for a single teacher instead of all")
		jobsCmd.AddCommand(c)
	}
	jobsBriefingsCmd.Flags().Int("week", 0, "ISO week to brief (defaults to the current week)")
}

func runJob(cmd *cobra.Command, job string) error {
	ctx := cmd.Context()
	teacherID, _ := cmd.Flags().GetString("teacher")

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	catalog := prompts.Default()
	suggestions := proactive.NewSuggestionEngine(
		repository.NewActivityRepo(e.pool), repository.NewSuggestionRepo(e.pool),
		e.gemini, catalog, nil, nil, e.log,
	)
	briefings := proactive.NewBriefingEngine(
		repository.NewSyllabusRepo(e.pool), repository.NewBriefingRepo(e.pool),
		e.gemini, catalog, nil, nil, e.log,
	)

	if teacherID != "" {
		switch job {
		case proactive.JobSuggestions:
			n, err := suggestions.RunForTeacher(ctx, teacherID)
			if err != nil {
				return err
			}
			e.log.Info("suggestions written", zap.String("teacher_id", teacherID), zap.Int("count", n))
		case proactive.JobBriefings:
			week, _ := cmd.Flags().GetInt("week")
			if week <= 0 {
				week = proactive.WeekNumber(time.Now().In(e.cfg.Location()))
			}
			b, err := briefings.RunForTeacher(ctx, teacherID, week)
			if err != nil {
				return err
			}
			if b == nil {
				e.log.Info("no syllabus topics for week", zap.String("teacher_id", teacherID), zap.Int("week", week))
				return nil
			}
			e.log.Info("briefing written", zap.String("teacher_id", teacherID), zap.Int("week", week))
		}
		return nil
	}

	scheduler, err := proactive.NewScheduler(proactive.SchedulerConfig{
		SuggestionSpec: e.cfg.SuggestionSchedule,
		BriefingSpec:   e.cfg.BriefingSchedule,
		Location:       e.cfg.Location(),
	}, suggestions, briefings, proactive.NewRedisLocker(e.redis), e.log)
	if err != nil {
		return err
	}

	stats, err := scheduler.Run(ctx, job)
	if err != nil {
		return fmt.Errorf("%s: %w", job, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d teachers, %d succeeded, %d skipped, %d failed\n",
		job, stats.Teachers, stats.Succeeded, stats.Skipped, stats.Failed)
	return nil
}

package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sahayak-backend/internal/repository"
	"sahayak-backend/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo data",
}

var seedAttendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Seed 30 days of attendance for a 30 student class",
	RunE: func(cmd *cobra.Command, args []string) error {
		teacherID, _ := cmd.Flags().GetString("teacher")

		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.close()

		records := seed.AttendanceRecords(teacherID, time.Now(), rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
		n, err := repository.NewAttendanceRepo(e.pool).CreateBatch(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("seed attendance: %w", err)
		}
		e.log.Info("attendance seeded", zap.String("teacher_id", teacherID), zap.Int64("rows", n))
		return nil
	},
}

func init() {
	seedAttendanceCmd.Flags().String("teacher", "", "Teacher ID to own the rows")
	seedAttendanceCmd.MarkFlagRequired("teacher")
	seedCmd.AddCommand(seedAttendanceCmd)
}

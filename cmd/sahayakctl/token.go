package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sahayak-backend/internal/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a teacher bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		teacherID, _ := cmd.Flags().GetString("teacher")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		token, err := middleware.NewJWTAuth(secret).GenerateToken(teacherID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("teacher", "", "Teacher ID to embed")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("teacher")
}

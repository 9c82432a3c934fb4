// Package main provides the entry point for the résumé analyzer HTTP API server
// and its command-line tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_analyzer",
	Short: "Résumé Analyzer HTTP API Server",
	Long:  "Résumé Analyzer scores a résumé against a job description with a generative model and returns a tailored summary, improved bullets and a learning roadmap.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

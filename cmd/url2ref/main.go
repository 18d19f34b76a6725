// Package main provides the url2ref CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// Service credentials (NCBI, OpenAI) commonly live in a .env file;
	// a missing file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "url2ref",
	Short: "Extract academic identifiers from bibliography URLs",
	Long: `url2ref extracts standardized academic identifiers (DOI, PMID, PMC)
from bibliography URLs gathered during literature research.

Extraction runs in phases: URL pattern matching first, then optional
page scraping and PDF text extraction for URLs the patterns missed.
Extracted identifiers carry a confidence score that external validation
services (NCBI, Crossref) can raise. All commands output JSON by
default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

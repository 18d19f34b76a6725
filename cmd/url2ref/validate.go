package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cellular-Semantics/url2ref/internal/config"
	"github.com/Cellular-Semantics/url2ref/internal/identifier"
	"github.com/Cellular-Semantics/url2ref/internal/pipeline"
	"github.com/Cellular-Semantics/url2ref/internal/validate"
)

// Validate command flags
var (
	validateNoNCBIFlag     bool
	validateNoCrossrefFlag bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateNoNCBIFlag, "no-ncbi", false, "Disable NCBI validation")
	validateCmd.Flags().BoolVar(&validateNoCrossrefFlag, "no-crossref", false, "Disable Crossref validation")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <type> <value>",
	Short: "Validate a single identifier against external services",
	Long: `Validate one academic identifier against the enabled external services
and report the composite confidence.

Type is one of: doi, pmid, pmc.

Examples:
  url2ref validate pmid 37674083
  url2ref validate doi 10.1126/science.abm5224 --no-ncbi
  url2ref validate pmc PMC11239014`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	t, err := identifier.ParseType(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var crossrefOpts []validate.CrossrefOption
	if cfg.CrossrefMailto != "" {
		crossrefOpts = append(crossrefOpts, validate.WithCrossrefMailto(cfg.CrossrefMailto))
	}

	p := pipeline.New(
		pipeline.WithNCBISource(validate.NewNCBI(validate.WithNCBIAPIKey(cfg.NCBIAPIKey))),
		pipeline.WithCrossrefSource(validate.NewCrossref(crossrefOpts...)),
	)

	opts := pipeline.Options{
		UseNCBIValidation:     !validateNoNCBIFlag,
		UseCrossrefValidation: !validateNoCrossrefFlag,
	}

	report, err := p.ValidateIdentifier(context.Background(), t, args[1], opts)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		status := "not confirmed"
		if report.Valid {
			status = "confirmed"
		}
		fmt.Printf("%s %s: %s (confidence %.2f)\n", report.IdentifierType, report.Value, status, report.Confidence)
		return nil
	}
	return outputJSON(report)
}

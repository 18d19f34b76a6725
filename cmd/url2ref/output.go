package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printResultHuman prints a batch extraction result in human-readable
// form.
func printResultHuman(result *identifier.ExtractionResult) {
	for _, id := range result.Identifiers {
		fmt.Printf("%s: %s (confidence %.2f)\n", strings.ToUpper(id.Type.String()), id.Value, id.Confidence)
		fmt.Printf("   from %s\n", id.SourceURL)
	}

	if len(result.FailedURLs) > 0 {
		fmt.Println("\nFailed URLs:")
		for _, u := range result.FailedURLs {
			fmt.Printf("   %s\n", u)
		}
	}

	stats := result.Stats
	fmt.Printf("\n%d extracted, %d failed (%d DOI, %d PMID, %d PMC)\n",
		stats.SuccessfulExtractions, stats.FailedExtractions,
		stats.DOICount, stats.PMIDCount, stats.PMCCount)
}

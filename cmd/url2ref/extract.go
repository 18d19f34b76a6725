package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cellular-Semantics/url2ref/internal/config"
	"github.com/Cellular-Semantics/url2ref/internal/document"
	"github.com/Cellular-Semantics/url2ref/internal/llm"
	"github.com/Cellular-Semantics/url2ref/internal/pattern"
	"github.com/Cellular-Semantics/url2ref/internal/pipeline"
	"github.com/Cellular-Semantics/url2ref/internal/scrape"
	"github.com/Cellular-Semantics/url2ref/internal/validate"
)

// Extract command flags
var (
	extractScrapeFlag     bool
	extractNoNCBIFlag     bool
	extractNoCrossrefFlag bool
	extractInputFlag      string
	extractPatternsFlag   string
	extractScrapeInterval string
	extractPDFInterval    string
)

func init() {
	extractCmd.Flags().BoolVar(&extractScrapeFlag, "scrape", false, "Re-attempt failed URLs via page scraping and PDF extraction (Phase 2)")
	extractCmd.Flags().BoolVar(&extractNoNCBIFlag, "no-ncbi", false, "Disable NCBI validation")
	extractCmd.Flags().BoolVar(&extractNoCrossrefFlag, "no-crossref", false, "Disable Crossref validation")
	extractCmd.Flags().StringVar(&extractInputFlag, "input", "", "Read URLs from file, one per line (- for stdin)")
	extractCmd.Flags().StringVar(&extractPatternsFlag, "patterns", "", "YAML file with extra publisher pattern rules")
	extractCmd.Flags().StringVar(&extractScrapeInterval, "scrape-interval", "", "Minimum delay between page fetches (e.g. 1s)")
	extractCmd.Flags().StringVar(&extractPDFInterval, "pdf-interval", "", "Minimum delay between PDF fetches (e.g. 2s)")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [url...]",
	Short: "Extract identifiers from bibliography URLs",
	Long: `Extract academic identifiers (DOI, PMID, PMC) from bibliography URLs.

Phase 1 derives identifiers from URL structure alone. URLs that yield
nothing are reported as failed; with --scrape they are re-attempted by
fetching the page or PDF. NCBI and Crossref validation raise identifier
confidence and are on by default.

Examples:
  url2ref extract https://pubmed.ncbi.nlm.nih.gov/37674083/
  url2ref extract --scrape https://academic.oup.com/brain/article/145/1/64/6367770
  url2ref extract --input urls.txt --no-crossref
  cat urls.txt | url2ref extract --input -`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	urls, err := collectURLs(args, extractInputFlag, cmd.InOrStdin())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if len(urls) == 0 {
		exitWithError(ExitError, "no URLs given; pass them as arguments or via --input")
	}

	cfg, err := loadExtractConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	opts := pipeline.Options{
		UseWebScraping:        extractScrapeFlag,
		UseNCBIValidation:     !extractNoNCBIFlag,
		UseCrossrefValidation: !extractNoCrossrefFlag,
	}

	result := p.ExtractFromBibliography(context.Background(), urls, opts)

	if humanOutput {
		printResultHuman(result)
		return nil
	}
	return outputJSON(result)
}

// collectURLs gathers input URLs from arguments and the optional input
// file, preserving order. Blank lines and #-comments are skipped.
func collectURLs(args []string, inputPath string, stdin io.Reader) ([]string, error) {
	urls := append([]string(nil), args...)

	if inputPath == "" {
		return urls, nil
	}

	var reader io.Reader
	if inputPath == "-" {
		reader = stdin
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return urls, nil
}

// loadExtractConfig merges the environment config with interval flags.
func loadExtractConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if extractScrapeInterval != "" {
		if cfg.ScrapeInterval, err = parseInterval("scrape-interval", extractScrapeInterval); err != nil {
			return nil, err
		}
	}
	if extractPDFInterval != "" {
		if cfg.DocumentInterval, err = parseInterval("pdf-interval", extractPDFInterval); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires the pipeline from configuration.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	patterns := pattern.NewExtractor()
	if extractPatternsFlag != "" {
		rules, err := pattern.LoadRules(extractPatternsFlag)
		if err != nil {
			return nil, err
		}
		patterns.AddRules(rules)
	}

	docOpts := []document.Option{document.WithMinInterval(cfg.DocumentInterval)}
	if cfg.OpenAIAPIKey != "" {
		llmOpts := []llm.Option{llm.WithAPIKey(cfg.OpenAIAPIKey)}
		if cfg.OpenAIModel != "" {
			llmOpts = append(llmOpts, llm.WithModel(cfg.OpenAIModel))
		}
		docOpts = append(docOpts, document.WithTextReader(llm.NewClient(llmOpts...)))
	}

	var crossrefOpts []validate.CrossrefOption
	if cfg.CrossrefMailto != "" {
		crossrefOpts = append(crossrefOpts, validate.WithCrossrefMailto(cfg.CrossrefMailto))
	}

	return pipeline.New(
		pipeline.WithPatternExtractor(patterns),
		pipeline.WithPageExtractor(scrape.NewScraper(scrape.WithMinInterval(cfg.ScrapeInterval))),
		pipeline.WithDocumentExtractor(document.NewExtractor(docOpts...)),
		pipeline.WithNCBISource(validate.NewNCBI(validate.WithNCBIAPIKey(cfg.NCBIAPIKey))),
		pipeline.WithCrossrefSource(validate.NewCrossref(crossrefOpts...)),
	), nil
}

func parseInterval(flagName, raw string) (d time.Duration, err error) {
	d, err = time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing --%s: %w", flagName, err)
	}
	return d, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"deepresearch/internal/config"
	"deepresearch/internal/format"
	"deepresearch/internal/progress"
)

var (
	researchMaxResults   int
	researchTimeFilter   string
	researchFormat       string
	researchTitle        string
	researchOutput       string
	researchPro          bool
	researchMaxQuestions int
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run a one-shot research query",
	Long: `Researches the query and prints the report to stdout (or -o file).
With --pro the query is first decomposed into a research plan and the
sub-query reports are compiled into a comprehensive answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		c, err := buildCore(cfg, logger)
		if err != nil {
			return err
		}

		outputFormat := researchFormat
		if outputFormat == "" {
			outputFormat = string(cfg.OutputFormat)
		}

		reporter := progress.NewReporter()
		reporter.Start(query)
		onProgress := func(_ context.Context, phase string, percent int) {
			reporter.Update(percent, phase)
		}

		ctx := cmd.Context()
		var content string
		var sources []string

		if researchPro {
			result, err := c.proResearcher(researchMaxQuestions).GenerateComprehensiveReport(ctx, query, onProgress)
			reporter.Finish()
			if err != nil {
				return err
			}
			if result.FailedQueries > 0 {
				fmt.Fprintf(os.Stderr, "Warning: %d sub-queries failed; report compiled from the rest\n", result.FailedQueries)
			}
			content = result.FinalReport
		} else {
			svc, err := c.standardService(researchMaxResults)
			if err != nil {
				return err
			}
			report, err := svc.Research(ctx, query, researchMaxResults, researchTimeFilter, onProgress)
			reporter.Finish()
			if err != nil {
				return err
			}
			content = report.Content
			sources = report.Sources
		}

		out, err := format.Format(content, sources, outputFormat, researchTitle)
		if err != nil {
			return err
		}

		if researchOutput != "" {
			if err := os.WriteFile(researchOutput, []byte(out.Content), 0644); err != nil {
				return fmt.Errorf("writing report to %s: %w", researchOutput, err)
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", researchOutput)
			return nil
		}

		fmt.Println(out.Content)
		return nil
	},
}

func init() {
	researchCmd.Flags().IntVarP(&researchMaxResults, "max-results", "n", 0, "number of search results to process (default from config)")
	researchCmd.Flags().StringVar(&researchTimeFilter, "time-filter", "", "recency filter: day, week, month or year")
	researchCmd.Flags().StringVarP(&researchFormat, "format", "f", "", "output format: text, markdown or html (default from config)")
	researchCmd.Flags().StringVar(&researchTitle, "title", "", "optional report title")
	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "write the report to a file instead of stdout")
	researchCmd.Flags().BoolVar(&researchPro, "pro", false, "use pro mode with research planning")
	researchCmd.Flags().IntVar(&researchMaxQuestions, "max-questions", 0, "pro mode sub-query cap, 2 to 8 (default from config)")
	rootCmd.AddCommand(researchCmd)
}

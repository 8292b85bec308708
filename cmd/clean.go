package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/engine"
	"github.com/sells-group/mailclean/internal/pipeline"
	"github.com/sells-group/mailclean/internal/report"
	"github.com/sells-group/mailclean/internal/reviewer"
	anthropicpkg "github.com/sells-group/mailclean/pkg/anthropic"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <input> [output]",
	Short: "Clean the email columns of a CSV or XLSX file",
	Long:  "Loads the input workbook, validates and normalizes every address in the detected email columns, removes duplicates, and writes the cleaned copy plus an audit report workbook. Output defaults to <input>-cleaned.<ext>.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input := args[0]
		output := outputPathFor(input)
		if len(args) == 2 {
			output = args[1]
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		eng, err := initEngine()
		if err != nil {
			return err
		}

		rev, err := initReviewer()
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, eng, st, rev)
		res, err := p.Run(ctx, input, output)
		if err != nil {
			return eris.Wrap(err, "clean")
		}

		zap.L().Info("clean complete",
			zap.String("run_id", res.RunID),
			zap.String("output", output),
			zap.String("report", res.ReportPath))

		formatSummary(os.Stdout, res.Summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func initEngine() (*engine.Engine, error) {
	refs, err := config.LoadRefSets(cfg.RefSets)
	if err != nil {
		return nil, err
	}
	return engine.New(refs, engine.OptionsFromConfig(cfg.Engine)), nil
}

// initReviewer builds the LLM escalation reviewer when enabled, or
// returns nil so review records pass through untouched.
func initReviewer() (reviewer.Reviewer, error) {
	if !cfg.Reviewer.Enabled {
		return nil, nil
	}
	if cfg.Reviewer.Key == "" {
		return nil, eris.New("reviewer enabled but no API key set (MAILCLEAN_REVIEWER_KEY)")
	}
	return reviewer.New(anthropicpkg.NewClient(cfg.Reviewer.Key), cfg.Reviewer), nil
}

func outputPathFor(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-cleaned" + ext
}

func formatSummary(out io.Writer, sum report.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total\t%d\n", sum.Total)
	_, _ = fmt.Fprintf(w, "Accepted\t%d\n", sum.Accepted)
	_, _ = fmt.Fprintf(w, "Fixed\t%d\n", sum.Fixed)
	_, _ = fmt.Fprintf(w, "Review\t%d\n", sum.Review)
	_, _ = fmt.Fprintf(w, "Suppressed\t%d\n", sum.Suppressed)
	_, _ = fmt.Fprintf(w, "Duplicates\t%d\n", sum.Duplicates)
	_, _ = fmt.Fprintf(w, "Near duplicates\t%d\n", sum.NearDuplicates)
	_, _ = fmt.Fprintf(w, "Blanked rows\t%d\n", sum.BlankedRows)
	_ = w.Flush()
}

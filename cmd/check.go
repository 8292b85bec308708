package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mailclean/internal/model"
)

// checkResult is the JSON view of a single evaluation.
type checkResult struct {
	Input        string                      `json:"input"`
	Cleaned      string                      `json:"cleaned"`
	Action       model.Action                `json:"action"`
	Confidence   float64                     `json:"confidence"`
	Flags        []string                    `json:"flags,omitempty"`
	Suggestion   *model.CorrectionSuggestion `json:"suggestion,omitempty"`
	CanonicalKey string                      `json:"canonical_key,omitempty"`
	Reason       string                      `json:"reason"`
	Notes        []string                    `json:"notes,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check [address ...]",
	Short: "Evaluate addresses without touching a file",
	Long:  "Runs the decision engine over the given addresses, or over one address per line on stdin when none are given, and prints one JSON result per address.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := initEngine()
		if err != nil {
			return err
		}

		addresses := args
		if len(addresses) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				addresses = append(addresses, line)
			}
			if err := scanner.Err(); err != nil {
				return eris.Wrap(err, "read stdin")
			}
		}
		if len(addresses) == 0 {
			return eris.New("no addresses to check")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, addr := range addresses {
			res := eng.Evaluate(addr)
			if err := enc.Encode(checkResult{
				Input:        res.Input,
				Cleaned:      res.Cleaned,
				Action:       res.Action,
				Confidence:   res.Confidence,
				Flags:        res.Flags.Names(),
				Suggestion:   res.Suggestion,
				CanonicalKey: res.CanonicalKey,
				Reason:       res.Reason,
				Notes:        res.Notes,
			}); err != nil {
				return eris.Wrap(err, "encode result")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

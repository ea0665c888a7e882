package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/util"
)

type validateResult struct {
	Platform string   `json:"platform"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build mappings and report errors",
	Long: `Build the selected mapping, or every platform in the mapping directory
when none is selected, and report the first load error of each.

Examples:
  lanemap validate
  lanemap -p wedge400 validate
  lanemap -f ./wedge400.json validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var results []validateResult
		if mappingFile != "" || len(platformNames) > 0 {
			_, err := requireMapping()
			results = append(results, newValidateResult(mappingLabel(), err))
		} else {
			loader := newLoader()
			names, err := loader.List()
			if err != nil {
				return fmt.Errorf("listing %s: %w", loader.Dir(), err)
			}
			for _, name := range names {
				_, err := loader.Load(name)
				results = append(results, newValidateResult(name, err))
			}
		}

		failed := 0
		for _, r := range results {
			if !r.Valid {
				failed++
			}
		}

		if jsonOutput {
			if err := printJSON(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				fmt.Printf("%s %s\n", cli.DotPad(r.Platform, 40), cli.Status(r.Valid))
				for _, e := range r.Errors {
					fmt.Printf("  %s\n", e)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d mappings failed validation", failed, len(results))
		}
		return nil
	},
}

func newValidateResult(name string, err error) validateResult {
	r := validateResult{Platform: name, Valid: err == nil}
	if err == nil {
		return r
	}
	var verr *util.ValidationError
	if errors.As(err, &verr) {
		r.Errors = verr.Errors
	} else {
		r.Errors = []string{err.Error()}
	}
	return r
}

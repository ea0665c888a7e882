package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/mapping"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "List and inspect platform mappings",
	Long: `List platform mapping files in the mapping directory and summarize
the selected mapping.

Examples:
  lanemap platform list
  lanemap -p wedge400 platform show
  lanemap -p wedge400-pim1 -p wedge400-pim2 platform show`,
}

type platformRow struct {
	Name    string           `json:"name"`
	Path    string           `json:"path"`
	Summary *mapping.Summary `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List platforms in the mapping directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := newLoader()
		names, err := loader.List()
		if err != nil {
			return fmt.Errorf("listing %s: %w", loader.Dir(), err)
		}

		rows := make([]platformRow, 0, len(names))
		for _, name := range names {
			row := platformRow{Name: name}
			row.Path, _ = loader.Path(name)
			m, err := loader.Load(name)
			if err != nil {
				row.Error = err.Error()
			} else {
				s := m.Summary()
				row.Summary = &s
			}
			rows = append(rows, row)
		}

		if jsonOutput {
			return printJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Printf("No platforms in %s\n", loader.Dir())
			return nil
		}

		t := cli.NewTable("PLATFORM", "PORTS", "CHIPS", "PROFILES", "STATUS")
		for _, r := range rows {
			if r.Summary == nil {
				t.Row(r.Name, "-", "-", "-", cli.Red("invalid"))
				continue
			}
			t.Row(r.Name,
				fmt.Sprint(r.Summary.Ports),
				fmt.Sprint(r.Summary.Chips),
				fmt.Sprint(r.Summary.Profiles),
				cli.Green("ok"))
		}
		t.Flush()
		return nil
	},
}

var platformShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Summarize the selected mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		s := m.Summary()
		if jsonOutput {
			return printJSON(map[string]interface{}{
				"platform": mappingLabel(),
				"summary":  s,
			})
		}

		fmt.Printf("Platform: %s\n\n", cli.Bold(mappingLabel()))
		t := cli.NewTable("ITEM", "COUNT")
		t.Row("chips", fmt.Sprint(s.Chips))
		t.Row("ports", fmt.Sprint(s.Ports))
		t.Row("controlling ports", fmt.Sprint(s.ControllingPorts))
		t.Row("profiles", fmt.Sprint(s.Profiles))
		t.Row("overrides", fmt.Sprint(s.Overrides))
		t.Flush()
		return nil
	},
}

func init() {
	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformShowCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
)

var chipCmd = &cobra.Command{
	Use:   "chip",
	Short: "List and inspect chips",
	Long: `List the chips registered in the mapping and the port lanes wired to them.

Examples:
  lanemap -p wedge400 chip list
  lanemap -p wedge400 chip show core0`,
}

var chipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chips in registration order",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		chips := m.Chips()
		if jsonOutput {
			return printJSON(chips)
		}

		t := cli.NewTable("CHIP", "KIND", "PHYSICAL-ID", "LANES")
		for _, c := range chips {
			lanes, err := m.LanesForChip(c.Name)
			if err != nil {
				return err
			}
			t.Row(c.Name, c.Kind.String(), fmt.Sprint(c.PhysicalID), fmt.Sprint(len(lanes)))
		}
		t.Flush()
		return nil
	},
}

var chipShowCmd = &cobra.Command{
	Use:   "show <chip>",
	Short: "Show a chip and the port lanes wired to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		c, err := m.Chip(args[0])
		if err != nil {
			return err
		}
		lanes, err := m.LanesForChip(c.Name)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]interface{}{"chip": c, "lanes": lanes})
		}

		fmt.Printf("Chip:        %s\n", cli.Bold(c.Name))
		fmt.Printf("Kind:        %s\n", c.Kind)
		fmt.Printf("Physical ID: %d\n\n", c.PhysicalID)
		printLaneRefs(m, lanes)
		return nil
	},
}

func init() {
	chipCmd.AddCommand(chipListCmd)
	chipCmd.AddCommand(chipShowCmd)
}

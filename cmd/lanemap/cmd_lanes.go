package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/util"
)

var lanesFilter string

var lanesCmd = &cobra.Command{
	Use:   "lanes <chip>",
	Short: "Show which port lane uses each lane of a chip",
	Long: `Reverse lookup from a chip to the port lanes wired to it.

Examples:
  lanemap -p wedge400 lanes core0
  lanemap -p wedge400 lanes core0 --lane 0-3,8
  lanemap -p wedge400 lanes eth1/1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		lanes, err := m.LanesForChip(args[0])
		if err != nil {
			return err
		}
		if lanesFilter != "" {
			lanes, err = filterChipLanes(args[0], lanes, lanesFilter)
			if err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(lanes)
		}
		if len(lanes) == 0 {
			fmt.Printf("No port lanes wired to %s\n", args[0])
			return nil
		}
		printLaneRefs(m, lanes)
		return nil
	},
}

// filterChipLanes keeps the refs that touch one of the chip lanes in spec,
// a range list such as "0-3,8".
func filterChipLanes(chip string, lanes []mapping.LaneRef, spec string) ([]mapping.LaneRef, error) {
	want, err := util.ExpandRange(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid --lane %q: %w", spec, err)
	}
	keep := make(map[int]bool, len(want))
	for _, l := range want {
		keep[l] = true
	}
	var out []mapping.LaneRef
	for _, ref := range lanes {
		for _, ep := range ref.Pin.Endpoints() {
			if ep.Chip == chip && keep[ep.Lane] {
				out = append(out, ref)
				break
			}
		}
	}
	return out, nil
}

func init() {
	lanesCmd.Flags().StringVar(&lanesFilter, "lane", "", "Only these chip lanes (e.g. 0-3,8)")
}

func printLaneRefs(m *mapping.Mapping, lanes []mapping.LaneRef) {
	t := cli.NewTable("PORT", "NAME", "LANE", "SIDES", "PIN")
	for _, ref := range lanes {
		name := "-"
		if p, err := m.Port(ref.Port); err == nil {
			name = cli.OrDash(p.Name)
		}
		t.Row(fmt.Sprint(ref.Port), name, fmt.Sprint(ref.Lane), formatSides(ref.Sides), formatPin(ref.Pin))
	}
	t.Flush()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/portdb"
)

var (
	resolveCableLengths []float64
	resolveMediaCode    int
	resolveMgmtIntf     int
	resolveChips        []string
)

type resolveResult struct {
	Port     mapping.PortID              `json:"port"`
	Name     string                      `json:"name"`
	Profile  mapping.PlatformProfile     `json:"profile"`
	Settings mapping.ProfileLaneSettings `json:"settings"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <port> <profile>",
	Short: "Resolve the lane settings of a port under a profile",
	Long: `Resolve the lane settings a port is programmed with under a profile.

Factor flags describe the plugged media; port config overrides whose
factor matches replace the iphy tx settings and the profile descriptor.

Examples:
  lanemap -p wedge400 resolve eth1/1/1 22
  lanemap -p wedge400 resolve 1 22 --cable-length 1.0
  lanemap -p wedge400 resolve 1 22 --media-code 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		id, err := portdb.LookupPort(m, args[0])
		if err != nil {
			return err
		}
		pid, err := parseProfileID(args[1])
		if err != nil {
			return err
		}

		rt := runtimeFactor(cmd)
		settings, err := m.ResolveWithOverrides(id, pid, rt)
		if err != nil {
			return err
		}
		prof, err := m.ProfileFor(id, pid, rt)
		if err != nil {
			return err
		}
		p, err := m.Port(id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resolveResult{Port: id, Name: p.Name, Profile: prof, Settings: settings})
		}

		fmt.Printf("Port %s (%d), profile %d: %s\n\n", cli.Bold(cli.OrDash(p.Name)), id, pid, prof)
		t := cli.NewTable("LANE", "IPHY", "TX", "RX", "TRANSCEIVER")
		for i, lc := range settings.Iphy {
			xcvr := "-"
			if i < len(settings.Transceiver) {
				xcvr = settings.Transceiver[i].ID.String()
			}
			t.Row(fmt.Sprint(i), lc.ID.String(), formatTx(lc.Tx), formatRx(lc.Rx), xcvr)
		}
		t.Flush()
		if len(settings.SubsumedPorts) > 0 {
			fmt.Printf("\nSubsumes ports: %v\n", settings.SubsumedPorts)
		}
		return nil
	},
}

// runtimeFactor builds the media factor from the flags that were given.
func runtimeFactor(cmd *cobra.Command) *mapping.Factor {
	rt := &mapping.Factor{}
	set := false
	if cmd.Flags().Changed("cable-length") {
		rt.CableLengths = resolveCableLengths
		set = true
	}
	if cmd.Flags().Changed("media-code") {
		code := resolveMediaCode
		rt.MediaInterfaceCode = &code
		set = true
	}
	if cmd.Flags().Changed("mgmt-interface") {
		mi := resolveMgmtIntf
		rt.ManagementInterface = &mi
		set = true
	}
	if cmd.Flags().Changed("chip") {
		rt.Chips = resolveChips
		set = true
	}
	if !set {
		return nil
	}
	return rt
}

func init() {
	resolveCmd.Flags().Float64SliceVar(&resolveCableLengths, "cable-length", nil, "Plugged cable length in meters")
	resolveCmd.Flags().IntVar(&resolveMediaCode, "media-code", 0, "Media interface code of the plugged module")
	resolveCmd.Flags().IntVar(&resolveMgmtIntf, "mgmt-interface", 0, "Transceiver management interface code")
	resolveCmd.Flags().StringSliceVar(&resolveChips, "chip", nil, "Chips in the lane path")
}

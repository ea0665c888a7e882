package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/portdb"
	"github.com/newtron-network/lanemap/pkg/util"
)

var portCmd = &cobra.Command{
	Use:   "port",
	Short: "List and inspect ports",
	Long: `List ports, show a port's wiring and profiles, and show breakout groups.

A port is given by id or by name.

Examples:
  lanemap -p wedge400 port list
  lanemap -p wedge400 port show eth1/1/1
  lanemap -p wedge400 port group 5
  lanemap -p wedge400 port core-pins --select 1=22`,
}

var portListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ports in id order",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		ports := m.Ports()
		if jsonOutput {
			return printJSON(ports)
		}

		t := cli.NewTable("ID", "NAME", "CONTROLLING", "TYPE", "LANES", "MAX-SPEED", "PROFILES")
		for _, p := range ports {
			speed := "-"
			if s, err := m.MaxSpeed(p.ID); err == nil {
				speed = s.String()
			}
			t.Row(fmt.Sprint(p.ID), cli.OrDash(p.Name), fmt.Sprint(p.ControllingPort),
				p.Type.String(), fmt.Sprint(len(p.Pins)), speed, formatProfiles(p.ProfileIDs()))
		}
		t.Flush()
		return nil
	},
}

var portShowCmd = &cobra.Command{
	Use:   "show <port>",
	Short: "Show a port's pins and supported profiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		id, err := portdb.LookupPort(m, args[0])
		if err != nil {
			return err
		}
		p, err := m.Port(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(p)
		}

		fmt.Printf("Port:        %s (%d)\n", cli.Bold(cli.OrDash(p.Name)), p.ID)
		fmt.Printf("Controlling: %d\n", p.ControllingPort)
		fmt.Printf("Type:        %s\n", p.Type)
		fmt.Printf("Scope:       %s\n", p.Scope)
		if chip, err := m.IphyChip(id); err == nil {
			fmt.Printf("Iphy chip:   %s\n", chip.Name)
		}
		if p.AttachedCoreID != nil {
			fmt.Printf("Core:        %d", *p.AttachedCoreID)
			if p.AttachedCorePortIndex != nil {
				fmt.Printf(" port %d", *p.AttachedCorePortIndex)
			}
			fmt.Println()
		}

		fmt.Println("\nPins:")
		pins := cli.NewTable("LANE", "PIN").WithPrefix("  ")
		for i, pin := range p.Pins {
			pins.Row(fmt.Sprint(i), formatPin(pin))
		}
		pins.Flush()

		fmt.Println("\nProfiles:")
		profiles := cli.NewTable("ID", "SPEED", "LANES", "FEC", "MEDIUM", "SUBSUMES").WithPrefix("  ")
		for _, pid := range p.ProfileIDs() {
			prof, err := m.ProfileFor(id, pid, nil)
			if err != nil {
				profiles.Row(fmt.Sprint(pid), cli.Red(err.Error()), "", "", "", "")
				continue
			}
			subsumed := make([]int, len(p.SupportedProfiles[pid].SubsumedPorts))
			for i, sp := range p.SupportedProfiles[pid].SubsumedPorts {
				subsumed[i] = int(sp)
			}
			profiles.Row(fmt.Sprint(pid), prof.Speed.String(), fmt.Sprint(prof.NumLanes),
				prof.FEC.String(), prof.Medium.String(), cli.OrDash(util.JoinInts(subsumed)))
		}
		profiles.Flush()
		return nil
	},
}

var portGroupCmd = &cobra.Command{
	Use:   "group <controlling-port>",
	Short: "Show the breakout group of a controlling port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		id, err := portdb.LookupPort(m, args[0])
		if err != nil {
			return err
		}
		members, err := m.PortsByControllingID(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(members)
		}

		t := cli.NewTable("ID", "NAME", "SYSTEM-LANES", "LANES")
		for _, p := range members {
			t.Row(fmt.Sprint(p.ID), cli.OrDash(p.Name), systemLanes(p), fmt.Sprint(len(p.Pins)))
		}
		t.Flush()
		return nil
	},
}

var corePinSelect []string

var portCorePinsCmd = &cobra.Command{
	Use:   "core-pins",
	Short: "Show the iphy lanes each core chip is programmed with",
	Long: `Show the iphy lane settings per core chip for a profile selection.

Without --select each controlling port uses its fastest profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		sel, err := selectionFor(m, corePinSelect)
		if err != nil {
			return err
		}
		pins, err := m.CorePinMapping(sel)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(pins)
		}

		t := cli.NewTable("CHIP", "LANE", "TX", "RX")
		for _, c := range m.Chips() {
			for _, lc := range pins[c.Name] {
				t.Row(c.Name, fmt.Sprint(lc.ID.Lane), formatTx(lc.Tx), formatRx(lc.Rx))
			}
		}
		t.Flush()
		return nil
	},
}

func selectionFor(m *mapping.Mapping, pairs []string) (portdb.Selection, error) {
	if len(pairs) == 0 {
		return portdb.DefaultSelection(m)
	}
	return portdb.ParseSelection(m, pairs)
}

func formatRx(rx *mapping.RxSettings) string {
	if rx == nil {
		return "-"
	}
	return fmt.Sprintf("ctl=%d dsp=%d", rx.CtlCode, rx.DSPMode)
}

func init() {
	portCorePinsCmd.Flags().StringArrayVar(&corePinSelect, "select", nil, "Profile selection as port=profile (repeatable)")

	portCmd.AddCommand(portListCmd)
	portCmd.AddCommand(portShowCmd)
	portCmd.AddCommand(portGroupCmd)
	portCmd.AddCommand(portCorePinsCmd)
}

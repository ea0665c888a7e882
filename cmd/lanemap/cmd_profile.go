package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/cli"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "List and inspect platform profiles",
	Long: `List the platform profile table and show which ports support a profile.

Examples:
  lanemap -p wedge400 profile list
  lanemap -p wedge400 profile show 22`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles in id order",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		profiles := m.Profiles()
		if jsonOutput {
			return printJSON(profiles)
		}

		t := cli.NewTable("ID", "SPEED", "LANES", "MODULATION", "FEC", "MEDIUM")
		for _, p := range profiles {
			t.Row(fmt.Sprint(p.ID), p.Speed.String(), fmt.Sprint(p.NumLanes),
				p.Modulation.String(), p.FEC.String(), p.Medium.String())
		}
		t.Flush()
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show a profile and the ports that support it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}
		p, err := m.Profile(id)
		if err != nil {
			return err
		}

		var ports []string
		for _, port := range m.Ports() {
			if _, ok := port.SupportedProfiles[id]; ok {
				ports = append(ports, cli.OrDash(port.Name))
			}
		}
		if jsonOutput {
			return printJSON(map[string]interface{}{"profile": p, "ports": ports})
		}

		fmt.Printf("Profile:        %s (%d)\n", cli.Bold(p.String()), p.ID)
		fmt.Printf("Speed:          %s (%d bps)\n", p.Speed, p.SpeedBps())
		fmt.Printf("Lanes:          %d\n", p.NumLanes)
		fmt.Printf("Modulation:     %s\n", p.Modulation)
		fmt.Printf("FEC:            %s\n", p.FEC)
		fmt.Printf("Medium:         %s\n", p.Medium)
		fmt.Printf("Interface type: %d\n", p.InterfaceType)
		fmt.Printf("Interface mode: %d\n", p.InterfaceMode)
		fmt.Printf("Ports:          %d\n", len(ports))
		for _, name := range ports {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
}

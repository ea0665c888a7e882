package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/util"
)

// formatPin renders a pin as "core0:3 -> xphy0:3/xphy0:7 -> eth1/1:3".
func formatPin(p mapping.PortPin) string {
	parts := []string{p.SystemSide.String()}
	if p.Junction != nil {
		parts = append(parts, p.Junction.System.String()+"/"+p.Junction.Line.String())
	}
	if p.LineSide != nil {
		parts = append(parts, p.LineSide.String())
	}
	return strings.Join(parts, " -> ")
}

// formatTx renders the main taps as "pre/main/post".
func formatTx(tx *mapping.TxSettings) string {
	if tx == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d", tx.Pre, tx.Main, tx.Post)
}

func formatSides(sides []mapping.Side) string {
	s := make([]string, len(sides))
	for i, side := range sides {
		s[i] = string(side)
	}
	return strings.Join(s, ",")
}

func formatProfiles(ids []mapping.ProfileID) string {
	if len(ids) == 0 {
		return "-"
	}
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(int(id))
	}
	return strings.Join(s, ",")
}

// systemLanes renders a port's system-side lanes as "core1:0-3". Members of a
// breakout group always sit on one chip.
func systemLanes(p mapping.Port) string {
	if len(p.Pins) == 0 {
		return "-"
	}
	lanes := make([]int, len(p.Pins))
	for i, pin := range p.Pins {
		lanes[i] = pin.SystemSide.Lane
	}
	return p.Pins[0].SystemSide.Chip + ":" + util.CompactRange(lanes)
}

func parseProfileID(s string) (mapping.ProfileID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid profile id %q", s)
	}
	return mapping.ProfileID(n), nil
}

func parsePortID(s string) (mapping.PortID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port id %q", s)
	}
	return mapping.PortID(n), nil
}

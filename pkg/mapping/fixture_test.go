package mapping

import "testing"

func laneConfigs(chip string, first, n int, tx *TxSettings) []LaneConfig {
	out := make([]LaneConfig, n)
	for i := range out {
		out[i] = LaneConfig{ID: PinEndpoint{Chip: chip, Lane: first + i}}
		if tx != nil {
			t := *tx
			out[i].Tx = &t
		}
	}
	return out
}

func addWiredPort(t *testing.T, b *Builder, spec PortSpec, core, xcvr string, first, n int) {
	t.Helper()
	if err := b.AddPort(spec); err != nil {
		t.Fatalf("AddPort(%d) failed: %v", spec.ID, err)
	}
	for i := 0; i < n; i++ {
		line := PinEndpoint{Chip: xcvr, Lane: first + i}
		if err := b.AddPortPin(spec.ID, PinEndpoint{Chip: core, Lane: first + i}, &line); err != nil {
			t.Fatalf("AddPortPin(%d) failed: %v", spec.ID, err)
		}
	}
}

func addProfile(t *testing.T, b *Builder, port PortID, profile ProfileID, core, xcvr string, first, n int) {
	t.Helper()
	settings := ProfileLaneSettings{
		Iphy:        laneConfigs(core, first, n, &TxSettings{Pre: -8, Main: 132, Post: -20}),
		Transceiver: laneConfigs(xcvr, first, n, nil),
	}
	if err := b.AddSupportedProfile(port, profile, settings); err != nil {
		t.Fatalf("AddSupportedProfile(%d, %d) failed: %v", port, profile, err)
	}
}

// newTestBuilder returns a loading builder holding two NPU cores, two
// transceivers, a 4-lane port 1 and a 2x2 breakout group controlled by 5.
func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()
	chips := []Chip{
		{"core0", ChipKindAsicCore, 0},
		{"core1", ChipKindAsicCore, 1},
		{"eth1/1", ChipKindTransceiver, 0},
		{"eth1/2", ChipKindTransceiver, 1},
	}
	for _, c := range chips {
		if err := b.RegisterChip(c.Name, c.Kind, c.PhysicalID); err != nil {
			t.Fatalf("RegisterChip(%s) failed: %v", c.Name, err)
		}
	}
	profiles := []PlatformProfile{
		{ID: 14, Speed: 25000, NumLanes: 1, Modulation: ModulationNRZ, FEC: FECCL74, Medium: MediumCopper},
		{ID: 16, Speed: 50000, NumLanes: 2, Modulation: ModulationNRZ, FEC: FECRS528, Medium: MediumOptical},
		{ID: 18, Speed: 40000, NumLanes: 4, Modulation: ModulationNRZ, FEC: FECNone, Medium: MediumOptical},
		{ID: 22, Speed: 100000, NumLanes: 4, Modulation: ModulationNRZ, FEC: FECRS528, Medium: MediumOptical},
	}
	for _, p := range profiles {
		if err := b.RegisterProfile(p); err != nil {
			t.Fatalf("RegisterProfile(%d) failed: %v", p.ID, err)
		}
	}

	addWiredPort(t, b, PortSpec{ID: 1, Name: "eth1/1/1", ControllingPort: 1}, "core0", "eth1/1", 0, 4)
	addProfile(t, b, 1, 22, "core0", "eth1/1", 0, 4)
	addProfile(t, b, 1, 18, "core0", "eth1/1", 0, 4)
	addProfile(t, b, 1, 16, "core0", "eth1/1", 0, 2)

	addWiredPort(t, b, PortSpec{ID: 5, Name: "eth1/2/1", ControllingPort: 5}, "core1", "eth1/2", 0, 2)
	addProfile(t, b, 5, 16, "core1", "eth1/2", 0, 2)
	addWiredPort(t, b, PortSpec{ID: 6, Name: "eth1/2/3", ControllingPort: 5}, "core1", "eth1/2", 2, 2)
	addProfile(t, b, 6, 16, "core1", "eth1/2", 2, 2)
	return b
}

func buildTestMapping(t *testing.T) *Mapping {
	t.Helper()
	m, err := newTestBuilder(t).Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}

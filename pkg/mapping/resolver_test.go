package mapping

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildWithOverrides(t *testing.T, overrides ...PortConfigOverride) *Mapping {
	t.Helper()
	b := newTestBuilder(t)
	for _, o := range overrides {
		if err := b.AddOverride(o); err != nil {
			t.Fatalf("AddOverride failed: %v", err)
		}
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}

func intPtr(v int) *int { return &v }

func TestResolveWithOverrides(t *testing.T) {
	m := buildWithOverrides(t, PortConfigOverride{
		Factor: OverrideFactor{
			Ports:        []PortID{1},
			Profiles:     []ProfileID{22},
			CableLengths: []float64{1, 2},
		},
		Iphy: []LaneConfig{{ID: PinEndpoint{Chip: "ALL", Lane: 0}, Tx: &TxSettings{Pre: -4, Main: 100, Post: -10}}},
	})

	tests := []struct {
		name     string
		factor   *Factor
		wantMain int
	}{
		{"listed cable", &Factor{CableLengths: []float64{1}}, 100},
		{"all cables listed", &Factor{CableLengths: []float64{2, 1}}, 100},
		{"unlisted cable", &Factor{CableLengths: []float64{3}}, 132},
		{"no factor", nil, 132},
		{"factor without cable", &Factor{}, 132},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := m.ResolveWithOverrides(1, 22, tt.factor)
			if err != nil {
				t.Fatalf("ResolveWithOverrides failed: %v", err)
			}
			if len(s.Iphy) != 4 {
				t.Fatalf("len(Iphy) = %d, want 4", len(s.Iphy))
			}
			for i, lc := range s.Iphy {
				if lc.ID != (PinEndpoint{"core0", i}) {
					t.Errorf("lane %d id = %s, want core0:%d", i, lc.ID, i)
				}
				if lc.Tx == nil || lc.Tx.Main != tt.wantMain {
					t.Errorf("lane %d tx = %+v, want main %d", i, lc.Tx, tt.wantMain)
				}
			}
		})
	}

	// Other profiles of the port are untouched.
	s, err := m.ResolveWithOverrides(1, 18, &Factor{CableLengths: []float64{1}})
	if err != nil {
		t.Fatalf("ResolveWithOverrides(1, 18) failed: %v", err)
	}
	if s.Iphy[0].Tx.Main != 132 {
		t.Errorf("profile 18 main = %d, want 132", s.Iphy[0].Tx.Main)
	}
}

func TestResolveWithOverridesPerLane(t *testing.T) {
	m := buildWithOverrides(t, PortConfigOverride{
		Factor: OverrideFactor{Ports: []PortID{5}},
		Iphy: []LaneConfig{
			{ID: PinEndpoint{Chip: "core1", Lane: 0}, Tx: &TxSettings{Main: 10}},
			{ID: PinEndpoint{Chip: "core1", Lane: 1}, Tx: &TxSettings{Main: 11}},
		},
	})

	s, err := m.ResolveWithOverrides(5, 16, nil)
	if err != nil {
		t.Fatalf("ResolveWithOverrides failed: %v", err)
	}
	if s.Iphy[0].Tx.Main != 10 || s.Iphy[1].Tx.Main != 11 {
		t.Errorf("iphy = %+v %+v, want main 10 and 11", s.Iphy[0].Tx, s.Iphy[1].Tx)
	}
}

func TestResolveWithOverridesMismatch(t *testing.T) {
	m := buildWithOverrides(t, PortConfigOverride{
		Factor: OverrideFactor{Ports: []PortID{5}},
		Iphy:   laneConfigs("core1", 0, 3, &TxSettings{Main: 1}),
	})

	_, err := m.ResolveWithOverrides(5, 16, nil)
	var e *OverrideLaneMismatchError
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want *OverrideLaneMismatchError", err)
	}
	if e.Got != 3 || e.Expected != 2 {
		t.Errorf("error = %+v", *e)
	}
	if _, err := m.ResolveProfile(5, 16); err != nil {
		t.Errorf("ResolveProfile(5, 16) failed: %v", err)
	}
}

func TestProfileFor(t *testing.T) {
	m := buildWithOverrides(t, PortConfigOverride{
		Factor: OverrideFactor{Profiles: []ProfileID{16}, MediaInterfaceCode: intPtr(7)},
		Profile: &PlatformProfile{
			Speed: 50000, NumLanes: 2, Modulation: ModulationPAM4, FEC: FECRS544, Medium: MediumOptical,
		},
	})

	p, err := m.ProfileFor(1, 16, &Factor{MediaInterfaceCode: intPtr(7)})
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if p.ID != 16 || p.Modulation != ModulationPAM4 || p.FEC != FECRS544 {
		t.Errorf("ProfileFor(media 7) = %+v", p)
	}

	p, err = m.ProfileFor(1, 16, &Factor{MediaInterfaceCode: intPtr(8)})
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if p.Modulation != ModulationNRZ {
		t.Errorf("ProfileFor(media 8) = %+v, want table entry", p)
	}

	if _, err := m.ProfileFor(1, 14, nil); !errors.Is(err, ErrUnsupportedProfile) {
		t.Errorf("ProfileFor(1, 14) err = %v, want ErrUnsupportedProfile", err)
	}
}

func TestCorePinMapping(t *testing.T) {
	m := buildWithOverrides(t,
		PortConfigOverride{
			Factor: OverrideFactor{Ports: []PortID{1}},
			Iphy:   []LaneConfig{{Tx: &TxSettings{Main: 999}}},
		},
		PortConfigOverride{
			Factor: OverrideFactor{Chips: []string{"core0"}, Profiles: []ProfileID{22}},
			Iphy: []LaneConfig{
				{ID: PinEndpoint{"core0", 0}, Tx: &TxSettings{Main: 80}},
				{ID: PinEndpoint{"core0", 1}, Tx: &TxSettings{Main: 81}},
			},
		},
		PortConfigOverride{
			Factor: OverrideFactor{Chips: []string{"core1"}},
			Iphy:   []LaneConfig{{ID: PinEndpoint{"core1", 0}, Tx: &TxSettings{Main: 90}}},
		},
	)

	got, err := m.CorePinMapping(map[PortID]ProfileID{1: 22, 5: 16, 6: 16})
	if err != nil {
		t.Fatalf("CorePinMapping failed: %v", err)
	}
	want := map[string][]LaneConfig{
		"core0": {
			{ID: PinEndpoint{"core0", 0}, Tx: &TxSettings{Main: 80}},
			{ID: PinEndpoint{"core0", 1}, Tx: &TxSettings{Main: 81}},
		},
		"core1": {{ID: PinEndpoint{"core1", 0}, Tx: &TxSettings{Main: 90}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CorePinMapping() mismatch (-want +got):\n%s", diff)
	}

	got["core0"][0].Tx.Main = 1
	again, _ := m.CorePinMapping(map[PortID]ProfileID{1: 22})
	if again["core0"][0].Tx.Main != 80 {
		t.Error("CorePinMapping() result aliases the stored override")
	}

	if _, err := m.CorePinMapping(map[PortID]ProfileID{1: 14}); !errors.Is(err, ErrUnsupportedProfile) {
		t.Errorf("CorePinMapping(1: 14) err = %v, want ErrUnsupportedProfile", err)
	}
}

func TestCorePinMappingIgnoresPortOverrides(t *testing.T) {
	m := buildWithOverrides(t, PortConfigOverride{
		Factor: OverrideFactor{Ports: []PortID{1}},
		Iphy:   []LaneConfig{{Tx: &TxSettings{Main: 999}}},
	})

	_, err := m.CorePinMapping(map[PortID]ProfileID{1: 22})
	var npe *NoCorePinsError
	if !errors.As(err, &npe) {
		t.Fatalf("CorePinMapping() err = %v, want NoCorePinsError", err)
	}
	if npe.Chip != "core0" || npe.Profile != 22 {
		t.Errorf("NoCorePinsError = %+v", npe)
	}
	if !errors.Is(err, ErrNoCorePins) {
		t.Error("error does not unwrap to ErrNoCorePins")
	}
}

func TestOverridesCopied(t *testing.T) {
	o := PortConfigOverride{
		Factor: OverrideFactor{Ports: []PortID{1}},
		Iphy:   []LaneConfig{{Tx: &TxSettings{Main: 5}}},
	}
	m := buildWithOverrides(t, o)
	o.Iphy[0].Tx.Main = 6
	o.Factor.Ports[0] = 5

	got := m.Overrides()
	if len(got) != 1 || got[0].Iphy[0].Tx.Main != 5 || got[0].Factor.Ports[0] != 1 {
		t.Errorf("Overrides() = %+v", got)
	}
}

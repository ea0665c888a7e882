package mapping

import (
	"errors"
	"testing"

	"github.com/newtron-network/lanemap/pkg/util"
)

func TestBuilderStates(t *testing.T) {
	b := NewBuilder()
	if b.State() != StateUnloaded {
		t.Fatalf("State() = %s, want unloaded", b.State())
	}
	if err := b.RegisterChip("core0", ChipKindAsicCore, 0); err != nil {
		t.Fatalf("RegisterChip failed: %v", err)
	}
	if b.State() != StateLoading {
		t.Errorf("State() = %s, want loading", b.State())
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if b.State() != StateReady {
		t.Errorf("State() = %s, want ready", b.State())
	}

	if err := b.RegisterChip("core1", ChipKindAsicCore, 1); !errors.Is(err, ErrBuilderSealed) {
		t.Errorf("RegisterChip after Build: err = %v, want ErrBuilderSealed", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderSealed) {
		t.Errorf("second Build: err = %v, want ErrBuilderSealed", err)
	}
}

func TestBuilderEmpty(t *testing.T) {
	m, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if s := m.Summary(); s != (Summary{}) {
		t.Errorf("Summary() = %+v, want zero", s)
	}
}

func TestBuilderDuplicateChip(t *testing.T) {
	b := NewBuilder()
	if err := b.RegisterChip("core0", ChipKindAsicCore, 0); err != nil {
		t.Fatalf("RegisterChip failed: %v", err)
	}

	err := b.RegisterChip("core0", ChipKindAsicCore, 1)
	var dup *DuplicateChipError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateChipError", err)
	}
	if dup.Name != "core0" {
		t.Errorf("Name = %q, want core0", dup.Name)
	}
	if b.State() != StateFailed {
		t.Errorf("State() = %s, want failed", b.State())
	}

	// Every later call reports the failure and the original cause.
	err = b.RegisterProfile(PlatformProfile{ID: 1, NumLanes: 1})
	if !errors.Is(err, ErrBuilderFailed) || !errors.Is(err, ErrDuplicateChip) {
		t.Errorf("RegisterProfile after failure: err = %v", err)
	}
	_, err = b.Build()
	if !errors.Is(err, ErrBuilderFailed) || !errors.As(err, &dup) {
		t.Errorf("Build after failure: err = %v", err)
	}
	if !errors.Is(b.Err(), ErrDuplicateChip) {
		t.Errorf("Err() = %v", b.Err())
	}
}

func TestBuilderDanglingPinChip(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.AddPort(PortSpec{ID: 9, Name: "eth1/9/1", ControllingPort: 9}); err != nil {
		t.Fatalf("AddPort failed: %v", err)
	}
	if err := b.AddPortPin(9, PinEndpoint{Chip: "core0", Lane: 4}, nil); err != nil {
		t.Fatalf("AddPortPin failed: %v", err)
	}
	if err := b.AddPortPin(9, PinEndpoint{Chip: "core9", Lane: 0}, nil); err != nil {
		t.Fatalf("AddPortPin failed: %v", err)
	}

	_, err := b.Build()
	var dangling *DanglingChipReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("Build() err = %v, want *DanglingChipReferenceError", err)
	}
	want := DanglingChipReferenceError{Port: 9, Lane: 1, Chip: "core9"}
	if *dangling != want {
		t.Errorf("error = %+v, want %+v", *dangling, want)
	}
	if b.State() != StateFailed {
		t.Errorf("State() = %s, want failed", b.State())
	}
}

func TestBuilderDanglingProfileChip(t *testing.T) {
	b := newTestBuilder(t)
	addWiredPort(t, b, PortSpec{ID: 9, Name: "eth1/9/1", ControllingPort: 9}, "core0", "eth1/1", 4, 1)
	err := b.AddSupportedProfile(9, 14, ProfileLaneSettings{Iphy: laneConfigs("ghost", 0, 1, nil)})
	if err != nil {
		t.Fatalf("AddSupportedProfile failed: %v", err)
	}

	if err := b.ValidateAllReferences(); !errors.Is(err, ErrDanglingChipReference) {
		t.Fatalf("ValidateAllReferences() err = %v", err)
	}
	var dangling *DanglingChipReferenceError
	if !errors.As(b.Err(), &dangling) {
		t.Fatalf("Err() = %v", b.Err())
	}
	want := DanglingChipReferenceError{Port: 9, Lane: 0, Chip: "ghost", Profile: 14, HasProfile: true}
	if *dangling != want {
		t.Errorf("error = %+v, want %+v", *dangling, want)
	}
}

func TestBuilderConflictingPhysicalID(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.RegisterChip("core2", ChipKindAsicCore, 1); err != nil {
		t.Fatalf("RegisterChip failed: %v", err)
	}
	_, err := b.Build()
	var conflict *ConflictingPhysicalIDError
	if !errors.As(err, &conflict) {
		t.Fatalf("Build() err = %v, want *ConflictingPhysicalIDError", err)
	}
	if conflict.Chips != [2]string{"core1", "core2"} || conflict.PhysicalID != 1 {
		t.Errorf("error = %+v", *conflict)
	}
}

func TestBuilderProfileChecks(t *testing.T) {
	twoPins := func(t *testing.T, b *Builder, line bool) {
		t.Helper()
		if err := b.AddPort(PortSpec{ID: 9, Name: "eth1/9/1", ControllingPort: 9}); err != nil {
			t.Fatalf("AddPort failed: %v", err)
		}
		for lane := 4; lane < 6; lane++ {
			var ls *PinEndpoint
			if line {
				ls = &PinEndpoint{Chip: "eth1/1", Lane: lane}
			}
			if err := b.AddPortPin(9, PinEndpoint{Chip: "core0", Lane: lane}, ls); err != nil {
				t.Fatalf("AddPortPin failed: %v", err)
			}
		}
	}

	tests := []struct {
		name     string
		line     bool
		profile  ProfileID
		settings ProfileLaneSettings
		check    func(t *testing.T, err error)
	}{
		{
			name:     "unknown profile",
			line:     true,
			profile:  99,
			settings: ProfileLaneSettings{Iphy: laneConfigs("core0", 4, 1, nil)},
			check: func(t *testing.T, err error) {
				var e *UnknownProfileError
				if !errors.As(err, &e) || e.Profile != 99 || e.Port == nil || *e.Port != 9 {
					t.Errorf("err = %v, want UnknownProfileError for port 9 profile 99", err)
				}
			},
		},
		{
			name:    "too few pins",
			line:    true,
			profile: 22,
			settings: ProfileLaneSettings{
				Iphy:        laneConfigs("core0", 4, 4, nil),
				Transceiver: laneConfigs("eth1/1", 4, 4, nil),
			},
			check: func(t *testing.T, err error) {
				var e *LaneCountMismatchError
				if !errors.As(err, &e) || e.Side != "pins" || e.Got != 2 || e.Expected != 4 {
					t.Errorf("err = %v, want pins mismatch 2 vs 4", err)
				}
			},
		},
		{
			name:    "iphy count",
			line:    true,
			profile: 16,
			settings: ProfileLaneSettings{
				Iphy:        laneConfigs("core0", 4, 1, nil),
				Transceiver: laneConfigs("eth1/1", 4, 2, nil),
			},
			check: func(t *testing.T, err error) {
				var e *LaneCountMismatchError
				if !errors.As(err, &e) || e.Side != "iphy" || e.Got != 1 || e.Expected != 2 {
					t.Errorf("err = %v, want iphy mismatch 1 vs 2", err)
				}
			},
		},
		{
			name:    "transceiver count",
			line:    true,
			profile: 16,
			settings: ProfileLaneSettings{
				Iphy:        laneConfigs("core0", 4, 2, nil),
				Transceiver: laneConfigs("eth1/1", 4, 1, nil),
			},
			check: func(t *testing.T, err error) {
				var e *LaneCountMismatchError
				if !errors.As(err, &e) || e.Side != "transceiver" || e.Got != 1 {
					t.Errorf("err = %v, want transceiver mismatch", err)
				}
			},
		},
		{
			name:     "transceiver lanes required",
			line:     true,
			profile:  16,
			settings: ProfileLaneSettings{Iphy: laneConfigs("core0", 4, 2, nil)},
			check: func(t *testing.T, err error) {
				var e *LaneCountMismatchError
				if !errors.As(err, &e) || e.Side != "transceiver" || e.Got != 0 || e.Expected != 2 {
					t.Errorf("err = %v, want missing transceiver lanes", err)
				}
			},
		},
		{
			name:     "no line side",
			line:     false,
			profile:  16,
			settings: ProfileLaneSettings{Iphy: laneConfigs("core0", 4, 2, nil)},
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
			},
		},
		{
			name:    "unwired iphy lane",
			line:    true,
			profile: 16,
			settings: ProfileLaneSettings{
				Iphy: []LaneConfig{
					{ID: PinEndpoint{Chip: "core0", Lane: 4}},
					{ID: PinEndpoint{Chip: "core0", Lane: 7}},
				},
				Transceiver: laneConfigs("eth1/1", 4, 2, nil),
			},
			check: func(t *testing.T, err error) {
				var e *UnwiredLaneError
				if !errors.As(err, &e) || e.Side != "iphy" || e.Endpoint != (PinEndpoint{Chip: "core0", Lane: 7}) {
					t.Errorf("err = %v, want unwired core0:7", err)
				}
			},
		},
		{
			name:    "unwired transceiver lane",
			line:    true,
			profile: 16,
			settings: ProfileLaneSettings{
				Iphy:        laneConfigs("core0", 4, 2, nil),
				Transceiver: laneConfigs("eth1/1", 0, 2, nil),
			},
			check: func(t *testing.T, err error) {
				var e *UnwiredLaneError
				if !errors.As(err, &e) || e.Side != "transceiver" {
					t.Errorf("err = %v, want unwired transceiver lane", err)
				}
			},
		},
		{
			name:    "unknown subsumed port",
			line:    true,
			profile: 16,
			settings: ProfileLaneSettings{
				Iphy:          laneConfigs("core0", 4, 2, nil),
				Transceiver:   laneConfigs("eth1/1", 4, 2, nil),
				SubsumedPorts: []PortID{42},
			},
			check: func(t *testing.T, err error) {
				var e *UnknownPortError
				if !errors.As(err, &e) || e.Port != 42 {
					t.Errorf("err = %v, want unknown port 42", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			twoPins(t, b, tt.line)
			if err := b.AddSupportedProfile(9, tt.profile, tt.settings); err != nil {
				t.Fatalf("AddSupportedProfile failed: %v", err)
			}
			_, err := b.Build()
			tt.check(t, err)
		})
	}
}

func TestBuilderLaneAssignment(t *testing.T) {
	t.Run("across ports", func(t *testing.T) {
		b := newTestBuilder(t)
		addWiredPort(t, b, PortSpec{ID: 9, Name: "eth1/9/1", ControllingPort: 9}, "core0", "eth1/1", 0, 1)
		_, err := b.Build()
		var e *DuplicateLaneAssignmentError
		if !errors.As(err, &e) {
			t.Fatalf("err = %v, want *DuplicateLaneAssignmentError", err)
		}
		if e.Ports != [2]PortID{1, 9} || e.Side != SideSystem || e.Endpoint != (PinEndpoint{"core0", 0}) {
			t.Errorf("error = %+v", *e)
		}
	})

	t.Run("within port", func(t *testing.T) {
		b := newTestBuilder(t)
		if err := b.AddPort(PortSpec{ID: 9, Name: "eth1/9/1", ControllingPort: 9}); err != nil {
			t.Fatalf("AddPort failed: %v", err)
		}
		for _, l := range []int{4, 5} {
			line := PinEndpoint{Chip: "eth1/1", Lane: l}
			if err := b.AddPortPin(9, PinEndpoint{Chip: "core0", Lane: 4}, &line); err != nil {
				t.Fatalf("AddPortPin failed: %v", err)
			}
		}
		_, err := b.Build()
		var e *DuplicateLaneAssignmentError
		if !errors.As(err, &e) || e.Ports != [2]PortID{9, 9} {
			t.Fatalf("err = %v, want duplicate within port 9", err)
		}
	})

	t.Run("xphy hop", func(t *testing.T) {
		b := newTestBuilder(t)
		if err := b.RegisterChip("xphy0", ChipKindXphy, 0); err != nil {
			t.Fatalf("RegisterChip failed: %v", err)
		}
		for i, id := range []PortID{9, 10} {
			if err := b.AddPort(PortSpec{ID: id, ControllingPort: id}); err != nil {
				t.Fatalf("AddPort failed: %v", err)
			}
			pin := PortPin{
				SystemSide: PinEndpoint{Chip: "core0", Lane: 4 + i},
				Junction: &Junction{
					System: PinEndpoint{Chip: "xphy0", Lane: i},
					Line:   PinEndpoint{Chip: "xphy0", Lane: 8},
				},
			}
			if err := b.AddPin(id, pin); err != nil {
				t.Fatalf("AddPin failed: %v", err)
			}
		}
		_, err := b.Build()
		var e *DuplicateLaneAssignmentError
		if !errors.As(err, &e) || e.Side != SideLine || e.Ports != [2]PortID{9, 10} {
			t.Fatalf("err = %v, want xphy line lane wired twice", err)
		}
	})
}

func TestBuilderBreakoutGroups(t *testing.T) {
	tests := []struct {
		name string
		spec PortSpec
		pins []int
		chip string
		port PortID
	}{
		{"gap", PortSpec{ID: 7, ControllingPort: 5}, []int{5}, "core1", 7},
		{"overlap", PortSpec{ID: 7, ControllingPort: 5}, []int{3}, "core1", 7},
		{"chip mismatch", PortSpec{ID: 7, ControllingPort: 5}, []int{4}, "core0", 7},
		{"not contiguous", PortSpec{ID: 9, ControllingPort: 9}, []int{4, 6}, "core0", 9},
		{"controller not self-controlled", PortSpec{ID: 7, ControllingPort: 6}, []int{4}, "core1", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			if err := b.AddPort(tt.spec); err != nil {
				t.Fatalf("AddPort failed: %v", err)
			}
			for _, l := range tt.pins {
				if err := b.AddPortPin(tt.spec.ID, PinEndpoint{Chip: tt.chip, Lane: l}, nil); err != nil {
					t.Fatalf("AddPortPin failed: %v", err)
				}
			}
			_, err := b.Build()
			var e *OverlappingLaneRangeError
			if !errors.As(err, &e) {
				t.Fatalf("err = %v, want *OverlappingLaneRangeError", err)
			}
			if e.Port != tt.port {
				t.Errorf("Port = %d, want %d", e.Port, tt.port)
			}
		})
	}

	t.Run("unknown controlling port", func(t *testing.T) {
		b := newTestBuilder(t)
		if err := b.AddPort(PortSpec{ID: 7, ControllingPort: 42}); err != nil {
			t.Fatalf("AddPort failed: %v", err)
		}
		_, err := b.Build()
		var e *UnknownPortError
		if !errors.As(err, &e) || e.Port != 42 {
			t.Fatalf("err = %v, want unknown port 42", err)
		}
	})
}

func TestBuilderInputErrors(t *testing.T) {
	t.Run("negative lane", func(t *testing.T) {
		b := newTestBuilder(t)
		err := b.AddPortPin(1, PinEndpoint{Chip: "core0", Lane: -1}, nil)
		if !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("pin on unknown port", func(t *testing.T) {
		b := newTestBuilder(t)
		err := b.AddPortPin(42, PinEndpoint{Chip: "core0", Lane: 8}, nil)
		if !errors.Is(err, ErrUnknownPort) {
			t.Errorf("err = %v, want ErrUnknownPort", err)
		}
	})

	t.Run("duplicate port id", func(t *testing.T) {
		b := newTestBuilder(t)
		err := b.AddPort(PortSpec{ID: 1, Name: "eth1/9/1", ControllingPort: 1})
		if !errors.Is(err, ErrDuplicatePort) {
			t.Errorf("err = %v, want ErrDuplicatePort", err)
		}
	})

	t.Run("duplicate port name", func(t *testing.T) {
		b := newTestBuilder(t)
		err := b.AddPort(PortSpec{ID: 9, Name: "eth1/1/1", ControllingPort: 9})
		if !errors.Is(err, ErrDuplicatePort) {
			t.Errorf("err = %v, want ErrDuplicatePort", err)
		}
	})

	t.Run("duplicate profile", func(t *testing.T) {
		b := newTestBuilder(t)
		err := b.RegisterProfile(PlatformProfile{ID: 22, Speed: 100000, NumLanes: 4})
		var e *DuplicateProfileError
		if !errors.As(err, &e) || e.Profile != 22 {
			t.Errorf("err = %v, want duplicate profile 22", err)
		}
	})

	t.Run("zero lane profile", func(t *testing.T) {
		b := NewBuilder()
		err := b.RegisterProfile(PlatformProfile{ID: 1, Speed: 10000})
		if !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
}

func TestBuilderMergeProfile(t *testing.T) {
	b := newTestBuilder(t)
	same := PlatformProfile{ID: 22, Speed: 100000, NumLanes: 4, Modulation: ModulationNRZ, FEC: FECRS528, Medium: MediumOptical}
	if err := b.MergeProfile(same); err != nil {
		t.Fatalf("MergeProfile(identical) failed: %v", err)
	}
	if err := b.MergeProfile(PlatformProfile{ID: 30, Speed: 400000, NumLanes: 8}); err != nil {
		t.Fatalf("MergeProfile(new) failed: %v", err)
	}

	diff := same
	diff.FEC = FECRS544
	if err := b.MergeProfile(diff); !errors.Is(err, ErrDuplicateProfile) {
		t.Errorf("MergeProfile(different) err = %v, want ErrDuplicateProfile", err)
	}
}

func TestBuilderOverrideAbsentIDs(t *testing.T) {
	b := newTestBuilder(t)
	overrides := []PortConfigOverride{
		{Factor: OverrideFactor{Profiles: []ProfileID{77}}, Iphy: []LaneConfig{{Tx: &TxSettings{Main: 7}}}},
		{Factor: OverrideFactor{Ports: []PortID{33, 35, 36}}, Iphy: []LaneConfig{{Tx: &TxSettings{Main: 8}}}},
	}
	for _, o := range overrides {
		if err := b.AddOverride(o); err != nil {
			t.Fatalf("AddOverride failed: %v", err)
		}
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() with overrides naming absent ids failed: %v", err)
	}
	if len(m.Overrides()) != 2 {
		t.Errorf("Overrides() = %d, want 2", len(m.Overrides()))
	}

	s, err := m.ResolveWithOverrides(1, 22, nil)
	if err != nil {
		t.Fatalf("ResolveWithOverrides failed: %v", err)
	}
	for i, lc := range s.Iphy {
		if lc.Tx != nil && (lc.Tx.Main == 7 || lc.Tx.Main == 8) {
			t.Errorf("lane %d took an override for absent ids: %+v", i, lc.Tx)
		}
	}
}

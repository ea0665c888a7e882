package mapping

import (
	"fmt"

	"github.com/newtron-network/lanemap/pkg/util"
)

// State is the lifecycle state of a Builder.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateValidated
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateValidated:
		return "validated"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PortSpec carries the scalar attributes of a port. Pins and supported
// profiles are added separately.
type PortSpec struct {
	ID                    PortID
	Name                  string
	ControllingPort       PortID
	Type                  PortType
	Scope                 Scope
	AttachedCoreID        *int
	AttachedCorePortIndex *int
}

// Builder accumulates chips, profiles and ports and produces an immutable
// Mapping. The first error fails the builder for good; every later call
// returns an error wrapping ErrBuilderFailed and that first error. A
// Builder is single-use and not safe for concurrent use.
type Builder struct {
	state     State
	err       error
	chips     *chipRegistry
	profiles  *profileTable
	ports     *portCatalog
	overrides []PortConfigOverride
}

// NewBuilder returns an empty builder in StateUnloaded.
func NewBuilder() *Builder {
	return &Builder{
		state:    StateUnloaded,
		chips:    newChipRegistry(),
		profiles: newProfileTable(),
		ports:    newPortCatalog(),
	}
}

// State returns the builder's current state.
func (b *Builder) State() State { return b.state }

// Err returns the error that failed the builder, or nil.
func (b *Builder) Err() error { return b.err }

func (b *Builder) begin() error {
	switch b.state {
	case StateFailed:
		return fmt.Errorf("%w: %w", ErrBuilderFailed, b.err)
	case StateReady:
		return ErrBuilderSealed
	case StateUnloaded:
		b.state = StateLoading
	}
	return nil
}

func (b *Builder) fail(err error) error {
	b.state = StateFailed
	b.err = err
	util.WithField("state", b.state.String()).Debugf("platform mapping build failed: %v", err)
	return err
}

// RegisterChip adds a chip to the registry.
func (b *Builder) RegisterChip(name string, kind ChipKind, physicalID int) error {
	if err := b.begin(); err != nil {
		return err
	}
	if name == "" {
		return b.fail(util.NewValidationError("chip name is required"))
	}
	if err := b.chips.register(Chip{Name: name, Kind: kind, PhysicalID: physicalID}); err != nil {
		return b.fail(err)
	}
	util.WithChip(name).Debugf("registered %s chip, physical id %d", kind, physicalID)
	return nil
}

// RegisterProfile adds a profile to the platform profile table.
func (b *Builder) RegisterProfile(p PlatformProfile) error {
	if err := b.begin(); err != nil {
		return err
	}
	if p.NumLanes < 1 {
		return b.fail(util.NewValidationError(fmt.Sprintf("profile %d: num_lanes must be at least 1, got %d", p.ID, p.NumLanes)))
	}
	if err := b.profiles.register(p); err != nil {
		return b.fail(err)
	}
	return nil
}

// MergeProfile is RegisterProfile that accepts a repeat of an identical
// entry. Used when several platform files are loaded into one builder.
func (b *Builder) MergeProfile(p PlatformProfile) error {
	if err := b.begin(); err != nil {
		return err
	}
	if prev, ok := b.profiles.profiles[p.ID]; ok {
		if prev == p {
			return nil
		}
		return b.fail(&DuplicateProfileError{Profile: p.ID})
	}
	return b.RegisterProfile(p)
}

// AddPort adds a port with no pins and no supported profiles.
func (b *Builder) AddPort(spec PortSpec) error {
	if err := b.begin(); err != nil {
		return err
	}
	p := &Port{
		ID:                    spec.ID,
		Name:                  spec.Name,
		ControllingPort:       spec.ControllingPort,
		Type:                  spec.Type,
		Scope:                 spec.Scope,
		SupportedProfiles:     make(map[ProfileID]ProfileLaneSettings),
		AttachedCoreID:        cloneIntPtr(spec.AttachedCoreID),
		AttachedCorePortIndex: cloneIntPtr(spec.AttachedCorePortIndex),
	}
	if err := b.ports.add(p); err != nil {
		return b.fail(err)
	}
	util.WithPort(int(spec.ID), spec.Name).Debug("port added")
	return nil
}

// AddPortPin appends a pin at the port's next lane index. line may be nil.
func (b *Builder) AddPortPin(id PortID, system PinEndpoint, line *PinEndpoint) error {
	pin := PortPin{SystemSide: system}
	if line != nil {
		l := *line
		pin.LineSide = &l
	}
	return b.AddPin(id, pin)
}

// AddPin appends a pin, which may include an external PHY junction, at the
// port's next lane index.
func (b *Builder) AddPin(id PortID, pin PortPin) error {
	if err := b.begin(); err != nil {
		return err
	}
	p, err := b.ports.lookup(id)
	if err != nil {
		return b.fail(err)
	}
	for _, ep := range pin.Endpoints() {
		if ep.Lane < 0 {
			return b.fail(util.NewValidationError(
				fmt.Sprintf("port %d lane %d: negative lane on chip '%s'", id, len(p.Pins), ep.Chip)))
		}
	}
	p.Pins = append(p.Pins, clonePin(pin))
	return nil
}

// AddSupportedProfile records the lane settings port id uses under profile.
func (b *Builder) AddSupportedProfile(id PortID, profile ProfileID, settings ProfileLaneSettings) error {
	if err := b.begin(); err != nil {
		return err
	}
	p, err := b.ports.lookup(id)
	if err != nil {
		return b.fail(err)
	}
	if _, ok := p.SupportedProfiles[profile]; ok {
		return b.fail(util.NewValidationError(fmt.Sprintf("port %d lists profile %d twice", id, profile)))
	}
	p.SupportedProfiles[profile] = cloneSettings(settings)
	return nil
}

// AddOverride appends a port config override. Overrides are matched in the
// order they were added.
func (b *Builder) AddOverride(o PortConfigOverride) error {
	if err := b.begin(); err != nil {
		return err
	}
	b.overrides = append(b.overrides, cloneOverride(o))
	return nil
}

// ValidateAllReferences checks that every chip named by a port pin or a
// per-profile lane id is registered. Build runs it as its first check.
func (b *Builder) ValidateAllReferences() error {
	if err := b.begin(); err != nil {
		return err
	}
	if err := checkPinReferences(b.chips, b.ports); err != nil {
		return b.fail(err)
	}
	if err := checkProfileReferences(b.chips, b.ports); err != nil {
		return b.fail(err)
	}
	return nil
}

// Build validates everything added so far and returns the immutable
// Mapping. On success the builder is sealed.
func (b *Builder) Build() (*Mapping, error) {
	if err := b.ValidateAllReferences(); err != nil {
		return nil, err
	}

	checks := []func() error{
		b.chips.validatePhysicalIDs,
		b.checkPortProfiles,
		b.warnOverrides,
		func() error { return checkPortLanes(b.ports) },
		b.ports.buildGroups,
		func() error { return checkLaneAssignments(b.ports) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, b.fail(err)
		}
	}
	b.state = StateValidated

	m := &Mapping{
		chips:     b.chips,
		profiles:  b.profiles,
		ports:     b.ports,
		lanes:     buildLaneIndex(b.ports),
		overrides: b.overrides,
	}
	b.state = StateReady
	util.WithFields(map[string]interface{}{
		"chips":    len(b.chips.order),
		"ports":    len(b.ports.ports),
		"profiles": len(b.profiles.profiles),
	}).Debug("platform mapping built")
	return m, nil
}

// checkPortProfiles verifies every supported profile of every port against
// the profile table and the port's wiring.
func (b *Builder) checkPortProfiles() error {
	for _, id := range b.ports.ids() {
		p := b.ports.ports[id]
		system, line, transceiverLine := b.portEndpoints(p)
		for _, pid := range p.ProfileIDs() {
			settings := p.SupportedProfiles[pid]
			prof, ok := b.profiles.profiles[pid]
			if !ok {
				portID := id
				return &UnknownProfileError{Profile: pid, Port: &portID}
			}
			if prof.NumLanes > len(p.Pins) {
				return &LaneCountMismatchError{Port: id, Profile: pid, Side: "pins", Got: len(p.Pins), Expected: prof.NumLanes}
			}
			if err := checkLaneCounts(p, pid, prof, settings); err != nil {
				return err
			}
			if transceiverLine && len(settings.Transceiver) == 0 {
				return &LaneCountMismatchError{Port: id, Profile: pid, Side: "transceiver", Got: 0, Expected: prof.NumLanes}
			}
			for _, lc := range settings.Iphy {
				if !system[lc.ID] {
					return &UnwiredLaneError{Port: id, Profile: pid, Side: "iphy", Endpoint: lc.ID}
				}
			}
			for _, lc := range settings.Transceiver {
				if !line[lc.ID] {
					return &UnwiredLaneError{Port: id, Profile: pid, Side: "transceiver", Endpoint: lc.ID}
				}
			}
			for _, sub := range settings.SubsumedPorts {
				if _, ok := b.ports.ports[sub]; !ok {
					return fmt.Errorf("port %d profile %d subsumed port: %w", id, pid, &UnknownPortError{Port: sub})
				}
			}
		}
	}
	return nil
}

// portEndpoints returns the port's system-side and line-side endpoint sets
// and whether any line-side chip is a transceiver.
func (b *Builder) portEndpoints(p *Port) (system, line map[PinEndpoint]bool, transceiverLine bool) {
	system = make(map[PinEndpoint]bool, len(p.Pins))
	line = make(map[PinEndpoint]bool, len(p.Pins))
	for _, pin := range p.Pins {
		system[pin.SystemSide] = true
		if pin.LineSide != nil {
			line[*pin.LineSide] = true
			if c, ok := b.chips.chips[pin.LineSide.Chip]; ok && c.Kind == ChipKindTransceiver {
				transceiverLine = true
			}
		}
	}
	return system, line, transceiverLine
}

// warnOverrides logs override factors that name ports or profiles the
// mapping lacks. Such an override never matches those ids; platform data
// commonly shares one override list across boards with fewer ports.
func (b *Builder) warnOverrides() error {
	for i, o := range b.overrides {
		for _, pid := range o.Factor.Ports {
			if _, ok := b.ports.ports[pid]; !ok {
				util.Debugf("override %d: port %d not in mapping", i, pid)
			}
		}
		for _, prof := range o.Factor.Profiles {
			if _, ok := b.profiles.profiles[prof]; !ok {
				util.Warnf("override %d: profile %d not in the profile table", i, prof)
			}
		}
	}
	return nil
}

// checkLaneCounts compares stored lane lists to the profile's lane count.
// Transceiver lanes may be absent.
func checkLaneCounts(p *Port, pid ProfileID, prof PlatformProfile, s ProfileLaneSettings) error {
	if len(s.Iphy) != prof.NumLanes {
		return &LaneCountMismatchError{Port: p.ID, Profile: pid, Side: "iphy", Got: len(s.Iphy), Expected: prof.NumLanes}
	}
	if len(s.Transceiver) != 0 && len(s.Transceiver) != prof.NumLanes {
		return &LaneCountMismatchError{Port: p.ID, Profile: pid, Side: "transceiver", Got: len(s.Transceiver), Expected: prof.NumLanes}
	}
	return nil
}

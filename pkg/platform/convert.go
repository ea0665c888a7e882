package platform

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/util"
)

// Validate checks the source for shape errors the mapping builder cannot
// see: map keys that are not port or profile ids, and malformed pins. All
// problems are reported together.
func (s *Source) Validate() error {
	v := &util.ValidationBuilder{}

	for _, key := range sortedKeys(s.Ports) {
		port := s.Ports[key]
		id, ok := parseID(key)
		if !ok {
			v.AddErrorf("ports: invalid port id key %q", key)
			continue
		}
		v.Add(id == port.Mapping.ID,
			fmt.Sprintf("ports[%s]: key does not match mapping.id %d", key, port.Mapping.ID))

		for i, pin := range port.Mapping.Pins {
			if _, err := pin.toPortPin(); err != nil {
				v.AddErrorf("ports[%s]: pin %d: %v", key, i, err)
			}
		}
		for _, pkey := range sortedKeys(port.SupportedProfiles) {
			if _, ok := parseID(pkey); !ok {
				v.AddErrorf("ports[%s]: invalid profile id key %q", key, pkey)
			}
		}
	}
	for i, o := range s.PortConfigOverrides {
		if o.Pins != nil && len(o.Pins.Transceiver) > 0 {
			v.AddErrorf("portConfigOverrides[%d]: transceiver pin overrides are not supported", i)
		}
	}

	return v.Build()
}

// parseID accepts a canonical decimal id in [0, MaxInt32]: no sign, no
// leading zeros.
func parseID(key string) (int, bool) {
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt32 || strconv.FormatInt(n, 10) != key {
		return 0, false
	}
	return int(n), true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p SourcePin) toPortPin() (mapping.PortPin, error) {
	pin := mapping.PortPin{SystemSide: p.A.endpoint()}
	if p.Z == nil {
		return pin, nil
	}
	switch {
	case p.Z.End != nil && p.Z.Junction != nil:
		return pin, fmt.Errorf("z has both end and junction")
	case p.Z.End != nil:
		line := p.Z.End.endpoint()
		pin.LineSide = &line
	case p.Z.Junction != nil:
		j := p.Z.Junction
		if len(j.Line) != 1 {
			return pin, fmt.Errorf("junction must have exactly one line connection, has %d", len(j.Line))
		}
		hop := j.Line[0]
		pin.Junction = &mapping.Junction{System: j.System.endpoint(), Line: hop.A.endpoint()}
		if hop.Z != nil {
			if hop.Z.Junction != nil {
				return pin, fmt.Errorf("nested junctions are not supported")
			}
			if hop.Z.End != nil {
				line := hop.Z.End.endpoint()
				pin.LineSide = &line
			}
		}
	}
	return pin, nil
}

func (e SourceEndpoint) endpoint() mapping.PinEndpoint {
	return mapping.PinEndpoint{Chip: e.Chip, Lane: e.Lane}
}

func fromEndpoint(e mapping.PinEndpoint) SourceEndpoint {
	return SourceEndpoint{Chip: e.Chip, Lane: e.Lane}
}

func toLaneConfigs(in []SourceLaneConfig) []mapping.LaneConfig {
	if len(in) == 0 {
		return nil
	}
	out := make([]mapping.LaneConfig, len(in))
	for i, lc := range in {
		out[i] = mapping.LaneConfig{ID: lc.ID.endpoint()}
		if lc.Tx != nil {
			out[i].Tx = &mapping.TxSettings{
				Pre: lc.Tx.Pre, Pre2: lc.Tx.Pre2, Pre3: lc.Tx.Pre3,
				Main: lc.Tx.Main,
				Post: lc.Tx.Post, Post2: lc.Tx.Post2, Post3: lc.Tx.Post3,
				DriveCurrent: lc.Tx.DriveCurrent,
			}
		}
		if lc.Rx != nil {
			out[i].Rx = &mapping.RxSettings{
				CtlCode: lc.Rx.CtlCode, DSPMode: lc.Rx.DSPMode,
				AFETrim: lc.Rx.AFETrim, ACCouplingBypass: lc.Rx.ACCouplingBypass,
			}
		}
	}
	return out
}

func fromLaneConfigs(in []mapping.LaneConfig) []SourceLaneConfig {
	if len(in) == 0 {
		return nil
	}
	out := make([]SourceLaneConfig, len(in))
	for i, lc := range in {
		out[i] = SourceLaneConfig{ID: fromEndpoint(lc.ID)}
		if lc.Tx != nil {
			out[i].Tx = &SourceTx{
				Pre: lc.Tx.Pre, Pre2: lc.Tx.Pre2, Pre3: lc.Tx.Pre3,
				Main: lc.Tx.Main,
				Post: lc.Tx.Post, Post2: lc.Tx.Post2, Post3: lc.Tx.Post3,
				DriveCurrent: lc.Tx.DriveCurrent,
			}
		}
		if lc.Rx != nil {
			out[i].Rx = &SourceRx{
				CtlCode: lc.Rx.CtlCode, DSPMode: lc.Rx.DSPMode,
				AFETrim: lc.Rx.AFETrim, ACCouplingBypass: lc.Rx.ACCouplingBypass,
			}
		}
	}
	return out
}

func (c SourceProfileConfig) toProfile(id mapping.ProfileID) mapping.PlatformProfile {
	return mapping.PlatformProfile{
		ID:            id,
		Speed:         mapping.PortSpeed(c.Speed),
		NumLanes:      c.Iphy.NumLanes,
		Modulation:    mapping.Modulation(c.Iphy.Modulation),
		FEC:           mapping.FECMode(c.Iphy.FEC),
		Medium:        mapping.Medium(c.Iphy.Medium),
		InterfaceType: mapping.InterfaceType(c.Iphy.InterfaceType),
		InterfaceMode: mapping.InterfaceMode(c.Iphy.InterfaceMode),
	}
}

func fromProfile(p mapping.PlatformProfile) SourceProfileConfig {
	return SourceProfileConfig{
		Speed: int(p.Speed),
		Iphy: SourcePhyConfig{
			NumLanes:      p.NumLanes,
			Modulation:    int(p.Modulation),
			FEC:           int(p.FEC),
			Medium:        int(p.Medium),
			InterfaceMode: int(p.InterfaceMode),
			InterfaceType: int(p.InterfaceType),
		},
	}
}

func (f SourceOverrideFactor) toFactor() mapping.OverrideFactor {
	out := mapping.OverrideFactor{
		MediaInterfaceCode:  f.MediaInterfaceCode,
		ManagementInterface: f.TransceiverManagementInterface,
	}
	if f.Ports != nil {
		out.Ports = make([]mapping.PortID, len(*f.Ports))
		for i, p := range *f.Ports {
			out.Ports[i] = mapping.PortID(p)
		}
	}
	if f.Profiles != nil {
		out.Profiles = make([]mapping.ProfileID, len(*f.Profiles))
		for i, p := range *f.Profiles {
			out.Profiles[i] = mapping.ProfileID(p)
		}
	}
	if f.CableLengths != nil {
		lengths := append(make([]float64, 0, len(*f.CableLengths)), *f.CableLengths...)
		out.CableLengths = lengths
	}
	if f.Chips != nil {
		chips := append(make([]string, 0, len(*f.Chips)), *f.Chips...)
		out.Chips = chips
	}
	return out
}

func fromFactor(f mapping.OverrideFactor) SourceOverrideFactor {
	out := SourceOverrideFactor{
		MediaInterfaceCode:             f.MediaInterfaceCode,
		TransceiverManagementInterface: f.ManagementInterface,
	}
	if f.Ports != nil {
		ports := make([]int, len(f.Ports))
		for i, p := range f.Ports {
			ports[i] = int(p)
		}
		out.Ports = &ports
	}
	if f.Profiles != nil {
		profiles := make([]int, len(f.Profiles))
		for i, p := range f.Profiles {
			profiles[i] = int(p)
		}
		out.Profiles = &profiles
	}
	if f.CableLengths != nil {
		lengths := append(make([]float64, 0, len(f.CableLengths)), f.CableLengths...)
		out.CableLengths = &lengths
	}
	if f.Chips != nil {
		chips := append(make([]string, 0, len(f.Chips)), f.Chips...)
		out.Chips = &chips
	}
	return out
}

// ApplyTo validates the source and adds its contents to b. Ports are added
// in ascending id order.
func (s *Source) ApplyTo(b *mapping.Builder) error {
	return s.apply(b, false)
}

// MergeInto is ApplyTo for loading several files into one builder: a
// profile already present with identical fields is skipped.
func (s *Source) MergeInto(b *mapping.Builder) error {
	return s.apply(b, true)
}

func (s *Source) apply(b *mapping.Builder, merge bool) error {
	if err := s.Validate(); err != nil {
		return err
	}

	for _, c := range s.Chips {
		if err := b.RegisterChip(c.Name, mapping.ChipKind(c.Type), c.PhysicalID); err != nil {
			return err
		}
	}
	for _, e := range s.PlatformSupportedProfiles {
		p := e.Profile.toProfile(mapping.ProfileID(e.Factor.ProfileID))
		register := b.RegisterProfile
		if merge {
			register = b.MergeProfile
		}
		if err := register(p); err != nil {
			return err
		}
	}

	ports := make([]SourcePort, 0, len(s.Ports))
	for _, sp := range s.Ports {
		ports = append(ports, sp)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Mapping.ID < ports[j].Mapping.ID })
	for _, sp := range ports {
		if err := sp.apply(b); err != nil {
			return err
		}
	}

	for _, o := range s.PortConfigOverrides {
		override := mapping.PortConfigOverride{Factor: o.Factor.toFactor()}
		if o.Pins != nil {
			override.Iphy = toLaneConfigs(o.Pins.Iphy)
		}
		if o.PortProfileConfig != nil {
			p := o.PortProfileConfig.toProfile(0)
			override.Profile = &p
		}
		if err := b.AddOverride(override); err != nil {
			return err
		}
	}
	return nil
}

func (sp SourcePort) apply(b *mapping.Builder) error {
	m := sp.Mapping
	id := mapping.PortID(m.ID)
	err := b.AddPort(mapping.PortSpec{
		ID:                    id,
		Name:                  m.Name,
		ControllingPort:       mapping.PortID(m.ControllingPort),
		Type:                  mapping.PortType(m.PortType),
		Scope:                 mapping.Scope(m.Scope),
		AttachedCoreID:        m.AttachedCoreID,
		AttachedCorePortIndex: m.AttachedCorePortIndex,
	})
	if err != nil {
		return err
	}
	for _, p := range m.Pins {
		pin, _ := p.toPortPin() // checked by Validate
		if err := b.AddPin(id, pin); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(sp.SupportedProfiles) {
		pid, _ := parseID(key)
		prof := sp.SupportedProfiles[key]
		settings := mapping.ProfileLaneSettings{
			Iphy:        toLaneConfigs(prof.Pins.Iphy),
			Transceiver: toLaneConfigs(prof.Pins.Transceiver),
		}
		if len(prof.SubsumedPorts) > 0 {
			settings.SubsumedPorts = make([]mapping.PortID, len(prof.SubsumedPorts))
			for i, sub := range prof.SubsumedPorts {
				settings.SubsumedPorts[i] = mapping.PortID(sub)
			}
		}
		if err := b.AddSupportedProfile(id, mapping.ProfileID(pid), settings); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the source and returns a Ready mapping.
func (s *Source) Build() (*mapping.Mapping, error) {
	b := mapping.NewBuilder()
	if err := s.ApplyTo(b); err != nil {
		return nil, err
	}
	return b.Build()
}

// FromMapping converts m back into the source shape.
func FromMapping(m *mapping.Mapping) *Source {
	src := &Source{Ports: make(map[string]SourcePort)}

	for _, c := range m.Chips() {
		src.Chips = append(src.Chips, SourceChip{Name: c.Name, Type: int(c.Kind), PhysicalID: c.PhysicalID})
	}
	for _, p := range m.Profiles() {
		src.PlatformSupportedProfiles = append(src.PlatformSupportedProfiles, SourceProfileEntry{
			Factor:  SourceProfileFactor{ProfileID: int(p.ID)},
			Profile: fromProfile(p),
		})
	}

	for _, p := range m.Ports() {
		sp := SourcePort{
			Mapping: SourcePortMapping{
				ID:                    int(p.ID),
				Name:                  p.Name,
				ControllingPort:       int(p.ControllingPort),
				PortType:              int(p.Type),
				Scope:                 int(p.Scope),
				AttachedCoreID:        p.AttachedCoreID,
				AttachedCorePortIndex: p.AttachedCorePortIndex,
			},
			SupportedProfiles: make(map[string]SourcePortProfile, len(p.SupportedProfiles)),
		}
		for _, pin := range p.Pins {
			sp.Mapping.Pins = append(sp.Mapping.Pins, fromPortPin(pin))
		}
		for pid, s := range p.SupportedProfiles {
			pp := SourcePortProfile{
				Pins: SourceProfilePins{
					Iphy:        fromLaneConfigs(s.Iphy),
					Transceiver: fromLaneConfigs(s.Transceiver),
				},
			}
			for _, sub := range s.SubsumedPorts {
				pp.SubsumedPorts = append(pp.SubsumedPorts, int(sub))
			}
			sp.SupportedProfiles[strconv.Itoa(int(pid))] = pp
		}
		src.Ports[strconv.Itoa(int(p.ID))] = sp
	}

	for _, o := range m.Overrides() {
		so := SourceOverride{Factor: fromFactor(o.Factor)}
		if len(o.Iphy) > 0 {
			so.Pins = &SourceProfilePins{Iphy: fromLaneConfigs(o.Iphy)}
		}
		if o.Profile != nil {
			cfg := fromProfile(*o.Profile)
			so.PortProfileConfig = &cfg
		}
		src.PortConfigOverrides = append(src.PortConfigOverrides, so)
	}
	return src
}

func fromPortPin(pin mapping.PortPin) SourcePin {
	sp := SourcePin{A: fromEndpoint(pin.SystemSide)}
	var end *SourceEndpoint
	if pin.LineSide != nil {
		e := fromEndpoint(*pin.LineSide)
		end = &e
	}
	switch {
	case pin.Junction != nil:
		hop := SourcePin{A: fromEndpoint(pin.Junction.Line)}
		if end != nil {
			hop.Z = &SourcePinZ{End: end}
		}
		sp.Z = &SourcePinZ{Junction: &SourceJunction{
			System: fromEndpoint(pin.Junction.System),
			Line:   []SourcePin{hop},
		}}
	case end != nil:
		sp.Z = &SourcePinZ{End: end}
	}
	return sp
}

package mapping

import (
	"fmt"
	"sort"
)

// OverrideFactor selects where a PortConfigOverride applies. A nil list or
// pointer matches anything.
type OverrideFactor struct {
	Ports               []PortID    `json:"ports,omitempty"`
	Profiles            []ProfileID `json:"profiles,omitempty"`
	CableLengths        []float64   `json:"cable_lengths,omitempty"`
	MediaInterfaceCode  *int        `json:"media_interface_code,omitempty"`
	ManagementInterface *int        `json:"management_interface,omitempty"`
	Chips               []string    `json:"chips,omitempty"`
}

// PortConfigOverride replaces iphy tuning and/or the profile descriptor for
// the ports, profiles and media its factor selects.
type PortConfigOverride struct {
	Factor  OverrideFactor   `json:"factor"`
	Iphy    []LaneConfig     `json:"iphy,omitempty"`
	Profile *PlatformProfile `json:"profile,omitempty"`
}

// Factor describes the runtime conditions of a port when it is programmed:
// the plugged cable, the media module, and the chips in the path.
type Factor struct {
	CableLengths        []float64
	MediaInterfaceCode  *int
	ManagementInterface *int
	Chips               []string
}

// matches reports whether the override applies. port is nil for lookups that
// are not tied to one port.
func (f *OverrideFactor) matches(port *PortID, profile ProfileID, rt *Factor) bool {
	if f.Ports != nil {
		if port == nil || !containsPort(f.Ports, *port) {
			return false
		}
	}
	if f.Profiles != nil && !containsProfile(f.Profiles, profile) {
		return false
	}
	if f.CableLengths != nil {
		if rt == nil || rt.CableLengths == nil {
			return false
		}
		for _, l := range rt.CableLengths {
			if !containsFloat(f.CableLengths, l) {
				return false
			}
		}
	}
	if f.MediaInterfaceCode != nil {
		if rt == nil || rt.MediaInterfaceCode == nil || *rt.MediaInterfaceCode != *f.MediaInterfaceCode {
			return false
		}
	}
	if f.ManagementInterface != nil {
		if rt == nil || rt.ManagementInterface == nil || *rt.ManagementInterface != *f.ManagementInterface {
			return false
		}
	}
	if f.Chips != nil {
		if rt == nil || rt.Chips == nil {
			return false
		}
		for _, c := range rt.Chips {
			if !containsString(f.Chips, c) {
				return false
			}
		}
	}
	return true
}

func containsPort(list []PortID, v PortID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsProfile(list []ProfileID, v ProfileID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsFloat(list []float64, v float64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// settingsFor returns the stored lane settings without copying, after
// checking them against the profile table.
func (m *Mapping) settingsFor(id PortID, profile ProfileID) (ProfileLaneSettings, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return ProfileLaneSettings{}, err
	}
	settings, ok := p.SupportedProfiles[profile]
	if !ok {
		return ProfileLaneSettings{}, &UnsupportedProfileError{Port: id, Profile: profile}
	}
	prof, err := m.profiles.lookup(profile)
	if err != nil {
		return ProfileLaneSettings{}, &UnknownProfileError{Profile: profile, Port: &id}
	}
	if err := checkLaneCounts(p, profile, prof, settings); err != nil {
		return ProfileLaneSettings{}, err
	}
	return settings, nil
}

// ResolveProfile returns a copy of the lane settings port id uses under
// profile. Lane order is as given in the platform data.
func (m *Mapping) ResolveProfile(id PortID, profile ProfileID) (ProfileLaneSettings, error) {
	settings, err := m.settingsFor(id, profile)
	if err != nil {
		return ProfileLaneSettings{}, err
	}
	return cloneSettings(settings), nil
}

// ResolveWithOverrides is ResolveProfile with the first matching override's
// iphy tuning applied. Lane ids always come from the port's own settings; a
// single override entry applies to every lane. rt may be nil.
func (m *Mapping) ResolveWithOverrides(id PortID, profile ProfileID, rt *Factor) (ProfileLaneSettings, error) {
	settings, err := m.ResolveProfile(id, profile)
	if err != nil {
		return ProfileLaneSettings{}, err
	}
	for i := range m.overrides {
		o := &m.overrides[i]
		if len(o.Iphy) == 0 || !o.Factor.matches(&id, profile, rt) {
			continue
		}
		if len(o.Iphy) != 1 && len(o.Iphy) != len(settings.Iphy) {
			return ProfileLaneSettings{}, &OverrideLaneMismatchError{
				Port: id, Profile: profile, Got: len(o.Iphy), Expected: len(settings.Iphy),
			}
		}
		lanes := make([]LaneConfig, len(settings.Iphy))
		for j, lc := range settings.Iphy {
			src := o.Iphy[0]
			if len(o.Iphy) > 1 {
				src = o.Iphy[j]
			}
			lanes[j] = LaneConfig{ID: lc.ID}
			if src.Tx != nil {
				lanes[j].Tx = cloneLaneConfigs([]LaneConfig{src})[0].Tx
			}
		}
		settings.Iphy = lanes
		break
	}
	return settings, nil
}

// ProfileFor returns the profile descriptor port id uses under profile: the
// first matching override's descriptor, else the table entry. rt may be nil.
func (m *Mapping) ProfileFor(id PortID, profile ProfileID, rt *Factor) (PlatformProfile, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return PlatformProfile{}, err
	}
	if _, ok := p.SupportedProfiles[profile]; !ok {
		return PlatformProfile{}, &UnsupportedProfileError{Port: id, Profile: profile}
	}
	for i := range m.overrides {
		o := &m.overrides[i]
		if o.Profile != nil && o.Factor.matches(&id, profile, rt) {
			out := *o.Profile
			out.ID = profile
			return out, nil
		}
	}
	return m.profiles.lookup(profile)
}

// CorePinMapping returns the iphy pin list each core chip is programmed
// with for a profile selection. For every controlling port in selection the
// overrides are matched with no port id and the port's iphy chip as the only
// factor; the first match with iphy lanes supplies that chip's list, so
// overrides scoped to ports never apply here. A later port on the same chip
// replaces the earlier result. Non-controlling ports are skipped.
func (m *Mapping) CorePinMapping(selection map[PortID]ProfileID) (map[string][]LaneConfig, error) {
	ids := make([]PortID, 0, len(selection))
	for id := range selection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[string][]LaneConfig)
	for _, id := range ids {
		p, err := m.ports.lookup(id)
		if err != nil {
			return nil, err
		}
		if !p.IsControlling() {
			continue
		}
		chip, err := m.IphyChip(id)
		if err != nil {
			return nil, err
		}
		lanes, err := m.chipIphyPins(chip.Name, selection[id])
		if err != nil {
			return nil, fmt.Errorf("port %d: %w", id, err)
		}
		out[chip.Name] = lanes
	}
	return out, nil
}

// chipIphyPins returns a copy of the first override's iphy list that matches
// chip and profile without a port id.
func (m *Mapping) chipIphyPins(chip string, profile ProfileID) ([]LaneConfig, error) {
	rt := &Factor{Chips: []string{chip}}
	for i := range m.overrides {
		o := &m.overrides[i]
		if len(o.Iphy) > 0 && o.Factor.matches(nil, profile, rt) {
			return cloneLaneConfigs(o.Iphy), nil
		}
	}
	return nil, &NoCorePinsError{Chip: chip, Profile: profile}
}

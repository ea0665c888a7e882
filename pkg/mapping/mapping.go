package mapping

// Mapping is a validated, immutable platform port mapping. All methods are
// safe for concurrent use and return copies.
type Mapping struct {
	chips     *chipRegistry
	profiles  *profileTable
	ports     *portCatalog
	lanes     *laneIndex
	overrides []PortConfigOverride
}

// Summary counts the entities in a mapping.
type Summary struct {
	Chips            int `json:"chips"`
	Ports            int `json:"ports"`
	ControllingPorts int `json:"controlling_ports"`
	Profiles         int `json:"profiles"`
	Overrides        int `json:"overrides"`
}

// Chip returns the chip registered under name.
func (m *Mapping) Chip(name string) (Chip, error) {
	return m.chips.lookup(name)
}

// Chips returns all chips in registration order.
func (m *Mapping) Chips() []Chip {
	return m.chips.list()
}

// Profile returns the platform profile with the given id.
func (m *Mapping) Profile(id ProfileID) (PlatformProfile, error) {
	return m.profiles.lookup(id)
}

// Profiles returns all platform profiles in ascending id order.
func (m *Mapping) Profiles() []PlatformProfile {
	return m.profiles.list()
}

// ProfileIDs returns all platform profile ids in ascending order.
func (m *Mapping) ProfileIDs() []ProfileID {
	return m.profiles.ids()
}

// Overrides returns the port config overrides in match order.
func (m *Mapping) Overrides() []PortConfigOverride {
	out := make([]PortConfigOverride, len(m.overrides))
	for i, o := range m.overrides {
		out[i] = cloneOverride(o)
	}
	return out
}

// Summary returns entity counts.
func (m *Mapping) Summary() Summary {
	return Summary{
		Chips:            len(m.chips.order),
		Ports:            len(m.ports.ports),
		ControllingPorts: len(m.ports.groups),
		Profiles:         len(m.profiles.profiles),
		Overrides:        len(m.overrides),
	}
}

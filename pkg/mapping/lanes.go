package mapping

// laneSlot is one (chip, lane, side) position used for assignment checks.
type laneSlot struct {
	endpoint PinEndpoint
	side     Side
}

// pinSlots returns the endpoints a pin occupies, keyed by side.
func pinSlots(pin PortPin) []laneSlot {
	slots := []laneSlot{{pin.SystemSide, SideSystem}}
	if pin.Junction != nil {
		slots = append(slots,
			laneSlot{pin.Junction.System, SideJunctionSys},
			laneSlot{pin.Junction.Line, SideJunctionLine})
	}
	if pin.LineSide != nil {
		slots = append(slots, laneSlot{*pin.LineSide, SideLine})
	}
	return slots
}

// checkPinReferences reports the first pin endpoint naming an unregistered
// chip, walking ports by id and pins by lane index.
func checkPinReferences(chips *chipRegistry, ports *portCatalog) error {
	for _, id := range ports.ids() {
		for lane, pin := range ports.ports[id].Pins {
			for _, ep := range pin.Endpoints() {
				if !chips.has(ep.Chip) {
					return &DanglingChipReferenceError{Port: id, Lane: lane, Chip: ep.Chip}
				}
			}
		}
	}
	return nil
}

// checkProfileReferences reports the first per-profile lane id naming an
// unregistered chip. Lane is the index within the iphy or transceiver list.
func checkProfileReferences(chips *chipRegistry, ports *portCatalog) error {
	for _, id := range ports.ids() {
		p := ports.ports[id]
		for _, pid := range p.ProfileIDs() {
			settings := p.SupportedProfiles[pid]
			for _, lanes := range [][]LaneConfig{settings.Iphy, settings.Transceiver} {
				for i, lc := range lanes {
					if !chips.has(lc.ID.Chip) {
						return &DanglingChipReferenceError{
							Port: id, Lane: i, Chip: lc.ID.Chip,
							Profile: pid, HasProfile: true,
						}
					}
				}
			}
		}
	}
	return nil
}

// checkPortLanes rejects a port that wires one chip lane twice on one side.
func checkPortLanes(ports *portCatalog) error {
	for _, id := range ports.ids() {
		seen := make(map[laneSlot]bool)
		for _, pin := range ports.ports[id].Pins {
			for _, slot := range pinSlots(pin) {
				key := normalizeSlot(slot)
				if seen[key] {
					return &DuplicateLaneAssignmentError{Endpoint: slot.endpoint, Side: key.side, Ports: [2]PortID{id, id}}
				}
				seen[key] = true
			}
		}
	}
	return nil
}

// checkLaneAssignments rejects a chip lane wired into two ports on one side.
func checkLaneAssignments(ports *portCatalog) error {
	owner := make(map[laneSlot]PortID)
	for _, id := range ports.ids() {
		for _, pin := range ports.ports[id].Pins {
			for _, slot := range pinSlots(pin) {
				key := normalizeSlot(slot)
				if prev, ok := owner[key]; ok && prev != id {
					return &DuplicateLaneAssignmentError{Endpoint: slot.endpoint, Side: key.side, Ports: [2]PortID{prev, id}}
				}
				owner[key] = id
			}
		}
	}
	return nil
}

// normalizeSlot folds the two system-facing sides and the two line-facing
// sides together: an xphy lane is either toward the NPU or toward the media.
func normalizeSlot(s laneSlot) laneSlot {
	switch s.side {
	case SideJunctionSys:
		return laneSlot{s.endpoint, SideSystem}
	case SideJunctionLine:
		return laneSlot{s.endpoint, SideLine}
	}
	return s
}

// laneIndex maps a chip name to every port lane that touches it.
type laneIndex struct {
	byChip map[string][]LaneRef
}

func buildLaneIndex(ports *portCatalog) *laneIndex {
	idx := &laneIndex{byChip: make(map[string][]LaneRef)}
	for _, id := range ports.ids() {
		for lane, pin := range ports.ports[id].Pins {
			sides := make(map[string][]Side)
			var order []string
			for _, slot := range pinSlots(pin) {
				if _, ok := sides[slot.endpoint.Chip]; !ok {
					order = append(order, slot.endpoint.Chip)
				}
				sides[slot.endpoint.Chip] = append(sides[slot.endpoint.Chip], slot.side)
			}
			for _, chip := range order {
				idx.byChip[chip] = append(idx.byChip[chip], LaneRef{
					Port:  id,
					Lane:  lane,
					Pin:   pin,
					Sides: sides[chip],
				})
			}
		}
	}
	return idx
}

// ============================================================================
// Mapping queries
// ============================================================================

// Resolve returns the pin at laneIndex of the given port.
func (m *Mapping) Resolve(id PortID, laneIndex int) (PortPin, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return PortPin{}, err
	}
	if laneIndex < 0 || laneIndex >= len(p.Pins) {
		return PortPin{}, &OutOfRangeError{Port: id, Lane: laneIndex, Lanes: len(p.Pins)}
	}
	return clonePin(p.Pins[laneIndex]), nil
}

// LanesForChip returns every port lane whose pin touches chip on any side,
// ordered by port id then lane index.
func (m *Mapping) LanesForChip(chip string) ([]LaneRef, error) {
	if _, err := m.chips.lookup(chip); err != nil {
		return nil, err
	}
	refs := m.lanes.byChip[chip]
	out := make([]LaneRef, len(refs))
	for i, r := range refs {
		out[i] = LaneRef{
			Port:  r.Port,
			Lane:  r.Lane,
			Pin:   clonePin(r.Pin),
			Sides: append([]Side(nil), r.Sides...),
		}
	}
	return out, nil
}

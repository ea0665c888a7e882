package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/newtron-network/lanemap/pkg/util"
)

// portCatalog holds logical ports by id and by name. groups is filled during
// Build once breakout groups have been validated.
type portCatalog struct {
	ports  map[PortID]*Port
	byName map[string]PortID
	groups map[PortID][]PortID // controlling id -> members by lane offset
}

func newPortCatalog() *portCatalog {
	return &portCatalog{
		ports:  make(map[PortID]*Port),
		byName: make(map[string]PortID),
	}
}

func (c *portCatalog) add(p *Port) error {
	if _, ok := c.ports[p.ID]; ok {
		return &DuplicatePortError{Port: p.ID, Name: p.Name}
	}
	if p.Name != "" {
		if _, ok := c.byName[p.Name]; ok {
			return &DuplicatePortError{Port: p.ID, Name: p.Name}
		}
		c.byName[p.Name] = p.ID
	}
	c.ports[p.ID] = p
	return nil
}

func (c *portCatalog) lookup(id PortID) (*Port, error) {
	p, ok := c.ports[id]
	if !ok {
		return nil, &UnknownPortError{Port: id}
	}
	return p, nil
}

func (c *portCatalog) ids() []PortID {
	ids := make([]PortID, 0, len(c.ports))
	for id := range c.ports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// groupSpan is one member's system-side lane run inside a breakout group.
type groupSpan struct {
	port  PortID
	chip  string
	start int
	end   int // inclusive
}

// buildGroups validates breakout groups and records their members in
// lane-offset order. Ports without pins sort after wired members.
func (c *portCatalog) buildGroups() error {
	members := make(map[PortID][]PortID)
	for _, id := range c.ids() {
		p := c.ports[id]
		cp, ok := c.ports[p.ControllingPort]
		if !ok {
			return fmt.Errorf("port %d controlling port: %w", id, &UnknownPortError{Port: p.ControllingPort})
		}
		if !cp.IsControlling() {
			return &OverlappingLaneRangeError{
				ControllingPort: cp.ID,
				Port:            id,
				Reason:          fmt.Sprintf("controlling port is itself controlled by port %d", cp.ControllingPort),
			}
		}
		members[cp.ID] = append(members[cp.ID], id)
	}

	groups := make(map[PortID][]PortID, len(members))
	for _, cpID := range c.ids() {
		ids, ok := members[cpID]
		if !ok {
			continue
		}
		order, err := c.orderGroup(cpID, ids)
		if err != nil {
			return err
		}
		groups[cpID] = order
	}
	c.groups = groups
	return nil
}

func (c *portCatalog) orderGroup(cpID PortID, ids []PortID) ([]PortID, error) {
	var spans []groupSpan
	var unwired []PortID
	for _, id := range ids {
		p := c.ports[id]
		if len(p.Pins) == 0 {
			unwired = append(unwired, id)
			continue
		}
		chip := p.Pins[0].SystemSide.Chip
		lanes := make([]int, len(p.Pins))
		for i, pin := range p.Pins {
			if pin.SystemSide.Chip != chip {
				return nil, &OverlappingLaneRangeError{
					ControllingPort: cpID,
					Port:            id,
					Reason:          fmt.Sprintf("system lanes span chips '%s' and '%s'", chip, pin.SystemSide.Chip),
				}
			}
			lanes[i] = pin.SystemSide.Lane
		}
		if !util.IsContiguous(lanes) {
			return nil, &OverlappingLaneRangeError{
				ControllingPort: cpID,
				Port:            id,
				Reason:          fmt.Sprintf("system lanes %v are not contiguous", lanes),
			}
		}
		lo, hi := minMax(lanes)
		spans = append(spans, groupSpan{port: id, chip: chip, start: lo, end: hi})
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].port < spans[j].port
	})

	order := make([]PortID, 0, len(ids))
	if len(spans) > 0 {
		next := spans[0].start
		for _, s := range spans {
			switch {
			case s.chip != spans[0].chip:
				return nil, &OverlappingLaneRangeError{
					ControllingPort: cpID,
					Port:            s.port,
					Reason:          fmt.Sprintf("on chip '%s', group is on '%s'", s.chip, spans[0].chip),
				}
			case s.start < next:
				return nil, &OverlappingLaneRangeError{
					ControllingPort: cpID,
					Port:            s.port,
					Reason:          fmt.Sprintf("lane %d overlaps a preceding member", s.start),
				}
			case s.start > next:
				return nil, &OverlappingLaneRangeError{
					ControllingPort: cpID,
					Port:            s.port,
					Reason:          fmt.Sprintf("gap before lane %d, expected %d", s.start, next),
				}
			}
			next = s.end + 1
			order = append(order, s.port)
		}
	}
	return append(order, unwired...), nil
}

func minMax(v []int) (int, int) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

// ============================================================================
// Mapping queries
// ============================================================================

// Port returns a copy of the port with the given id.
func (m *Mapping) Port(id PortID) (Port, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return Port{}, err
	}
	return clonePort(p), nil
}

// PortByName returns a copy of the port with the given name.
func (m *Mapping) PortByName(name string) (Port, error) {
	id, ok := m.ports.byName[name]
	if !ok {
		return Port{}, &UnknownPortError{Name: name}
	}
	return m.Port(id)
}

// PortIDs returns all port ids in ascending order.
func (m *Mapping) PortIDs() []PortID {
	return m.ports.ids()
}

// Ports returns copies of all ports in ascending id order.
func (m *Mapping) Ports() []Port {
	ids := m.ports.ids()
	out := make([]Port, len(ids))
	for i, id := range ids {
		out[i] = clonePort(m.ports.ports[id])
	}
	return out
}

// PortsByControllingID returns the members of the breakout group controlled
// by id, in ascending lane-offset order. The controlling port is included.
func (m *Mapping) PortsByControllingID(id PortID) ([]Port, error) {
	members, ok := m.ports.groups[id]
	if !ok {
		return nil, &UnknownPortError{Port: id}
	}
	out := make([]Port, len(members))
	for i, pid := range members {
		out[i] = clonePort(m.ports.ports[pid])
	}
	return out, nil
}

// ControllingPortIDs returns the ids of ports that control a breakout group.
func (m *Mapping) ControllingPortIDs() []PortID {
	var ids []PortID
	for _, id := range m.ports.ids() {
		if m.ports.ports[id].IsControlling() {
			ids = append(ids, id)
		}
	}
	return ids
}

var portNameRE = regexp.MustCompile(`^eth(\d+)/(\d+)/(\d+)$`)

// PimID returns the PIM number encoded in the port's name,
// eth<pim>/<transceiver>/<lane>.
func (m *Mapping) PimID(id PortID) (int, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return 0, err
	}
	match := portNameRE.FindStringSubmatch(p.Name)
	if match == nil {
		return 0, &InvalidPortNameError{Port: id, Name: p.Name}
	}
	pim, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, &InvalidPortNameError{Port: id, Name: p.Name}
	}
	return pim, nil
}

// IphyChip returns the chip behind the system side of the port's first lane.
func (m *Mapping) IphyChip(id PortID) (Chip, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return Chip{}, err
	}
	if len(p.Pins) == 0 {
		return Chip{}, &OutOfRangeError{Port: id, Lane: 0, Lanes: 0}
	}
	return m.chips.lookup(p.Pins[0].SystemSide.Chip)
}

// MaxSpeed returns the fastest speed among the port's supported profiles,
// with overrides that match the port applied.
func (m *Mapping) MaxSpeed(id PortID) (PortSpeed, error) {
	p, err := m.ports.lookup(id)
	if err != nil {
		return 0, err
	}
	var best PortSpeed
	for _, pid := range p.ProfileIDs() {
		prof, err := m.ProfileFor(id, pid, nil)
		if err != nil {
			return 0, err
		}
		if prof.Speed > best {
			best = prof.Speed
		}
	}
	return best, nil
}

// Package portdb derives SONiC CONFIG_DB PORT entries from a platform mapping
// and publishes them to a switch's Redis.
package portdb

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/util"
)

// PortTable is the CONFIG_DB table name for physical ports.
const PortTable = "PORT"

// PortEntry represents a physical port configuration
type PortEntry struct {
	AdminStatus string `json:"admin_status,omitempty"`
	Alias       string `json:"alias,omitempty"`
	FEC         string `json:"fec,omitempty"`
	Index       string `json:"index,omitempty"`
	Lanes       string `json:"lanes,omitempty"`
	Speed       string `json:"speed,omitempty"`
}

// Fields returns the entry as a Redis hash, omitting empty fields.
func (e PortEntry) Fields() map[string]string {
	fields := make(map[string]string, 6)
	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	set("admin_status", e.AdminStatus)
	set("alias", e.Alias)
	set("fec", e.FEC)
	set("index", e.Index)
	set("lanes", e.Lanes)
	set("speed", e.Speed)
	return fields
}

func portEntryFromFields(vals map[string]string) PortEntry {
	return PortEntry{
		AdminStatus: vals["admin_status"],
		Alias:       vals["alias"],
		FEC:         vals["fec"],
		Index:       vals["index"],
		Lanes:       vals["lanes"],
		Speed:       vals["speed"],
	}
}

// Selection picks the profile each port is programmed with.
type Selection map[mapping.PortID]mapping.ProfileID

// DefaultSelection picks the fastest supported profile of every controlling
// interface port. Ties go to the lower profile id.
func DefaultSelection(m *mapping.Mapping) (Selection, error) {
	sel := make(Selection)
	for _, id := range m.ControllingPortIDs() {
		p, err := m.Port(id)
		if err != nil {
			return nil, err
		}
		if p.Type != mapping.PortTypeInterface {
			continue
		}
		var best mapping.PortSpeed
		found := false
		for _, pid := range p.ProfileIDs() {
			prof, err := m.ProfileFor(id, pid, nil)
			if err != nil {
				return nil, err
			}
			if !found || prof.Speed > best {
				best = prof.Speed
				sel[id] = pid
				found = true
			}
		}
	}
	return sel, nil
}

// ParseSelection parses "port=profile" pairs. Each argument may hold several
// comma-separated pairs. The port may be given by id or by name.
func ParseSelection(m *mapping.Mapping, args []string) (Selection, error) {
	var pairs []string
	for _, arg := range args {
		pairs = append(pairs, util.SplitCommaSeparated(arg)...)
	}
	sel := make(Selection, len(pairs))
	for _, pair := range pairs {
		key, value, ok := util.SplitKeyValue(pair)
		if !ok {
			return nil, fmt.Errorf("invalid selection %q: want port=profile", pair)
		}
		id, err := LookupPort(m, key)
		if err != nil {
			return nil, err
		}
		profile, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid profile id %q in %q", value, pair)
		}
		sel[id] = mapping.ProfileID(profile)
	}
	return sel, nil
}

// LookupPort resolves a port given as a decimal id or a name.
func LookupPort(m *mapping.Mapping, ref string) (mapping.PortID, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if _, err := m.Port(mapping.PortID(n)); err != nil {
			return 0, err
		}
		return mapping.PortID(n), nil
	}
	p, err := m.PortByName(ref)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// FECString maps a FEC mode to the CONFIG_DB fec field value.
func FECString(f mapping.FECMode) string {
	switch {
	case f.IsReedSolomon(), f == mapping.FECCL91:
		return "rs"
	case f == mapping.FECCL74:
		return "fc"
	}
	return "none"
}

// DefaultLanesPerCore is the SerDes lane count of one NPU core on the
// Tomahawk-class ASICs the common platforms use.
const DefaultLanesPerCore = 8

// ErrLaneCollision is returned when two derived entries claim one ASIC lane.
var ErrLaneCollision = errors.New("ASIC lane assigned to more than one port")

// LaneCollisionError names the lane and both ports claiming it.
type LaneCollisionError struct {
	Lane  int
	Ports [2]string
}

func (e *LaneCollisionError) Error() string {
	return fmt.Sprintf("ASIC lane %d used by both %s and %s", e.Lane, e.Ports[0], e.Ports[1])
}

func (e *LaneCollisionError) Unwrap() error { return ErrLaneCollision }

// Options tune how entries are derived.
type Options struct {
	// LanesPerCore numbers ASIC lanes: a core chip's lane l becomes
	// PhysicalID*LanesPerCore + l. Zero means DefaultLanesPerCore.
	LanesPerCore int
}

func (o Options) lanesPerCore() int {
	if o.LanesPerCore <= 0 {
		return DefaultLanesPerCore
	}
	return o.LanesPerCore
}

// ASICLane returns the ASIC-wide SerDes lane number of a core chip lane.
func ASICLane(m *mapping.Mapping, ep mapping.PinEndpoint, lanesPerCore int) (int, error) {
	chip, err := m.Chip(ep.Chip)
	if err != nil {
		return 0, err
	}
	if ep.Lane < 0 || ep.Lane >= lanesPerCore {
		return 0, fmt.Errorf("chip %s lane %d outside %d lanes per core", ep.Chip, ep.Lane, lanesPerCore)
	}
	return chip.PhysicalID*lanesPerCore + ep.Lane, nil
}

// Entries derives a PORT entry, keyed by port name, for every port in sel.
// New entries start admin down. No two entries share an ASIC lane.
func Entries(m *mapping.Mapping, sel Selection, opts Options) (map[string]PortEntry, error) {
	ids := make([]mapping.PortID, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	perCore := opts.lanesPerCore()
	owner := make(map[int]string)
	entries := make(map[string]PortEntry, len(ids))
	for _, id := range ids {
		profileID := sel[id]
		p, err := m.Port(id)
		if err != nil {
			return nil, err
		}
		settings, err := m.ResolveProfile(id, profileID)
		if err != nil {
			return nil, err
		}
		prof, err := m.ProfileFor(id, profileID, nil)
		if err != nil {
			return nil, err
		}
		pim, err := m.PimID(id)
		if err != nil {
			return nil, err
		}

		lanes := make([]int, len(settings.Iphy))
		for i, lc := range settings.Iphy {
			lane, err := ASICLane(m, lc.ID, perCore)
			if err != nil {
				return nil, fmt.Errorf("port %s: %w", p.Name, err)
			}
			if other, ok := owner[lane]; ok {
				return nil, &LaneCollisionError{Lane: lane, Ports: [2]string{other, p.Name}}
			}
			owner[lane] = p.Name
			lanes[i] = lane
		}
		entries[p.Name] = PortEntry{
			AdminStatus: "down",
			Alias:       p.Name,
			FEC:         FECString(prof.FEC),
			Index:       strconv.Itoa(pim),
			Lanes:       util.JoinInts(lanes),
			Speed:       strconv.Itoa(int(prof.Speed)),
		}
		util.WithPort(int(id), p.Name).Debugf("derived PORT entry with profile %d", profileID)
	}
	return entries, nil
}

// Change is one entry whose stored value differs from the derived one.
// Current is nil when the entry does not exist yet. Remove marks a stored
// entry the mapping no longer derives.
type Change struct {
	Name    string
	Current *PortEntry
	Desired PortEntry
	Remove  bool `json:",omitempty"`
}

// DiffEntries compares derived entries against stored ones and returns the
// entries that must be written, sorted by name. An existing entry keeps its
// stored admin_status.
func DiffEntries(current, desired map[string]PortEntry) []Change {
	names := make([]string, 0, len(desired))
	for name := range desired {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []Change
	for _, name := range names {
		want := desired[name]
		have, ok := current[name]
		if !ok {
			changes = append(changes, Change{Name: name, Desired: want})
			continue
		}
		want.AdminStatus = have.AdminStatus
		if have != want {
			h := have
			changes = append(changes, Change{Name: name, Current: &h, Desired: want})
		}
	}
	return changes
}

// StaleEntries returns removals for stored entries absent from desired,
// sorted by name.
func StaleEntries(current, desired map[string]PortEntry) []Change {
	var changes []Change
	for name, have := range current {
		if _, ok := desired[name]; ok {
			continue
		}
		h := have
		changes = append(changes, Change{Name: name, Current: &h, Remove: true})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}

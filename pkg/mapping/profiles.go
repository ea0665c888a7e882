package mapping

import "sort"

// profileTable is the platform-wide profile id -> descriptor table.
type profileTable struct {
	profiles map[ProfileID]PlatformProfile
}

func newProfileTable() *profileTable {
	return &profileTable{profiles: make(map[ProfileID]PlatformProfile)}
}

func (t *profileTable) register(p PlatformProfile) error {
	if _, ok := t.profiles[p.ID]; ok {
		return &DuplicateProfileError{Profile: p.ID}
	}
	t.profiles[p.ID] = p
	return nil
}

func (t *profileTable) lookup(id ProfileID) (PlatformProfile, error) {
	p, ok := t.profiles[id]
	if !ok {
		return PlatformProfile{}, &UnknownProfileError{Profile: id}
	}
	return p, nil
}

func (t *profileTable) ids() []ProfileID {
	ids := make([]ProfileID, 0, len(t.profiles))
	for id := range t.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *profileTable) list() []PlatformProfile {
	ids := t.ids()
	out := make([]PlatformProfile, len(ids))
	for i, id := range ids {
		out[i] = t.profiles[id]
	}
	return out
}

func sortedProfileIDs(m map[ProfileID]ProfileLaneSettings) []ProfileID {
	ids := make([]ProfileID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

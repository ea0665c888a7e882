package mapping

// chipRegistry holds chip identities keyed by name. It is mutated only by a
// Builder; a built Mapping shares it read-only.
type chipRegistry struct {
	chips map[string]Chip
	order []string // registration order
}

func newChipRegistry() *chipRegistry {
	return &chipRegistry{chips: make(map[string]Chip)}
}

func (r *chipRegistry) register(c Chip) error {
	if _, ok := r.chips[c.Name]; ok {
		return &DuplicateChipError{Name: c.Name}
	}
	r.chips[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

func (r *chipRegistry) lookup(name string) (Chip, error) {
	c, ok := r.chips[name]
	if !ok {
		return Chip{}, &UnknownChipError{Name: name}
	}
	return c, nil
}

func (r *chipRegistry) has(name string) bool {
	_, ok := r.chips[name]
	return ok
}

func (r *chipRegistry) list() []Chip {
	out := make([]Chip, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.chips[name])
	}
	return out
}

// validatePhysicalIDs checks that no two chips of one kind share a physical
// id. Registration order decides which pair is reported.
func (r *chipRegistry) validatePhysicalIDs() error {
	type key struct {
		kind ChipKind
		id   int
	}
	seen := make(map[key]string, len(r.order))
	for _, name := range r.order {
		c := r.chips[name]
		k := key{c.Kind, c.PhysicalID}
		if prev, ok := seen[k]; ok {
			return &ConflictingPhysicalIDError{
				Kind:       c.Kind,
				PhysicalID: c.PhysicalID,
				Chips:      [2]string{prev, name},
			}
		}
		seen[k] = name
	}
	return nil
}

package mapping

func clonePin(p PortPin) PortPin {
	out := PortPin{SystemSide: p.SystemSide}
	if p.Junction != nil {
		j := *p.Junction
		out.Junction = &j
	}
	if p.LineSide != nil {
		l := *p.LineSide
		out.LineSide = &l
	}
	return out
}

func cloneLaneConfigs(in []LaneConfig) []LaneConfig {
	if in == nil {
		return nil
	}
	out := make([]LaneConfig, len(in))
	for i, lc := range in {
		out[i] = LaneConfig{ID: lc.ID}
		if lc.Tx != nil {
			tx := *lc.Tx
			if lc.Tx.DriveCurrent != nil {
				dc := *lc.Tx.DriveCurrent
				tx.DriveCurrent = &dc
			}
			out[i].Tx = &tx
		}
		if lc.Rx != nil {
			rx := *lc.Rx
			out[i].Rx = &rx
		}
	}
	return out
}

func cloneSettings(s ProfileLaneSettings) ProfileLaneSettings {
	out := ProfileLaneSettings{
		Iphy:        cloneLaneConfigs(s.Iphy),
		Transceiver: cloneLaneConfigs(s.Transceiver),
	}
	if s.SubsumedPorts != nil {
		out.SubsumedPorts = append([]PortID(nil), s.SubsumedPorts...)
	}
	return out
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func clonePort(p *Port) Port {
	out := *p
	out.Pins = nil
	if p.Pins != nil {
		out.Pins = make([]PortPin, len(p.Pins))
		for i, pin := range p.Pins {
			out.Pins[i] = clonePin(pin)
		}
	}
	out.SupportedProfiles = make(map[ProfileID]ProfileLaneSettings, len(p.SupportedProfiles))
	for id, s := range p.SupportedProfiles {
		out.SupportedProfiles[id] = cloneSettings(s)
	}
	out.AttachedCoreID = cloneIntPtr(p.AttachedCoreID)
	out.AttachedCorePortIndex = cloneIntPtr(p.AttachedCorePortIndex)
	return out
}

func cloneProfilePtr(p *PlatformProfile) *PlatformProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneOverride(o PortConfigOverride) PortConfigOverride {
	out := PortConfigOverride{
		Factor:  cloneFactor(o.Factor),
		Iphy:    cloneLaneConfigs(o.Iphy),
		Profile: cloneProfilePtr(o.Profile),
	}
	return out
}

func cloneFactor(f OverrideFactor) OverrideFactor {
	out := OverrideFactor{
		MediaInterfaceCode:  cloneIntPtr(f.MediaInterfaceCode),
		ManagementInterface: cloneIntPtr(f.ManagementInterface),
	}
	// An empty non-nil list matches nothing and must stay non-nil.
	if f.Ports != nil {
		out.Ports = make([]PortID, len(f.Ports))
		copy(out.Ports, f.Ports)
	}
	if f.Profiles != nil {
		out.Profiles = make([]ProfileID, len(f.Profiles))
		copy(out.Profiles, f.Profiles)
	}
	if f.CableLengths != nil {
		out.CableLengths = make([]float64, len(f.CableLengths))
		copy(out.CableLengths, f.CableLengths)
	}
	if f.Chips != nil {
		out.Chips = make([]string, len(f.Chips))
		copy(out.Chips, f.Chips)
	}
	return out
}

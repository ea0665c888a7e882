// Package mapping models a switch platform's port mapping: the chips on the
// board, the wiring between NPU SerDes lanes and front-panel transceiver
// lanes, and the per-profile lane settings used when a port is programmed.
//
// A Mapping is assembled with a Builder and is immutable once Build returns.
package mapping

import (
	"fmt"
	"strconv"
)

// PortID identifies a logical port. Stable across reloads of the same data.
type PortID int

// ProfileID identifies a speed profile in the platform profile table.
type ProfileID int

// PortSpeed is a port speed in Mbps, as carried in platform data.
type PortSpeed int

// Bps returns the speed in bits per second.
func (s PortSpeed) Bps() int64 {
	return int64(s) * 1_000_000
}

func (s PortSpeed) String() string {
	switch {
	case s <= 0:
		return "default"
	case s%1000 == 0:
		return strconv.Itoa(int(s)/1000) + "G"
	default:
		return strconv.FormatFloat(float64(s)/1000, 'f', -1, 64) + "G"
	}
}

// ============================================================================
// Enumerations
// ============================================================================

// ChipKind is the role of a data-plane chip. Values match the numeric codes
// used in platform data.
type ChipKind int

const (
	ChipKindOther       ChipKind = 0
	ChipKindAsicCore    ChipKind = 1 // NPU SerDes core (iphy)
	ChipKindXphy        ChipKind = 2 // external PHY / gearbox
	ChipKindTransceiver ChipKind = 3
	ChipKindBackplane   ChipKind = 4
)

func (k ChipKind) String() string {
	switch k {
	case ChipKindOther:
		return "other"
	case ChipKindAsicCore:
		return "asic-core"
	case ChipKindXphy:
		return "xphy"
	case ChipKindTransceiver:
		return "transceiver"
	case ChipKindBackplane:
		return "backplane"
	}
	return fmt.Sprintf("chip-type(%d)", int(k))
}

// PortType classifies a port's function.
type PortType int

const (
	PortTypeInterface   PortType = 0
	PortTypeFabric      PortType = 1
	PortTypeRecycle     PortType = 2
	PortTypeManagement  PortType = 3
	PortTypeEventor     PortType = 4
	PortTypeCPU         PortType = 5
	PortTypeHyper       PortType = 6
	PortTypeHyperMember PortType = 7
)

var portTypeNames = map[PortType]string{
	PortTypeInterface:   "interface",
	PortTypeFabric:      "fabric",
	PortTypeRecycle:     "recycle",
	PortTypeManagement:  "management",
	PortTypeEventor:     "eventor",
	PortTypeCPU:         "cpu",
	PortTypeHyper:       "hyper",
	PortTypeHyperMember: "hyper-member",
}

func (t PortType) String() string {
	if name, ok := portTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("port-type(%d)", int(t))
}

// Scope is the visibility of a port in multi-switch systems.
type Scope int

const (
	ScopeLocal  Scope = 0
	ScopeGlobal Scope = 1
)

func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Modulation is the SerDes line coding.
type Modulation int

const (
	ModulationUnset Modulation = 0
	ModulationNRZ   Modulation = 1
	ModulationPAM4  Modulation = 2
)

func (m Modulation) String() string {
	switch m {
	case ModulationUnset:
		return "-"
	case ModulationNRZ:
		return "NRZ"
	case ModulationPAM4:
		return "PAM4"
	}
	return fmt.Sprintf("modulation(%d)", int(m))
}

// FECMode is the forward-error-correction mode of a profile.
type FECMode int

const (
	FECUnset    FECMode = 0
	FECNone     FECMode = 1
	FECRS544x2N FECMode = 11
	FECCL74     FECMode = 74
	FECCL91     FECMode = 91
	FECRS528    FECMode = 528
	FECRS544    FECMode = 544
	FECRS545    FECMode = 545
)

var fecNames = map[FECMode]string{
	FECUnset:    "-",
	FECNone:     "NONE",
	FECRS544x2N: "RS544_2N",
	FECCL74:     "CL74",
	FECCL91:     "CL91",
	FECRS528:    "RS528",
	FECRS544:    "RS544",
	FECRS545:    "RS545",
}

func (f FECMode) String() string {
	if name, ok := fecNames[f]; ok {
		return name
	}
	return fmt.Sprintf("fec(%d)", int(f))
}

// IsReedSolomon reports whether f is one of the RS FEC family.
func (f FECMode) IsReedSolomon() bool {
	switch f {
	case FECRS528, FECRS544, FECRS544x2N, FECRS545:
		return true
	}
	return false
}

// Medium is the transmitter technology a profile targets.
type Medium int

const (
	MediumUnknown   Medium = 0
	MediumCopper    Medium = 1
	MediumOptical   Medium = 2
	MediumBackplane Medium = 3
)

func (m Medium) String() string {
	switch m {
	case MediumUnknown:
		return "unknown"
	case MediumCopper:
		return "copper"
	case MediumOptical:
		return "optical"
	case MediumBackplane:
		return "backplane"
	}
	return fmt.Sprintf("medium(%d)", int(m))
}

// InterfaceType is an opaque electrical interface code (KR4, CR4, SR4, ...)
// carried through from platform data unchanged.
type InterfaceType int

// InterfaceMode is an opaque interface mode code carried through unchanged.
type InterfaceMode int

// ============================================================================
// Chips, pins, ports
// ============================================================================

// Chip is a data-plane chip on the platform.
type Chip struct {
	Name       string   `json:"name"`
	Kind       ChipKind `json:"kind"`
	PhysicalID int      `json:"physical_id"`
}

// PinEndpoint names one lane on one chip. It refers to a Chip by name.
type PinEndpoint struct {
	Chip string `json:"chip"`
	Lane int    `json:"lane"`
}

func (e PinEndpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Chip, e.Lane)
}

// Junction is an external PHY hop between the system side and the line side.
type Junction struct {
	System PinEndpoint `json:"system"`
	Line   PinEndpoint `json:"line"`
}

// PortPin is one SerDes lane pairing of a port. Position in Port.Pins is the
// lane index within the port.
type PortPin struct {
	SystemSide PinEndpoint  `json:"system_side"`
	Junction   *Junction    `json:"junction,omitempty"`
	LineSide   *PinEndpoint `json:"line_side,omitempty"` // nil for ports with no line side
}

// Endpoints returns every endpoint the pin touches, system side first.
func (p PortPin) Endpoints() []PinEndpoint {
	eps := []PinEndpoint{p.SystemSide}
	if p.Junction != nil {
		eps = append(eps, p.Junction.System, p.Junction.Line)
	}
	if p.LineSide != nil {
		eps = append(eps, *p.LineSide)
	}
	return eps
}

// TxSettings are SerDes transmit equalization taps. Values are fixed-point
// signed integers as programmed into the PHY.
type TxSettings struct {
	Pre          int  `json:"pre"`
	Pre2         int  `json:"pre2"`
	Pre3         int  `json:"pre3"`
	Main         int  `json:"main"`
	Post         int  `json:"post"`
	Post2        int  `json:"post2"`
	Post3        int  `json:"post3"`
	DriveCurrent *int `json:"drive_current,omitempty"`
}

// RxSettings are SerDes receive tuning values.
type RxSettings struct {
	CtlCode          int `json:"ctl_code"`
	DSPMode          int `json:"dsp_mode"`
	AFETrim          int `json:"afe_trim"`
	ACCouplingBypass int `json:"ac_coupling_bypass"`
}

// LaneConfig is the per-lane configuration of a port under one profile.
// Tx nil means the transceiver/media default applies.
type LaneConfig struct {
	ID PinEndpoint `json:"id"`
	Tx *TxSettings `json:"tx,omitempty"`
	Rx *RxSettings `json:"rx,omitempty"`
}

// ProfileLaneSettings are the lanes a port uses under one profile. Iphy[i]
// and Transceiver[i] describe the same lane.
type ProfileLaneSettings struct {
	Iphy          []LaneConfig `json:"iphy"`
	Transceiver   []LaneConfig `json:"transceiver,omitempty"`
	SubsumedPorts []PortID     `json:"subsumed_ports,omitempty"`
}

// Port is one logical port and everything the platform data says about it.
type Port struct {
	ID                    PortID                            `json:"id"`
	Name                  string                            `json:"name"`
	ControllingPort       PortID                            `json:"controlling_port"`
	Type                  PortType                          `json:"port_type"`
	Scope                 Scope                             `json:"scope"`
	Pins                  []PortPin                         `json:"pins"`
	SupportedProfiles     map[ProfileID]ProfileLaneSettings `json:"supported_profiles"`
	AttachedCoreID        *int                              `json:"attached_core_id,omitempty"`
	AttachedCorePortIndex *int                              `json:"attached_core_port_index,omitempty"`
}

// IsControlling reports whether p controls its own breakout group.
func (p *Port) IsControlling() bool {
	return p.ID == p.ControllingPort
}

// ProfileIDs returns the port's supported profile ids in ascending order.
func (p *Port) ProfileIDs() []ProfileID {
	return sortedProfileIDs(p.SupportedProfiles)
}

// PlatformProfile describes a speed profile shared by all ports.
type PlatformProfile struct {
	ID            ProfileID     `json:"id"`
	Speed         PortSpeed     `json:"speed"`
	NumLanes      int           `json:"num_lanes"`
	Modulation    Modulation    `json:"modulation"`
	FEC           FECMode       `json:"fec"`
	Medium        Medium        `json:"medium"`
	InterfaceType InterfaceType `json:"interface_type"`
	InterfaceMode InterfaceMode `json:"interface_mode"`
}

// SpeedBps returns the profile speed in bits per second.
func (p PlatformProfile) SpeedBps() int64 {
	return p.Speed.Bps()
}

func (p PlatformProfile) String() string {
	return fmt.Sprintf("%s/%d/%s/%s/%s", p.Speed, p.NumLanes, p.Modulation, p.FEC, p.Medium)
}

// LaneRef locates one lane of one port.
type LaneRef struct {
	Port  PortID  `json:"port"`
	Lane  int     `json:"lane"`
	Pin   PortPin `json:"pin"`
	Sides []Side  `json:"sides"`
}

// Side names where on a pin a chip appears.
type Side string

const (
	SideSystem       Side = "system"
	SideJunctionSys  Side = "xphy-system"
	SideJunctionLine Side = "xphy-line"
	SideLine         Side = "line"
)

// Package platform decodes declarative platform mapping files into a
// mapping.Mapping and encodes a Mapping back into the same shape.
package platform

// Source is the top-level shape of a platform mapping file.
type Source struct {
	Ports                     map[string]SourcePort `json:"ports" yaml:"ports"`
	Chips                     []SourceChip          `json:"chips" yaml:"chips"`
	PortConfigOverrides       []SourceOverride      `json:"portConfigOverrides,omitempty" yaml:"portConfigOverrides,omitempty"`
	PlatformSupportedProfiles []SourceProfileEntry  `json:"platformSupportedProfiles" yaml:"platformSupportedProfiles"`
}

// SourceChip is one entry of the chips list.
type SourceChip struct {
	Name       string `json:"name" yaml:"name"`
	Type       int    `json:"type" yaml:"type"`
	PhysicalID int    `json:"physicalID" yaml:"physicalID"`
}

// SourcePort is one entry of the ports map, keyed by decimal port id.
type SourcePort struct {
	Mapping           SourcePortMapping            `json:"mapping" yaml:"mapping"`
	SupportedProfiles map[string]SourcePortProfile `json:"supportedProfiles" yaml:"supportedProfiles"`
}

type SourcePortMapping struct {
	ID                    int         `json:"id" yaml:"id"`
	Name                  string      `json:"name" yaml:"name"`
	ControllingPort       int         `json:"controllingPort" yaml:"controllingPort"`
	Pins                  []SourcePin `json:"pins" yaml:"pins"`
	PortType              int         `json:"portType,omitempty" yaml:"portType,omitempty"`
	Scope                 int         `json:"scope,omitempty" yaml:"scope,omitempty"`
	AttachedCoreID        *int        `json:"attachedCoreId,omitempty" yaml:"attachedCoreId,omitempty"`
	AttachedCorePortIndex *int        `json:"attachedCorePortIndex,omitempty" yaml:"attachedCorePortIndex,omitempty"`
}

// SourcePin is one lane of a port: a is the NPU side, z is either a
// transceiver end or an external PHY junction.
type SourcePin struct {
	A SourceEndpoint `json:"a" yaml:"a"`
	Z *SourcePinZ    `json:"z,omitempty" yaml:"z,omitempty"`
}

type SourcePinZ struct {
	End      *SourceEndpoint `json:"end,omitempty" yaml:"end,omitempty"`
	Junction *SourceJunction `json:"junction,omitempty" yaml:"junction,omitempty"`
}

// SourceJunction is an xphy hop. Line must hold exactly one connection.
type SourceJunction struct {
	System SourceEndpoint `json:"system" yaml:"system"`
	Line   []SourcePin    `json:"line" yaml:"line"`
}

type SourceEndpoint struct {
	Chip string `json:"chip" yaml:"chip"`
	Lane int    `json:"lane" yaml:"lane"`
}

// SourcePortProfile is a port's lane settings under one profile, keyed by
// decimal profile id.
type SourcePortProfile struct {
	SubsumedPorts []int             `json:"subsumedPorts,omitempty" yaml:"subsumedPorts,omitempty"`
	Pins          SourceProfilePins `json:"pins" yaml:"pins"`
}

type SourceProfilePins struct {
	Iphy        []SourceLaneConfig `json:"iphy,omitempty" yaml:"iphy,omitempty"`
	Transceiver []SourceLaneConfig `json:"transceiver,omitempty" yaml:"transceiver,omitempty"`
}

type SourceLaneConfig struct {
	ID SourceEndpoint `json:"id" yaml:"id"`
	Tx *SourceTx      `json:"tx,omitempty" yaml:"tx,omitempty"`
	Rx *SourceRx      `json:"rx,omitempty" yaml:"rx,omitempty"`
}

type SourceTx struct {
	Pre          int  `json:"pre" yaml:"pre"`
	Pre2         int  `json:"pre2" yaml:"pre2"`
	Pre3         int  `json:"pre3,omitempty" yaml:"pre3,omitempty"`
	Main         int  `json:"main" yaml:"main"`
	Post         int  `json:"post" yaml:"post"`
	Post2        int  `json:"post2" yaml:"post2"`
	Post3        int  `json:"post3" yaml:"post3"`
	DriveCurrent *int `json:"driveCurrent,omitempty" yaml:"driveCurrent,omitempty"`
}

type SourceRx struct {
	CtlCode          int `json:"ctlCode" yaml:"ctlCode"`
	DSPMode          int `json:"dspMode" yaml:"dspMode"`
	AFETrim          int `json:"afeTrim" yaml:"afeTrim"`
	ACCouplingBypass int `json:"acCouplingBypass" yaml:"acCouplingBypass"`
}

// SourceProfileEntry is one entry of platformSupportedProfiles.
type SourceProfileEntry struct {
	Factor  SourceProfileFactor `json:"factor" yaml:"factor"`
	Profile SourceProfileConfig `json:"profile" yaml:"profile"`
}

type SourceProfileFactor struct {
	ProfileID int `json:"profileID" yaml:"profileID"`
}

type SourceProfileConfig struct {
	Speed int             `json:"speed" yaml:"speed"`
	Iphy  SourcePhyConfig `json:"iphy" yaml:"iphy"`
}

type SourcePhyConfig struct {
	NumLanes      int `json:"numLanes" yaml:"numLanes"`
	Modulation    int `json:"modulation" yaml:"modulation"`
	FEC           int `json:"fec" yaml:"fec"`
	Medium        int `json:"medium,omitempty" yaml:"medium,omitempty"`
	InterfaceMode int `json:"interfaceMode,omitempty" yaml:"interfaceMode,omitempty"`
	InterfaceType int `json:"interfaceType,omitempty" yaml:"interfaceType,omitempty"`
}

// SourceOverride is one entry of portConfigOverrides. Factor lists are
// pointers: an absent list matches anything, an empty one matches nothing.
type SourceOverride struct {
	Factor            SourceOverrideFactor `json:"factor" yaml:"factor"`
	Pins              *SourceProfilePins   `json:"pins,omitempty" yaml:"pins,omitempty"`
	PortProfileConfig *SourceProfileConfig `json:"portProfileConfig,omitempty" yaml:"portProfileConfig,omitempty"`
}

type SourceOverrideFactor struct {
	Ports                          *[]int     `json:"ports,omitempty" yaml:"ports,omitempty"`
	Profiles                       *[]int     `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	CableLengths                   *[]float64 `json:"cableLengths,omitempty" yaml:"cableLengths,omitempty"`
	MediaInterfaceCode             *int       `json:"mediaInterfaceCode,omitempty" yaml:"mediaInterfaceCode,omitempty"`
	TransceiverManagementInterface *int       `json:"transceiverManagementInterface,omitempty" yaml:"transceiverManagementInterface,omitempty"`
	Chips                          *[]string  `json:"chips,omitempty" yaml:"chips,omitempty"`
}

package mapping

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below unwraps to one of these so
// callers can test with errors.Is without caring about the context fields.
var (
	ErrDuplicateChip           = errors.New("duplicate chip")
	ErrUnknownChip             = errors.New("unknown chip")
	ErrConflictingPhysicalID   = errors.New("conflicting physical id")
	ErrDanglingChipReference   = errors.New("dangling chip reference")
	ErrUnknownPort             = errors.New("unknown port")
	ErrDuplicatePort           = errors.New("duplicate port")
	ErrOverlappingLaneRange    = errors.New("overlapping lane range")
	ErrUnsupportedProfile      = errors.New("unsupported profile")
	ErrLaneCountMismatch       = errors.New("lane count mismatch")
	ErrUnknownProfile          = errors.New("unknown profile")
	ErrDuplicateProfile        = errors.New("duplicate profile")
	ErrOutOfRange              = errors.New("lane index out of range")
	ErrDuplicateLaneAssignment = errors.New("duplicate lane assignment")
	ErrUnwiredLane             = errors.New("lane not wired to port")
	ErrOverrideLaneMismatch    = errors.New("override lane count mismatch")
	ErrInvalidPortName         = errors.New("invalid port name")
	ErrNoCorePins              = errors.New("no iphy pins for core chip")

	ErrBuilderFailed = errors.New("platform mapping build failed")
	ErrBuilderSealed = errors.New("platform mapping already built")
)

// DuplicateChipError is returned when a chip name is registered twice.
type DuplicateChipError struct {
	Name string
}

func (e *DuplicateChipError) Error() string {
	return fmt.Sprintf("chip '%s' already registered", e.Name)
}

func (e *DuplicateChipError) Unwrap() error { return ErrDuplicateChip }

// UnknownChipError is returned by chip lookups that miss.
type UnknownChipError struct {
	Name string
}

func (e *UnknownChipError) Error() string {
	return fmt.Sprintf("chip '%s' not found", e.Name)
}

func (e *UnknownChipError) Unwrap() error { return ErrUnknownChip }

// ConflictingPhysicalIDError is returned when two chips of one kind claim the
// same physical id.
type ConflictingPhysicalIDError struct {
	Kind       ChipKind
	PhysicalID int
	Chips      [2]string
}

func (e *ConflictingPhysicalIDError) Error() string {
	return fmt.Sprintf("chips '%s' and '%s' share %s physical id %d",
		e.Chips[0], e.Chips[1], e.Kind, e.PhysicalID)
}

func (e *ConflictingPhysicalIDError) Unwrap() error { return ErrConflictingPhysicalID }

// DanglingChipReferenceError names a pin or lane config that references a
// chip that is not registered. Profile is zero with HasProfile false for
// port pins.
type DanglingChipReferenceError struct {
	Port       PortID
	Lane       int
	Chip       string
	Profile    ProfileID
	HasProfile bool
}

func (e *DanglingChipReferenceError) Error() string {
	if e.HasProfile {
		return fmt.Sprintf("port %d profile %d lane %d references unknown chip '%s'",
			e.Port, e.Profile, e.Lane, e.Chip)
	}
	return fmt.Sprintf("port %d lane %d references unknown chip '%s'", e.Port, e.Lane, e.Chip)
}

func (e *DanglingChipReferenceError) Unwrap() error { return ErrDanglingChipReference }

// UnknownPortError is returned for port lookups that miss. Name is set when
// the lookup was by name.
type UnknownPortError struct {
	Port PortID
	Name string
}

func (e *UnknownPortError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("port '%s' not found", e.Name)
	}
	return fmt.Sprintf("port %d not found", e.Port)
}

func (e *UnknownPortError) Unwrap() error { return ErrUnknownPort }

// DuplicatePortError is returned when a port id or name is added twice.
type DuplicatePortError struct {
	Port PortID
	Name string
}

func (e *DuplicatePortError) Error() string {
	return fmt.Sprintf("port %d ('%s') already defined", e.Port, e.Name)
}

func (e *DuplicatePortError) Unwrap() error { return ErrDuplicatePort }

// OverlappingLaneRangeError reports a breakout group whose member ports do
// not partition a contiguous lane range.
type OverlappingLaneRangeError struct {
	ControllingPort PortID
	Port            PortID
	Reason          string
}

func (e *OverlappingLaneRangeError) Error() string {
	return fmt.Sprintf("controlling port %d: port %d: %s", e.ControllingPort, e.Port, e.Reason)
}

func (e *OverlappingLaneRangeError) Unwrap() error { return ErrOverlappingLaneRange }

// UnsupportedProfileError is returned when a port does not list a profile.
type UnsupportedProfileError struct {
	Port    PortID
	Profile ProfileID
}

func (e *UnsupportedProfileError) Error() string {
	return fmt.Sprintf("port %d does not support profile %d", e.Port, e.Profile)
}

func (e *UnsupportedProfileError) Unwrap() error { return ErrUnsupportedProfile }

// LaneCountMismatchError reports lane lists that disagree with a profile's
// declared lane count, or a profile wider than the port's wiring.
type LaneCountMismatchError struct {
	Port     PortID
	Profile  ProfileID
	Side     string // "iphy", "transceiver" or "pins"
	Got      int
	Expected int
}

func (e *LaneCountMismatchError) Error() string {
	if e.Side == "pins" {
		return fmt.Sprintf("port %d: profile %d needs %d lanes but port has %d pins",
			e.Port, e.Profile, e.Expected, e.Got)
	}
	return fmt.Sprintf("port %d profile %d: %d %s lanes, profile declares %d",
		e.Port, e.Profile, e.Got, e.Side, e.Expected)
}

func (e *LaneCountMismatchError) Unwrap() error { return ErrLaneCountMismatch }

// UnknownProfileError is returned when a profile id is not in the table.
// Port is set when the reference came from a port's supported profiles.
type UnknownProfileError struct {
	Profile ProfileID
	Port    *PortID
}

func (e *UnknownProfileError) Error() string {
	if e.Port != nil {
		return fmt.Sprintf("port %d references unknown profile %d", *e.Port, e.Profile)
	}
	return fmt.Sprintf("profile %d not found", e.Profile)
}

func (e *UnknownProfileError) Unwrap() error { return ErrUnknownProfile }

// DuplicateProfileError is returned when a profile id is registered twice.
type DuplicateProfileError struct {
	Profile ProfileID
}

func (e *DuplicateProfileError) Error() string {
	return fmt.Sprintf("profile %d already registered", e.Profile)
}

func (e *DuplicateProfileError) Unwrap() error { return ErrDuplicateProfile }

// OutOfRangeError is returned when a lane index is outside a port's pins.
type OutOfRangeError struct {
	Port  PortID
	Lane  int
	Lanes int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("port %d: lane %d out of range [0,%d)", e.Port, e.Lane, e.Lanes)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// DuplicateLaneAssignmentError is returned when one chip lane is wired into
// more than one port pin on the same side.
type DuplicateLaneAssignmentError struct {
	Endpoint PinEndpoint
	Side     Side
	Ports    [2]PortID
}

func (e *DuplicateLaneAssignmentError) Error() string {
	if e.Ports[0] == e.Ports[1] {
		return fmt.Sprintf("%s lane %s wired twice in port %d", e.Side, e.Endpoint, e.Ports[0])
	}
	return fmt.Sprintf("%s lane %s wired to both port %d and port %d",
		e.Side, e.Endpoint, e.Ports[0], e.Ports[1])
}

func (e *DuplicateLaneAssignmentError) Unwrap() error { return ErrDuplicateLaneAssignment }

// UnwiredLaneError is returned when a profile configures a lane the port's
// pins do not include.
type UnwiredLaneError struct {
	Port     PortID
	Profile  ProfileID
	Side     string
	Endpoint PinEndpoint
}

func (e *UnwiredLaneError) Error() string {
	return fmt.Sprintf("port %d profile %d: %s lane %s is not wired to the port",
		e.Port, e.Profile, e.Side, e.Endpoint)
}

func (e *UnwiredLaneError) Unwrap() error { return ErrUnwiredLane }

// OverrideLaneMismatchError is returned when an override's lane list is
// neither a single entry nor the size of the port's own list.
type OverrideLaneMismatchError struct {
	Port     PortID
	Profile  ProfileID
	Got      int
	Expected int
}

func (e *OverrideLaneMismatchError) Error() string {
	return fmt.Sprintf("port %d profile %d: override has %d iphy lanes, expected 1 or %d",
		e.Port, e.Profile, e.Got, e.Expected)
}

func (e *OverrideLaneMismatchError) Unwrap() error { return ErrOverrideLaneMismatch }

// InvalidPortNameError is returned when a port name does not follow the
// eth<pim>/<transceiver>/<lane> convention.
type InvalidPortNameError struct {
	Port PortID
	Name string
}

func (e *InvalidPortNameError) Error() string {
	return fmt.Sprintf("invalid port name '%s' for port %d", e.Name, e.Port)
}

func (e *InvalidPortNameError) Unwrap() error { return ErrInvalidPortName }

// NoCorePinsError is returned by CorePinMapping when no override carries iphy
// pins for a chip under a profile.
type NoCorePinsError struct {
	Chip    string
	Profile ProfileID
}

func (e *NoCorePinsError) Error() string {
	return fmt.Sprintf("no iphy pins found for chip '%s' profile %d", e.Chip, e.Profile)
}

func (e *NoCorePinsError) Unwrap() error { return ErrNoCorePins }

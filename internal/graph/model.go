package graph

import "fmt"

// Port identifies one mono channel endpoint on a graph node.
type Port struct {
	NodeID uint32
	PortID uint32
	Name   string
}

func (p Port) String() string {
	return fmt.Sprintf("%d:%d(%s)", p.NodeID, p.PortID, p.Name)
}

// DeviceKind distinguishes capture-side nodes from playback streams.
type DeviceKind int

const (
	// Input is a node whose media class starts with Audio/Source.
	Input DeviceKind = iota
	// Output is a playback stream node (Stream/Output/Audio).
	Output
)

func (k DeviceKind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("DeviceKind(%d)", int(k))
	}
}

// AudioDevice is a graph node together with the ports resolved for each
// channel role. Unresolved roles are nil.
type AudioDevice struct {
	ID   uint32
	Name string
	Nick string
	Kind DeviceKind

	InputFL  *Port
	InputFR  *Port
	OutputFL *Port
	OutputFR *Port
}

// CanFeed reports whether both outbound channel ports are known, i.e. the
// device can act as the source side of a stereo link.
func (d AudioDevice) CanFeed() bool {
	return d.OutputFL != nil && d.OutputFR != nil
}

// CanReceive reports whether both inbound channel ports are known.
func (d AudioDevice) CanReceive() bool {
	return d.InputFL != nil && d.InputFR != nil
}

// Label renders the "name - nick" form shown to clients.
func (d AudioDevice) Label() string {
	return d.Name + " - " + d.Nick
}

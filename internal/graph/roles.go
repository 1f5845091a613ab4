package graph

type slot int

const (
	slotInputFL slot = iota
	slotInputFR
	slotOutputFL
	slotOutputFR
)

var stereoAliases = map[string][]slot{
	"input_FL":   {slotInputFL},
	"input_FR":   {slotInputFR},
	"output_FL":  {slotOutputFL},
	"output_FR":  {slotOutputFR},
	"capture_FL": {slotOutputFL},
	"capture_FR": {slotOutputFR},
}

// Mono aliases fill both channels. Sources may expose a mono input; playback
// streams only expose mono on the outbound side.
var monoAliases = map[DeviceKind]map[string][]slot{
	Input: {
		"input_MONO":   {slotInputFL, slotInputFR},
		"capture_MONO": {slotOutputFL, slotOutputFR},
	},
	Output: {
		"output_MONO":  {slotOutputFL, slotOutputFR},
		"capture_MONO": {slotOutputFL, slotOutputFR},
	},
}

func slotsFor(kind DeviceKind, portName string) []slot {
	if slots, ok := stereoAliases[portName]; ok {
		return slots
	}
	return monoAliases[kind][portName]
}

// assignPort stores p in every role slot its name maps to. Unknown port names
// are ignored; a later port with the same role replaces an earlier one.
func (d *AudioDevice) assignPort(p Port) {
	for _, s := range slotsFor(d.Kind, p.Name) {
		port := p
		switch s {
		case slotInputFL:
			d.InputFL = &port
		case slotInputFR:
			d.InputFR = &port
		case slotOutputFL:
			d.OutputFL = &port
		case slotOutputFR:
			d.OutputFR = &port
		}
	}
}

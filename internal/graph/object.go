package graph

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Observation is one graph object reported by an ObjectSource. Exactly one of
// Device or Port is set.
type Observation struct {
	Device *AudioDevice
	Port   *Port
}

// dumpObject is the subset of a pw-dump array element the manager reads.
type dumpObject struct {
	ID   uint32 `json:"id"`
	Type string `json:"type"`
	Info struct {
		Props map[string]json.RawMessage `json:"props"`
	} `json:"info"`
}

type props map[string]json.RawMessage

func (p props) has(key string) bool {
	_, ok := p[key]
	return ok
}

// str returns a property as text. pw-dump emits most properties as JSON
// strings but numeric ones as bare numbers; both are accepted.
func (p props) str(key string) (string, bool) {
	raw, ok := p[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	return trimmed, true
}

func (p props) uint32(key string) (uint32, bool) {
	s, ok := p.str(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// classify turns a pw-dump object into a device or port observation. Objects
// with a media class are only ever devices; everything else is a port if it
// carries a port direction.
func classify(obj dumpObject) (Observation, bool) {
	p := props(obj.Info.Props)
	if len(p) == 0 {
		return Observation{}, false
	}

	if mediaClass, ok := p.str("media.class"); ok {
		var kind DeviceKind
		switch {
		case strings.HasPrefix(mediaClass, "Audio/Source"):
			kind = Input
		case strings.HasPrefix(mediaClass, "Stream/Output/Audio"):
			kind = Output
		default:
			return Observation{}, false
		}
		name, _ := p.str("node.name")
		nick, _ := p.str("node.nick")
		desc, _ := p.str("node.description")
		return Observation{Device: &AudioDevice{
			ID:   obj.ID,
			Name: name,
			Nick: firstNonEmpty(nick, desc, name),
			Kind: kind,
		}}, true
	}

	if !p.has("port.direction") {
		return Observation{}, false
	}
	nodeID, ok := p.uint32("node.id")
	if !ok {
		return Observation{}, false
	}
	portID, ok := p.uint32("port.id")
	if !ok {
		return Observation{}, false
	}
	name, ok := p.str("port.name")
	if !ok {
		return Observation{}, false
	}
	return Observation{Port: &Port{NodeID: nodeID, PortID: portID, Name: name}}, true
}

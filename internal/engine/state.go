package engine

import (
	"encoding/json"
	"fmt"

	"soundboard/internal/audio"
)

// State is the playback state of a sink.
type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Paused:
		return "Paused"
	case Playing:
		return "Playing"
	default:
		return "Stopped"
	}
}

// MarshalJSON encodes the state as its name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Stopped":
		*s = Stopped
	case "Paused":
		*s = Paused
	case "Playing":
		*s = Playing
	default:
		return fmt.Errorf("unknown playback state %q", name)
	}
	return nil
}

func stateOf(sink *audio.Sink) State {
	if sink.Empty() {
		return Stopped
	}
	if sink.IsPaused() {
		return Paused
	}
	return Playing
}

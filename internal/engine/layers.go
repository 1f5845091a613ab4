package engine

import (
	"context"
	"time"

	"soundboard/internal/audio"
	"soundboard/internal/optional"
)

// NumLayers is the number of independent layers beside the main sink.
const NumLayers = 4

type layer struct {
	sink        *audio.Sink
	volume      float64
	currentFile optional.Optional[string]
	duration    optional.Optional[time.Duration]
}

func newLayer(sampleRate int) *layer {
	return &layer{sink: audio.NewSink(sampleRate), volume: 1}
}

// LayerInfo is the reported status of one layer.
type LayerInfo struct {
	Index       int                        `json:"index"`
	State       State                      `json:"state"`
	Volume      float64                    `json:"volume"`
	CurrentFile optional.Optional[string]  `json:"current_file"`
	Duration    optional.Optional[float64] `json:"duration"`
	Position    float64                    `json:"position"`
}

func (e *Engine) layer(i int) (*layer, error) {
	if i < 0 || i >= NumLayers {
		return nil, ErrInvalidLayer
	}
	return e.layers[i], nil
}

// PlayOnLayer replaces layer i's content with path and relinks the input.
func (e *Engine) PlayOnLayer(ctx context.Context, i int, path string) error {
	l, err := e.layer(i)
	if err != nil {
		return err
	}
	track, src, err := e.open(ctx, path)
	if err != nil {
		return err
	}
	l.sink.Stop()
	l.sink.Replace(track, src, e.opener(track))
	l.sink.Play()
	l.currentFile = optional.Some(track.Path)
	l.duration = track.Duration
	return e.relink(ctx)
}

// StopLayer empties layer i and forgets its file.
func (e *Engine) StopLayer(i int) error {
	l, err := e.layer(i)
	if err != nil {
		return err
	}
	l.sink.Stop()
	l.currentFile.Unset()
	l.duration.Unset()
	return nil
}

func (e *Engine) PauseLayer(i int) error {
	l, err := e.layer(i)
	if err != nil {
		return err
	}
	if stateOf(l.sink) == Playing {
		l.sink.Pause()
	}
	return nil
}

func (e *Engine) ResumeLayer(i int) error {
	l, err := e.layer(i)
	if err != nil {
		return err
	}
	if stateOf(l.sink) == Paused {
		l.sink.Play()
	}
	return nil
}

// SetLayerVolume sets layer i's volume, clamped to 0..1. The master gain
// applies on top of it; the master volume does not.
func (e *Engine) SetLayerVolume(i int, v float64) error {
	l, err := e.layer(i)
	if err != nil {
		return err
	}
	l.volume = clamp(v, 0, 1)
	l.sink.SetVolume(l.volume * e.gain)
	return nil
}

// StopAllLayers empties every layer.
func (e *Engine) StopAllLayers() {
	for i := range e.layers {
		_ = e.StopLayer(i)
	}
}

// LayerInfo reports the status of layer i.
func (e *Engine) LayerInfo(i int) (LayerInfo, error) {
	l, err := e.layer(i)
	if err != nil {
		return LayerInfo{}, err
	}
	info := LayerInfo{
		Index:       i,
		State:       stateOf(l.sink),
		Volume:      l.volume,
		CurrentFile: l.currentFile,
	}
	if d, ok := l.duration.Get(); ok {
		info.Duration = optional.Some(d.Seconds())
	}
	if info.State != Stopped {
		info.Position = l.sink.Position().Seconds()
	}
	return info, nil
}

// LayersInfo reports every layer in index order.
func (e *Engine) LayersInfo() []LayerInfo {
	infos := make([]LayerInfo, 0, NumLayers)
	for i := range e.layers {
		info, _ := e.LayerInfo(i)
		infos = append(infos, info)
	}
	return infos
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"soundboard/internal/engine"
	"soundboard/internal/ipc"
	"soundboard/internal/logging"
)

// Dispatcher executes parsed commands against a shared engine.
type Dispatcher struct {
	shared *engine.Shared
	logger *slog.Logger
}

// NewDispatcher returns a Dispatcher serving shared.
func NewDispatcher(shared *engine.Shared, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{shared: shared, logger: logging.NewComponentLogger(logger, "commands")}
}

// Handle implements ipc.Handler.
func (d *Dispatcher) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	cmd, ok := Parse(req)
	if !ok {
		return ipc.Fail("Unknown command")
	}
	if cmd.Kind == Ping {
		return ipc.OK("pong")
	}
	if resp, invalid := rejectInvalid(cmd); invalid {
		return resp
	}

	var resp ipc.Response
	err := d.shared.With(ctx, func(e *engine.Engine) error {
		resp = execute(ctx, e, cmd)
		return nil
	})
	if err != nil {
		return ipc.Fail(errorMessage(err))
	}
	if !resp.Status {
		logging.WithContext(ctx, d.logger).Debug("command failed",
			logging.String(logging.FieldCommand, cmd.Kind.String()),
			logging.String("message", resp.Message),
		)
	}
	return resp
}

// rejectInvalid reports commands whose arguments did not parse.
func rejectInvalid(cmd Command) (ipc.Response, bool) {
	var msg string
	switch cmd.Kind {
	case SetVolume:
		if !cmd.Value.IsSet() {
			msg = "Invalid volume value"
		}
	case SetGain:
		if !cmd.Value.IsSet() {
			msg = "Invalid gain value"
		}
	case SetMicGain:
		if !cmd.Value.IsSet() {
			msg = "Invalid mic gain value"
		}
	case Seek:
		if !cmd.Value.IsSet() {
			msg = "Invalid position value"
		}
	case Play, Preview:
		if !cmd.FilePath.IsSet() {
			msg = "Invalid file path"
		}
	case SetInput:
		if !cmd.DeviceName.IsSet() {
			msg = "Invalid input device name"
		}
	case SetOutput:
		if !cmd.DeviceName.IsSet() {
			msg = "Invalid output device name"
		}
	case SetLoop:
		if !cmd.Enabled.IsSet() {
			msg = "Invalid enabled value"
		}
	case PlayOnLayer:
		if !cmd.LayerIndex.IsSet() || !cmd.FilePath.IsSet() {
			msg = "Invalid layer index or file path"
		}
	case StopLayer:
		if !cmd.LayerIndex.IsSet() {
			msg = "Invalid layer index"
		}
	case SetLayerVolume:
		if !cmd.LayerIndex.IsSet() || !cmd.Value.IsSet() {
			msg = "Invalid layer index or volume"
		}
	}
	if msg == "" {
		return ipc.Response{}, false
	}
	return ipc.Fail(msg), true
}

func execute(ctx context.Context, e *engine.Engine, cmd Command) ipc.Response {
	value := cmd.Value.OrElse(0)
	path := cmd.FilePath.OrElse("")
	name := cmd.DeviceName.OrElse("")
	index := cmd.LayerIndex.OrElse(0)

	switch cmd.Kind {
	case Pause:
		e.Pause()
		return ipc.OK("Audio was paused")
	case Resume:
		e.Resume()
		return ipc.OK("Audio was resumed")
	case TogglePause:
		if e.State() == engine.Stopped {
			return ipc.Fail("Audio is not playing")
		}
		if e.IsPaused() {
			e.Resume()
			return ipc.OK("Audio was resumed")
		}
		e.Pause()
		return ipc.OK("Audio was paused")
	case Stop:
		e.Stop()
		return ipc.OK("Audio was stopped")
	case IsPaused:
		return ipc.OK(strconv.FormatBool(e.IsPaused()))
	case GetState:
		return jsonResponse(e.State(), "Failed to serialize player state")

	case GetVolume:
		return ipc.OK(formatFloat(e.Volume()))
	case SetVolume:
		e.SetVolume(value)
		return ipc.OK("Audio volume was set to " + formatFloat(value))
	case GetGain:
		return ipc.OK(formatFloat(e.Gain()))
	case SetGain:
		e.SetGain(value)
		return ipc.OK("Audio gain was set to " + formatFloat(value))
	case GetMicGain:
		return ipc.OK(formatFloat(e.MicGain()))
	case SetMicGain:
		e.SetMicGain(ctx, value)
		return ipc.OK("Mic gain was set to " + formatFloat(value))

	case GetPosition:
		return ipc.OK(formatSeconds(e.Position()))
	case Seek:
		if err := e.Seek(seconds(value)); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK("Audio position was set to " + formatFloat(value))
	case GetDuration:
		d, err := e.Duration()
		if err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK(formatSeconds(d))

	case Play:
		if err := e.Play(ctx, path); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK("Now playing " + path)
	case Preview:
		if err := e.Preview(ctx, path); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK("Previewing " + path)
	case GetCurrentFilePath:
		current, ok := e.CurrentFilePath()
		if !ok {
			return ipc.Fail("No file is playing")
		}
		if !utf8.ValidString(current) {
			return ipc.Fail("File path contains invalid UTF-8")
		}
		return ipc.OK(current)

	case GetInput:
		dev, ok := e.CurrentInput()
		if !ok {
			return ipc.Fail("No input device selected")
		}
		return ipc.OK(dev.Label())
	case GetInputs:
		inputs, err := e.Inputs(ctx)
		if err != nil {
			return ipc.Fail("Failed to get input devices: " + err.Error())
		}
		labels := make([]string, 0, len(inputs))
		for _, dev := range inputs {
			labels = append(labels, dev.Label())
		}
		return ipc.OK(strings.Join(labels, "; "))
	case SetInput:
		if err := e.SetInput(ctx, name); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK("Input device was set")

	case GetOutput:
		current, ok := e.CurrentOutput()
		if !ok {
			return ipc.Fail("No output device selected")
		}
		return ipc.OK(current)
	case GetOutputs:
		outputs, err := e.Outputs()
		if err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK(strings.Join(outputs, "; "))
	case SetOutput:
		if err := e.SetOutputPreference(name); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK("Output device preference saved (restart daemon to apply)")

	case GetLoop:
		return ipc.OK(strconv.FormatBool(e.Loop()))
	case SetLoop:
		enabled := cmd.Enabled.OrElse(false)
		e.SetLoop(enabled)
		return ipc.OK("Loop was set to " + strconv.FormatBool(enabled))
	case ToggleLoop:
		return ipc.OK("Loop was set to " + strconv.FormatBool(e.ToggleLoop()))

	case PlayOnLayer:
		if err := e.PlayOnLayer(ctx, index, path); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK(fmt.Sprintf("Playing %s on layer %d", path, index))
	case StopLayer:
		if err := e.StopLayer(index); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK(fmt.Sprintf("Stopped layer %d", index))
	case StopAllLayers:
		e.StopAllLayers()
		return ipc.OK("All layers stopped")
	case SetLayerVolume:
		if err := e.SetLayerVolume(index, value); err != nil {
			return ipc.Fail(errorMessage(err))
		}
		return ipc.OK(fmt.Sprintf("Layer %d volume set to %s", index, formatFloat(value)))
	case GetLayersInfo:
		return jsonResponse(e.LayersInfo(), "Failed to serialize layers info")
	}
	return ipc.Fail("Unknown command")
}

func jsonResponse(v any, failure string) ipc.Response {
	data, err := json.Marshal(v)
	if err != nil {
		return ipc.Fail(failure)
	}
	return ipc.OK(string(data))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSeconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}

func seconds(v float64) time.Duration {
	ns := v * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// errorMessage renders err for a client, capitalizing the first letter.
func errorMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

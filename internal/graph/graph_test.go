package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const sampleDump = `[
  {"id": 31, "type": "PipeWire:Interface:Node", "info": {"props": {
    "media.class": "Audio/Source", "node.name": "alsa_input.usb-mic", "node.nick": "USB Mic",
    "node.description": "USB Microphone", "object.id": 31}}},
  {"id": 44, "type": "PipeWire:Interface:Node", "info": {"props": {
    "media.class": "Stream/Output/Audio", "node.name": "soundboard-player", "node.description": "Soundboard"}}},
  {"id": 45, "type": "PipeWire:Interface:Node", "info": {"props": {
    "media.class": "Audio/Sink", "node.name": "alsa_output.speakers"}}},
  {"id": 70, "type": "PipeWire:Interface:Port", "info": {"direction": "output", "props": {
    "port.direction": "out", "node.id": 31, "port.id": 0, "port.name": "capture_FL"}}},
  {"id": 71, "type": "PipeWire:Interface:Port", "info": {"props": {
    "port.direction": "out", "node.id": "31", "port.id": "1", "port.name": "capture_FR"}}},
  {"id": 72, "type": "PipeWire:Interface:Port", "info": {"props": {
    "port.direction": "out", "node.id": 44}}},
  {"id": 80, "type": "PipeWire:Interface:Link", "info": {"props": {"link.output.node": 31}}},
  {"id": 0, "type": "PipeWire:Interface:Core", "info": {"props": null}}
]`

func TestDecodeDumpClassifiesObjects(t *testing.T) {
	out := make(chan Observation, 16)
	if err := decodeDump(context.Background(), strings.NewReader(sampleDump), out); err != nil {
		t.Fatalf("decodeDump: %v", err)
	}
	close(out)

	var got []Observation
	for obs := range out {
		got = append(got, obs)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(got))
	}

	mic := got[0].Device
	if mic == nil || mic.ID != 31 || mic.Kind != Input || mic.Nick != "USB Mic" {
		t.Fatalf("unexpected mic observation: %+v", mic)
	}
	player := got[1].Device
	if player == nil || player.Kind != Output || player.Nick != "Soundboard" {
		t.Fatalf("expected description fallback for nick, got %+v", player)
	}
	want := []Port{{NodeID: 31, PortID: 0, Name: "capture_FL"}, {NodeID: 31, PortID: 1, Name: "capture_FR"}}
	for i, p := range want {
		if got[i+2].Port == nil || *got[i+2].Port != p {
			t.Fatalf("port %d: got %+v want %+v", i, got[i+2].Port, p)
		}
	}
}

func TestAssembleResolvesRoleAliases(t *testing.T) {
	devices := map[uint32]*AudioDevice{
		10: {ID: 10, Name: "mono-mic", Kind: Input},
		11: {ID: 11, Name: "virtual", Kind: Input},
		20: {ID: 20, Name: "player", Kind: Output},
	}
	ports := []Port{
		{NodeID: 10, PortID: 0, Name: "capture_MONO"},
		{NodeID: 11, PortID: 0, Name: "input_MONO"},
		{NodeID: 20, PortID: 4, Name: "output_MONO"},
		{NodeID: 20, PortID: 5, Name: "input_MONO"},
		{NodeID: 99, PortID: 0, Name: "capture_FL"},
	}

	inputs, outputs := assemble(devices, ports)
	if len(inputs) != 2 || len(outputs) != 1 {
		t.Fatalf("unexpected device counts: %d inputs, %d outputs", len(inputs), len(outputs))
	}
	mono := inputs[0]
	if !mono.CanFeed() || mono.CanReceive() {
		t.Fatalf("capture_MONO should fill both output slots only: %+v", mono)
	}
	if mono.OutputFL.PortID != 0 || mono.OutputFR.PortID != 0 {
		t.Fatalf("expected both slots to reference port 0: %+v", mono)
	}
	if !inputs[1].CanReceive() {
		t.Fatalf("input_MONO should fill both input slots: %+v", inputs[1])
	}
	player := outputs[0]
	if !player.CanFeed() {
		t.Fatalf("output_MONO should fill both output slots: %+v", player)
	}
	if player.CanReceive() {
		t.Fatalf("input_MONO is not an alias for playback streams: %+v", player)
	}
}

func TestEnumerateDeduplicatesAndSorts(t *testing.T) {
	src := &snapshotSource{snapshots: [][]Observation{{
		device(40, "second", Input),
		device(12, "first", Input),
		{Device: &AudioDevice{ID: 40, Name: "second", Nick: "renamed", Kind: Input}},
		device(90, "stream", Output),
		port(12, 0, "capture_FL"),
	}}}
	m := newTestManager(src, nil)

	inputs, outputs, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	var ids []uint32
	for _, dev := range inputs {
		ids = append(ids, dev.ID)
	}
	if !reflect.DeepEqual(ids, []uint32{12, 40}) {
		t.Fatalf("expected sorted unique ids [12 40], got %v", ids)
	}
	if inputs[1].Nick != "renamed" {
		t.Fatalf("expected latest observation to win, got %q", inputs[1].Nick)
	}
	if inputs[0].OutputFL == nil {
		t.Fatal("expected capture_FL to be assigned")
	}
	if len(outputs) != 1 || outputs[0].ID != 90 {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
}

func TestEnumerateTerminatesWorkerAfterQuietPeriod(t *testing.T) {
	src := &snapshotSource{
		snapshots: [][]Observation{{device(1, "mic", Input)}},
		hold:      true,
		stopped:   make(chan struct{}),
	}
	m := newTestManager(src, nil)

	inputs, _, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected 1 input, got %d", len(inputs))
	}
	select {
	case <-src.stopped:
	case <-time.After(time.Second):
		t.Fatal("worker was not terminated")
	}
}

func TestEnumerateReportsWorkerFailure(t *testing.T) {
	src := &snapshotSource{err: errors.New("pw-dump missing")}
	m := newTestManager(src, nil)
	if _, _, err := m.Enumerate(context.Background()); err == nil {
		t.Fatal("expected worker error")
	}
}

func TestLinkDevicesCreatesStereoLink(t *testing.T) {
	src := &snapshotSource{snapshots: [][]Observation{micGraph()}}
	sessions := &recordingSessions{}
	m := newTestManager(src, sessions)

	var slot LinkSlot
	if err := m.LinkDevices(context.Background(), &slot, "alsa_input.usb-mic"); err != nil {
		t.Fatalf("LinkDevices: %v", err)
	}
	want := []string{"create-link 50 2 60 0", "create-link 50 3 60 1"}
	if got := sessions.commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected commands: %v", got)
	}
	if !slot.Active() {
		t.Fatal("expected slot to hold an active link")
	}
	slot.Cancel()
	select {
	case <-sessions.sessions[0].done:
	case <-time.After(time.Second):
		t.Fatal("cancelling the slot did not close the session")
	}
}

func TestLinkDevicesRetriesUntilDeviceAppears(t *testing.T) {
	partial := micGraph()[:5]
	src := &snapshotSource{snapshots: [][]Observation{partial, partial, micGraph()}}
	sessions := &recordingSessions{}
	m := newTestManager(src, sessions)

	var slot LinkSlot
	if err := m.LinkDevices(context.Background(), &slot, "alsa_input.usb-mic"); err != nil {
		t.Fatalf("LinkDevices: %v", err)
	}
	if calls := src.callCount(); calls != 3 {
		t.Fatalf("expected 3 enumeration attempts, got %d", calls)
	}
	if !slot.Active() {
		t.Fatal("expected link after device appeared")
	}
}

func TestLinkDevicesGivesUpWithoutError(t *testing.T) {
	src := &snapshotSource{snapshots: [][]Observation{micGraph()}}
	sessions := &recordingSessions{}
	m := newTestManager(src, sessions)

	var slot LinkSlot
	if err := m.LinkDevices(context.Background(), &slot, "missing-device"); err != nil {
		t.Fatalf("exhausted retries must not be an error: %v", err)
	}
	if calls := src.callCount(); calls != 5 {
		t.Fatalf("expected 5 attempts, got %d", calls)
	}
	if slot.Active() {
		t.Fatal("expected no link")
	}
	if len(sessions.commands()) != 0 {
		t.Fatalf("expected no link commands, got %v", sessions.commands())
	}
}

func TestLinkDevicesRequiresAllPorts(t *testing.T) {
	graph := []Observation{
		device(60, "soundboard-virtual-mic", Input),
		port(60, 0, "input_FL"),
		device(50, "alsa_input.usb-mic", Input),
		port(50, 2, "capture_FL"),
		port(50, 3, "capture_FR"),
	}
	src := &snapshotSource{snapshots: [][]Observation{graph}}
	sessions := &recordingSessions{}
	m := newTestManager(src, sessions)

	var slot LinkSlot
	if err := m.LinkDevices(context.Background(), &slot, "alsa_input.usb-mic"); err != nil {
		t.Fatalf("LinkDevices: %v", err)
	}
	if slot.Active() || len(sessions.commands()) != 0 {
		t.Fatal("expected linking to be skipped when the mic lacks input_FR")
	}
}

func TestLinkDevicesWithoutTargetCancelsExistingLink(t *testing.T) {
	src := &snapshotSource{}
	m := newTestManager(src, &recordingSessions{})

	var slot LinkSlot
	old := newLinkHandle()
	slot.Replace(old)

	if err := m.LinkDevices(context.Background(), &slot, ""); err != nil {
		t.Fatalf("LinkDevices: %v", err)
	}
	select {
	case <-old.stop:
	default:
		t.Fatal("expected previous handle to be cancelled")
	}
	if src.callCount() != 0 {
		t.Fatal("expected no enumeration without a target")
	}
}

func TestLinkPlayerToVirtualMicUsesPlaybackStream(t *testing.T) {
	graph := append(micGraph(),
		device(44, "soundboard-player", Output),
		port(44, 7, "output_FL"),
		port(44, 8, "output_FR"),
	)
	src := &snapshotSource{snapshots: [][]Observation{graph}}
	sessions := &recordingSessions{}
	m := newTestManager(src, sessions)

	var slot LinkSlot
	if err := m.LinkPlayerToVirtualMic(context.Background(), &slot, "soundboard-player"); err != nil {
		t.Fatalf("LinkPlayerToVirtualMic: %v", err)
	}
	want := []string{"create-link 44 7 60 0", "create-link 44 8 60 1"}
	if got := sessions.commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected commands: %v", got)
	}
}

func TestLinkSlotReplaceCancelsPrevious(t *testing.T) {
	var slot LinkSlot
	first := newLinkHandle()
	second := newLinkHandle()

	slot.Replace(first)
	slot.Replace(second)

	select {
	case <-first.stop:
	default:
		t.Fatal("first handle was not cancelled")
	}
	select {
	case <-second.stop:
		t.Fatal("second handle must stay live")
	default:
	}
	// Cancelling twice is tolerated.
	first.Cancel()
	var nilHandle *LinkHandle
	nilHandle.Cancel()
}

func TestFindDevice(t *testing.T) {
	src := &snapshotSource{snapshots: [][]Observation{micGraph()}}
	m := newTestManager(src, nil)

	dev, err := m.FindDevice(context.Background(), "alsa_input.usb-mic")
	if err != nil {
		t.Fatalf("FindDevice: %v", err)
	}
	if dev.ID != 50 {
		t.Fatalf("unexpected device: %+v", dev)
	}
	if _, err := m.FindDevice(context.Background(), "nope"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestPWDumpStreamsFromBinary(t *testing.T) {
	dumpFile := filepath.Join(t.TempDir(), "dump.json")
	if err := os.WriteFile(dumpFile, []byte(sampleDump), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	bin := writeScript(t, "pw-dump", "cat "+dumpFile+"\n")

	out := make(chan Observation, 16)
	if err := (PWDump{Binary: bin}).Stream(context.Background(), out); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(out))
	}
}

func TestPWDumpReportsFailure(t *testing.T) {
	bin := writeScript(t, "pw-dump", "echo 'connection refused' >&2\nexit 1\n")
	out := make(chan Observation, 1)
	err := (PWDump{Binary: bin}).Stream(context.Background(), out)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestPWCliSessionWritesCommands(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "commands.txt")
	bin := writeScript(t, "pw-cli", "cat > "+outFile+"\n")

	sess, err := (PWCli{Binary: bin}).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sess.Send(createLinkCommand(Port{NodeID: 1, PortID: 2}, Port{NodeID: 3, PortID: 4})); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		data, _ := os.ReadFile(outFile)
		if strings.Contains(string(data), "create-link 1 2 3 4\n") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("command never reached pw-cli, got %q", data)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-sess.Done():
	default:
		t.Fatal("expected session to be done after Close")
	}
	if err := sess.Send("info 0"); err == nil {
		t.Fatal("expected Send after Close to fail")
	}
}

func TestWpctlVolumeInvokesBinary(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	bin := writeScript(t, "wpctl", `echo "$@" > `+argsFile+"\n")

	if err := (WpctlVolume{Binary: bin}).SetSourceVolume(context.Background(), 57, 1.5); err != nil {
		t.Fatalf("SetSourceVolume: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "set-volume 57 1.5" {
		t.Fatalf("unexpected wpctl args: %q", got)
	}
}

package graph

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// WpctlVolume adjusts node volumes through WirePlumber's wpctl.
type WpctlVolume struct {
	Binary string
}

// SetSourceVolume runs `wpctl set-volume <id> <gain>`.
func (w WpctlVolume) SetSourceVolume(ctx context.Context, id uint32, gain float64) error {
	binary := strings.TrimSpace(w.Binary)
	if binary == "" {
		binary = "wpctl"
	}
	cmd := exec.CommandContext(ctx, binary, "set-volume",
		strconv.FormatUint(uint64(id), 10),
		strconv.FormatFloat(gain, 'f', -1, 64),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wpctl set-volume %d: %w: %s", id, err, strings.TrimSpace(string(output)))
	}
	return nil
}

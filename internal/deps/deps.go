package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"soundboard/internal/config"
)

// Requirement defines an external executable the daemon invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries configured in cfg. Only pw-cli is
// mandatory: without it the virtual mic cannot be created.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{Name: "pw-cli", Command: cfg.Binaries.PWCli, Description: "Creates the virtual mic and links"},
		{Name: "pw-dump", Command: cfg.Binaries.PWDump, Description: "Enumerates the PipeWire graph", Optional: true},
		{Name: "wpctl", Command: cfg.Binaries.Wpctl, Description: "Sets capture volume for mic gain", Optional: true},
		{Name: "ffmpeg", Command: cfg.Binaries.FFmpeg, Description: "Decodes audio files", Optional: true},
		{Name: "ffprobe", Command: cfg.Binaries.FFprobe, Description: "Reads audio file durations", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the unavailable non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Optional && !s.Available {
			missing = append(missing, s)
		}
	}
	return missing
}

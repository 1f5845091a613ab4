package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ObjectSource streams graph observations to out until the snapshot is
// complete or ctx is cancelled. Implementations must not close out.
type ObjectSource interface {
	Stream(ctx context.Context, out chan<- Observation) error
}

// PWDump reads the graph by running pw-dump and decoding its JSON array one
// element at a time.
type PWDump struct {
	Binary string
}

// Stream implements ObjectSource. Cancelling ctx kills the pw-dump process.
func (d PWDump) Stream(ctx context.Context, out chan<- Observation) error {
	binary := strings.TrimSpace(d.Binary)
	if binary == "" {
		binary = "pw-dump"
	}
	cmd := exec.CommandContext(ctx, binary)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("pw-dump stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start pw-dump: %w", err)
	}

	streamErr := decodeDump(ctx, stdout, out)
	if streamErr != nil {
		// Unblock the process if we stopped reading early.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil
	}
	if streamErr != nil {
		return streamErr
	}
	if waitErr != nil {
		return fmt.Errorf("pw-dump: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func decodeDump(ctx context.Context, r io.Reader, out chan<- Observation) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("pw-dump decode: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("pw-dump decode: expected array, got %v", tok)
	}
	for dec.More() {
		var obj dumpObject
		if err := dec.Decode(&obj); err != nil {
			return fmt.Errorf("pw-dump decode object: %w", err)
		}
		obs, ok := classify(obj)
		if !ok {
			continue
		}
		select {
		case out <- obs:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

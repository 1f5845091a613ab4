package graph

import (
	"context"
	"sort"
	"time"
)

// Enumerate snapshots the audio graph. A worker streams observations until no
// new object arrives for the quiet period (or the worker finishes), after which
// the worker is terminated and devices are assembled from the collected ports.
// Both slices are deduplicated by node id and sorted by id.
func (m *Manager) Enumerate(ctx context.Context) (inputs, outputs []AudioDevice, err error) {
	workerCtx, terminate := context.WithCancel(ctx)
	defer terminate()

	observations := make(chan Observation, 16)
	workerErr := make(chan error, 1)
	go func() {
		defer close(observations)
		workerErr <- m.source.Stream(workerCtx, observations)
	}()

	devices := make(map[uint32]*AudioDevice)
	var ports []Port
	seen := 0

	quiet := time.NewTimer(m.quietPeriod)
	defer quiet.Stop()

collect:
	for {
		select {
		case obs, ok := <-observations:
			if !ok {
				if werr := <-workerErr; werr != nil && seen == 0 {
					return nil, nil, werr
				}
				break collect
			}
			seen++
			switch {
			case obs.Device != nil:
				dev := *obs.Device
				devices[dev.ID] = &dev
			case obs.Port != nil:
				ports = append(ports, *obs.Port)
			}
			quiet.Reset(m.quietPeriod)
		case <-quiet.C:
			break collect
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	terminate()

	inputs, outputs = assemble(devices, ports)
	return inputs, outputs, nil
}

func assemble(devices map[uint32]*AudioDevice, ports []Port) (inputs, outputs []AudioDevice) {
	for _, p := range ports {
		if dev, ok := devices[p.NodeID]; ok {
			dev.assignPort(p)
		}
	}
	for _, dev := range devices {
		switch dev.Kind {
		case Input:
			inputs = append(inputs, *dev)
		case Output:
			outputs = append(outputs, *dev)
		}
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].ID < inputs[j].ID })
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].ID < outputs[j].ID })
	return inputs, outputs
}

package telemetry

import (
	"context"

	"github.com/trayd/trayd/internal/item"
)

// Resolver builds item popover data locally, without a round trip to the
// host. It serves the ids whose popover is a process ranking.
type Resolver struct {
	Ranker  *Ranker
	Network *NetworkProbe
	// Limit is the number of processes listed.
	Limit int
}

// MetricFor maps a tray item id to the ranking its popover shows.
func MetricFor(id string) (Metric, bool) {
	switch id {
	case "cpu":
		return MetricCPU, true
	case "gpu":
		return MetricGPU, true
	case "ram":
		return MetricRAM, true
	case "disk":
		return MetricDisk, true
	case "network":
		return MetricNetwork, true
	case item.BatteryID:
		return MetricBattery, true
	}
	return "", false
}

// PopoverData returns {itemId, isLoading: false, processes} for id, plus
// networkInfo for the network item. Ids without a ranking get an empty
// process list.
func (r *Resolver) PopoverData(ctx context.Context, id string) map[string]any {
	data := map[string]any{
		"itemId":    id,
		"isLoading": false,
		"processes": []map[string]any{},
	}
	m, ok := MetricFor(id)
	if !ok || r.Ranker == nil {
		return data
	}
	data["processes"] = WireProcesses(m, r.Ranker.Top(ctx, m, r.Limit))
	if m == MetricNetwork && r.Network != nil {
		data["networkInfo"] = r.Network.Info(ctx).Wire()
	}
	return data
}

package core

import "context"

// Each service operation emits one counter and one duration histogram,
// named webflow.<operation>.total and webflow.<operation>.duration_ms,
// tagged with operation, status, and site_id/trigger_type when known.
// NopMetricsRecorder is the default sink so those emissions never need a
// nil check; hosts that scrape metrics swap it via WithMetricsRecorder.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// cloneTags hands each recorder its own tag map. Delivery tags are built
// per request and recorders may retain what they are given.
func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

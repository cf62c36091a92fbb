package redcore

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

// Metrics recorded by the handler, watchdog and endpoint: bytes moved,
// dial outcomes, queue depth, and reconnect/restoration counts for a
// single reconnecting endpoint.
const dimensionless = "1"

var (
	MBytesRead         = stats.Int64("redcore/bytes_read", "Bytes read from the server", stats.UnitBytes)
	MBytesWritten      = stats.Int64("redcore/bytes_written", "Bytes written to the server", stats.UnitBytes)
	MDials             = stats.Int64("redcore/dials", "Dial attempts", dimensionless)
	MDialErrors        = stats.Int64("redcore/dial_errors", "Dial errors", dimensionless)
	MReconnectAttempts = stats.Int64("redcore/reconnect_attempts", "Reconnect attempts scheduled by the watchdog", dimensionless)
	MReconnectFailures = stats.Int64("redcore/reconnect_failures", "Reconnect attempts that failed", dimensionless)
	MCommandsRetried   = stats.Int64("redcore/commands_retried", "Commands rewritten after a reconnect (at-least-once)", dimensionless)
	MCommandsCancelled = stats.Int64("redcore/commands_cancelled", "Commands cancelled by a disconnect (at-most-once)", dimensionless)
	MSubscriptionsRestored = stats.Int64("redcore/subscriptions_restored", "Channels and patterns replayed by the session restorer", dimensionless)
	MQueueDepth        = stats.Int64("redcore/queue_depth", "Combined buffer + in-flight depth after each write", dimensionless)
)

// Views registers the above measures as opencensus views. Callers that
// want metrics call view.Register(redcore.Views...) once at startup.
var Views = []*view.View{
	{Name: "redcore/client/bytes_read", Measure: MBytesRead, Aggregation: view.Count()},
	{Name: "redcore/client/bytes_written", Measure: MBytesWritten, Aggregation: view.Count()},
	{Name: "redcore/client/dials", Measure: MDials, Aggregation: view.Count()},
	{Name: "redcore/client/dial_errors", Measure: MDialErrors, Aggregation: view.Count()},
	{Name: "redcore/client/reconnect_attempts", Measure: MReconnectAttempts, Aggregation: view.Count()},
	{Name: "redcore/client/reconnect_failures", Measure: MReconnectFailures, Aggregation: view.Count()},
	{Name: "redcore/client/commands_retried", Measure: MCommandsRetried, Aggregation: view.Count()},
	{Name: "redcore/client/commands_cancelled", Measure: MCommandsCancelled, Aggregation: view.Count()},
	{Name: "redcore/client/subscriptions_restored", Measure: MSubscriptionsRestored, Aggregation: view.Count()},
	{Name: "redcore/client/queue_depth", Measure: MQueueDepth, Aggregation: view.LastValue()},
}

func recordCount(measure *stats.Int64Measure, n int64) {
	stats.Record(context.Background(), measure.M(n))
}

package handler

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// reqLatencyMs records the time it took for request to be served
	reqLatencyMs = stats.Float64("request/latency", "Request serving latency", "ms")

	// dispatchCount records the count of any command dispatched through a driver
	dispatchCount = stats.Int64("cmd/count", "Dispatched command count", "requests")

	// keyDriver tags the driver a command was dispatched through
	keyDriver, _ = tag.NewKey("driver")

	// keyCommand tags the dispatched command
	keyCommand, _ = tag.NewKey("command")

	// cmdCountView provides view for dispatched command count
	cmdCountView = &view.View{
		Name:        "command/count",
		Measure:     dispatchCount,
		Description: "The count of commands dispatched through the backing drivers",
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{keyDriver, keyCommand},
	}

	// reqLatencyView provides view for request latency
	reqLatencyView = &view.View{
		Name:        "request/latency",
		Measure:     reqLatencyMs,
		Description: "The latency distribution of requests",

		// Latency in buckets:
		// [>=0ms, >=25ms, >=50ms, >=75ms, >=100ms, >=200ms, >=400ms, >=600ms, >=800ms, >=1s]
		Aggregation: view.Distribution(0, 25, 50, 75, 100, 200, 400, 600, 800, 1000),
	}

	views = []*view.View{cmdCountView, reqLatencyView}
)

func sinceInMs(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

func recordCmd(ctx context.Context, driver, command string) {
	cmdCtx, _ := tag.New(ctx, tag.Insert(keyDriver, driver), tag.Insert(keyCommand, command))
	stats.Record(cmdCtx, dispatchCount.M(1))
}

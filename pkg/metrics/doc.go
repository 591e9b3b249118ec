// Package metrics provides Prometheus instrumentation for rwflow stages.
//
// # Overview
//
// Metering is opt-in: wrap any builder with the metered transform and give it
// a stage name. Every reader and writer manufactured through that stage then
// reports to the registry:
//
//	reg := metrics.NewRegistry(prometheus.NewRegistry())
//	b := rw.Wrap(buffer.New(), metered.New("spool", reg))
//
// Async writers report their pending bytes and dropped writes, and the
// process endpoint counts spawns when given a registry.
//
// # Available Metrics
//
//   - rwflow_stream_bytes_read_total{stage}
//   - rwflow_stream_bytes_written_total{stage}
//   - rwflow_stream_reads_total{stage}
//   - rwflow_stream_writes_total{stage}
//   - rwflow_stream_flushes_total{stage}
//   - rwflow_stream_errors_total{stage,op}
//   - rwflow_async_pending_bytes{stage}
//   - rwflow_async_dropped_writes_total{stage}
//   - rwflow_process_spawns_total{command,mode}
//
// io.EOF is the normal end of a stream and is not counted as an error.
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",
//		Labels:    prometheus.Labels{"version": "1.0"},
//	}
//	reg := metrics.NewRegistryWithConfig(config)
//
// A disabled configuration yields a nil *Registry. All Observe methods are
// safe to call on a nil registry and do nothing.
//
// Expose the metrics with promhttp as usual:
//
//	http.Handle("/metrics", promhttp.Handler())
package metrics

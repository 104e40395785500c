// Package metrics provides build observability for the manual builder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	svc := build.NewBuildService() // NoopRecorder
//	svc = svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The Prometheus implementation registers its collectors on the registry it
// is given. HTTPHandler exposes that registry for the watch command.
package metrics

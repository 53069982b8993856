// Package metrics records generation outcomes.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default; PrometheusRecorder is installed when server.metrics is enabled
// and exposed through HTTPHandler. Observer adapts a Recorder to lifecycle
// events so sessions need no metrics code of their own.
package metrics

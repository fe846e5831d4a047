// Package metrics records build observability data.
//
// Components take a Recorder and default to NoopRecorder, so metrics need
// no nil checks at call sites. PrometheusRecorder registers collectors on
// its own registry; a one-shot build writes them to a node-exporter
// textfile with WriteTextfile instead of serving them.
package metrics

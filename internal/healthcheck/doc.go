// Package healthcheck periodically probes the devs database and reports its
// reachability to the metrics exporter.
package healthcheck

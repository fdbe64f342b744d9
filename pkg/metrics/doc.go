/*
Package metrics exposes foundry's Prometheus collectors.

There is no daemon, no cluster, and no Raft group here: a single foundry
invocation runs one apply, one verify, or one build, then exits. This
package instruments that single process rather than a long-lived
cluster manager, so it carries only the metrics that operation can
actually produce, registered with the default Prometheus registry the
same way the orchestrator this is built from registers its own.

# Metrics Catalog

Apply Metrics:

foundry_apply_duration_seconds:
  - Type: Histogram
  - Description: Time taken to run an apply sequence

foundry_apply_outcomes_total{outcome}:
  - Type: Counter
  - Description: Total apply sequences by outcome ("success", or the
    failure point: "undo_failed", "check_failed", "pre_existing_refused",
    "create_failed", "modify_failed")

foundry_apply_nodes_total{kind, action}:
  - Type: Counter
  - Description: Total node operations performed by an apply sequence,
    by requirement kind and action (undo/create/modify)

Verify Metrics:

foundry_verify_duration_seconds:
  - Type: Histogram
  - Description: Time taken to run a verify pass

foundry_verify_cycles_total:
  - Type: Counter
  - Description: Total verify passes completed

foundry_verify_invalid_total{kind}:
  - Type: Counter
  - Description: Total nodes found invalid during verification, by kind

Registry Metrics:

foundry_registry_current_version:
  - Type: Gauge
  - Description: The install version currently marked as current

foundry_registry_advances_total:
  - Type: Counter
  - Description: Total number of times the current install version advanced

# Usage

Updating metrics directly:

	metrics.ApplyOutcomesTotal.WithLabelValues("success").Inc()
	metrics.RegistryCurrentVersion.Set(float64(version))

Timing an operation:

	timer := metrics.NewTimer()
	_, err := apply.Run(ctx, h, seq, ask)
	timer.ObserveDuration(metrics.ApplyDuration)

Exposing the /metrics endpoint from an embedder that runs one:

	http.Handle("/metrics", metrics.Handler())
	http.ListenAndServe(":9090", nil)

# Integration Points

This package is updated by:

  - pkg/apply: apply duration, outcome, and per-node counters
  - pkg/verify: verify duration, cycle count, and invalid-node counters
  - pkg/registry: current version gauge and advance counter
*/
package metrics

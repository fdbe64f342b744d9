// Package verify implements the verification sweep: re-checking every node
// of an Applied graph against the host, and deriving a fix sequence when
// drift is found.
package verify

import (
	"context"
	"fmt"

	"github.com/cuemby/foundry/pkg/apply"
	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/metrics"
	"github.com/cuemby/foundry/pkg/requirement"
)

// Failure is one requirement that failed its Verify check.
type Failure struct {
	Index       int
	Requirement requirement.Requirement
	Err         error
}

// Report is the outcome of a verify sweep.
type Report struct {
	Failures []Failure
}

// OK reports whether every node verified cleanly.
func (r Report) OK() bool { return len(r.Failures) == 0 }

// Run walks g in insertion order (order is immaterial for verification,
// unlike apply) and calls Verify on every node's requirement, collecting
// failures rather than stopping at the first one.
func Run(ctx context.Context, h host.Host, g *graph.Graph[graph.Applied]) (Report, error) {
	log := elog.WithComponent("verify")
	timer := metrics.NewTimer()

	var report Report
	for i, n := range g.Nodes() {
		if err := n.Requirement.Verify(ctx, h); err != nil {
			elog.WithKind(n.Requirement.Kind()).Warn().Err(err).Int("index", i).Msg("verify failed")
			report.Failures = append(report.Failures, Failure{Index: i, Requirement: n.Requirement, Err: err})
			metrics.VerifyInvalidTotal.WithLabelValues(n.Requirement.Kind()).Inc()
		}
	}

	metrics.VerifyCyclesTotal.Inc()
	timer.ObserveDuration(metrics.VerifyDuration)
	if report.OK() {
		log.Info().Int("nodes", g.Len()).Msg("verify passed")
	} else {
		log.Warn().Int("failures", len(report.Failures)).Msg("verify found drift")
	}
	return report, nil
}

// Fix derives an apply-only sequence from g (every node, dependency order,
// already expected to exist) and runs it, re-creating anything missing and
// reconciling anything present but mismatched.
func Fix(ctx context.Context, h host.Host, g *graph.Graph[graph.Applied]) (apply.Result, error) {
	seq, err := apply.GenerateFixSequence(g)
	if err != nil {
		return apply.Result{}, fmt.Errorf("verify fix: derive sequence: %w", err)
	}
	result, err := apply.Run(ctx, h, seq, apply.AlwaysRefuse)
	if err != nil {
		return apply.Result{}, fmt.Errorf("verify fix: %w", err)
	}
	return result, nil
}

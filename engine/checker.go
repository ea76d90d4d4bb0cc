package engine

import "context"

// Diagnostic is one checker's verdict plus explanatory detail (§4.E, §6
// "Exit verdict").
type Diagnostic struct {
	Checker string
	Valid   bool
	Detail  string
}

// Checker operates on the in-memory, frozen History (§4.E). Implementations
// must be a pure function of (history, properties): same inputs, same
// verdict (§8 idempotence property).
type Checker interface {
	Check(ops []Operation, props map[string]any) Diagnostic
}

// ArtifactChecker operates on on-disk artifacts a workload's modules
// produced, after all Checkers have run (§4.E).
type ArtifactChecker interface {
	CheckArtifact(ctx context.Context, props map[string]any) Diagnostic
}

// Verdict is the engine's exit verdict shape (§6).
type Verdict struct {
	Pass                  bool
	Aborted               bool
	PerCheckerDiagnostics []Diagnostic
	OperationCount        int
	DurationNS            int64
}

// CheckerPipeline evaluates every Checker, then every ArtifactChecker,
// against a frozen history — no short-circuit: every checker runs so every
// diagnostic is surfaced (§4.E).
type CheckerPipeline struct {
	Checkers         []CheckerBinding
	ArtifactCheckers []ArtifactCheckerBinding
	Metrics          *Metrics
}

// Evaluate runs the full pipeline and returns one Diagnostic per checker,
// checkers first, then artifact checkers. ops must be a frozen snapshot (Runner freezes the History before calling
// this).
func (p CheckerPipeline) Evaluate(ctx context.Context, ops []Operation) []Diagnostic {
	diags := make([]Diagnostic, 0, len(p.Checkers)+len(p.ArtifactCheckers))

	for _, cb := range p.Checkers {
		d := cb.Checker.Check(ops, cb.Props)
		d.Checker = cb.Name
		p.Metrics.observeCheckerVerdict(cb.Name, d.Valid)
		diags = append(diags, d)
	}

	for _, ab := range p.ArtifactCheckers {
		d := ab.Checker.CheckArtifact(ctx, ab.Props)
		d.Checker = ab.Name
		p.Metrics.observeCheckerVerdict(ab.Name, d.Valid)
		diags = append(diags, d)
	}

	return diags
}

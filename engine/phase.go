package engine

// PhaseNode is one entry in a phase's sub-phase group: either a leaf
// (a module instance to run) or a nested Phase (§3 "Phase"). Exactly one
// of Instance or SubPhase is non-nil.
type PhaseNode struct {
	InstanceName string
	Instance     *ModuleInstance // leaf
	SubPhase     *Phase          // nested sub-phase group
}

// Phase is an ordered sequence of sub-phase groups; the engine encodes a
// phase as a tree whose leaves are module instances (§3). For the
// scheduler's purposes a Phase is simply its flattened set of direct
// children — the "sub-phase group" ordering in the YAML shape only matters
// to the (out-of-scope) loader that builds this tree, since §4.C Step 5
// says the scheduler imposes no ordering among siblings beyond the
// lifetime rules.
type Phase struct {
	Children []PhaseNode
}

// Workload is the top-level tree the Runner executes (§3 "Workload").
//
// History must be the same *History every ModuleInstance under Phases was
// constructed with (NewModuleInstance takes a *History eagerly, before the
// tree is handed to a Runner) — the Runner appends its own sinks to this
// History rather than creating a disjoint one, or module Emits would land
// in a log the Runner never reads back.
type Workload struct {
	Phases           []*Phase
	History          *History
	Checkers         map[string]CheckerBinding
	ArtifactCheckers map[string]ArtifactCheckerBinding
}

// CheckerBinding pairs a constructed Checker with its display name and
// resolved property group, as produced by the registry from a CheckerSpec.
type CheckerBinding struct {
	Name    string
	Checker Checker
	Props   map[string]any
}

// ArtifactCheckerBinding pairs a constructed ArtifactChecker with its
// display name and resolved property group.
type ArtifactCheckerBinding struct {
	Name    string
	Checker ArtifactChecker
	Props   map[string]any
}

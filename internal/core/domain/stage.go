package domain

import "go.trai.ch/zerr"

// Stage is the lifecycle state of one (module, revision) pipeline.
type Stage string

const (
	// StagePending indicates the pipeline has not started.
	StagePending Stage = "pending"
	// StageVendoring indicates the upstream tree is being copied into the owning tree.
	StageVendoring Stage = "vendoring"
	// StageRewriting indicates namespace references are being rewritten.
	StageRewriting Stage = "rewriting"
	// StageRenaming indicates binary artifacts are being renamed.
	StageRenaming Stage = "renaming"
	// StageWrapperGeneration indicates the façade is being regenerated.
	StageWrapperGeneration Stage = "wrapper_generation"
	// StageDone indicates every stage completed.
	StageDone Stage = "done"
	// StageFailed indicates a stage returned an error.
	StageFailed Stage = "failed"
)

var stageOrder = map[Stage]int{
	StagePending:           0,
	StageVendoring:         1,
	StageRewriting:         2,
	StageRenaming:          3,
	StageWrapperGeneration: 4,
	StageDone:              5,
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// CanTransition reports whether a pipeline in state s may move to next.
// Stages advance strictly one step at a time; Failed is reachable from any non-terminal state.
func (s Stage) CanTransition(next Stage) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	cur, ok := stageOrder[s]
	if !ok {
		return false
	}
	nxt, ok := stageOrder[next]
	return ok && nxt == cur+1
}

// Transition returns next if the move is allowed.
func (s Stage) Transition(next Stage) (Stage, error) {
	if !s.CanTransition(next) {
		return s, zerr.With(Tag(ErrInvalidTransition, "from", string(s)), "to", string(next))
	}
	return next, nil
}

// NormalizeStage converts a string to a Stage, defaulting to pending if unknown.
func NormalizeStage(s string) Stage {
	switch st := Stage(s); st {
	case StageVendoring, StageRewriting, StageRenaming, StageWrapperGeneration, StageDone, StageFailed:
		return st
	default:
		return StagePending
	}
}

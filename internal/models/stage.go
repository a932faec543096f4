package models

// Stage is a named position in the lead pipeline.
type Stage string

const (
	StageUniverse  Stage = "universe"
	StageQualified Stage = "qualified"
	StageOutreach  Stage = "outreach"
	StagePitching  Stage = "pitching"
	StageMandates  Stage = "mandates"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
	StageRejected  Stage = "rejected"
)

// PipelineOrder lists the forward path of the pipeline. Won/lost/rejected are
// terminal and sit outside the forward path.
var PipelineOrder = []Stage{
	StageUniverse,
	StageQualified,
	StageOutreach,
	StagePitching,
	StageMandates,
	StageWon,
}

// AllStages lists every stage a list view can be opened for.
var AllStages = []Stage{
	StageUniverse,
	StageQualified,
	StageOutreach,
	StagePitching,
	StageMandates,
	StageWon,
	StageLost,
	StageRejected,
}

func (s Stage) Valid() bool {
	for _, st := range AllStages {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether a lead in this stage has left the active pipeline.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost || s == StageRejected
}

// index returns the position of s on the forward path, or -1 for terminal
// stages that are not part of it.
func (s Stage) index() int {
	for i, st := range PipelineOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s on the forward path. ok is false for
// the last forward stage and for terminal stages.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 || i+1 >= len(PipelineOrder) {
		return "", false
	}
	return PipelineOrder[i+1], true
}

// CanAdvanceTo reports whether moving from s to target is a legal forward
// move. Transitions are monotonic: exactly one step forward along the
// pipeline. Rejection is handled by CanReject, not here.
func (s Stage) CanAdvanceTo(target Stage) bool {
	next, ok := s.Next()
	return ok && next == target
}

// CanReject reports whether a lead in this stage may be rejected. Rejection
// is allowed from any non-terminal stage.
func (s Stage) CanReject() bool {
	return !s.Terminal() && s.Valid()
}

// Label returns the human-readable stage name used in screens.
func (s Stage) Label() string {
	switch s {
	case StageUniverse:
		return "Universe"
	case StageQualified:
		return "Qualified"
	case StageOutreach:
		return "Outreach"
	case StagePitching:
		return "Pitching"
	case StageMandates:
		return "Mandates"
	case StageWon:
		return "Won"
	case StageLost:
		return "Lost"
	case StageRejected:
		return "Rejected"
	}
	return string(s)
}

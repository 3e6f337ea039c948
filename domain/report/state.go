package report

import (
	"fmt"

	"datalens/domain/configuration"
	"datalens/domain/core"
)

// State is a phase of report assembly.
type State string

const (
	StateProfiling  State = "profiling"
	StateEnriching  State = "enriching"
	StateAssembling State = "assembling"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateProfiling:  {StateEnriching, StateFailed},
	StateEnriching:  {StateAssembling, StateFailed},
	StateAssembling: {StateDone, StateFailed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// SkipReason explains why an enabled section is absent without failing.
type SkipReason string

const (
	SkipUnavailable SkipReason = "unavailable"
	SkipCancelled   SkipReason = "cancelled"
)

// SectionFailure is the serializable form of core.SectionComputationFailed.
type SectionFailure struct {
	Section configuration.Section `json:"section"`
	Error   string                `json:"error"`
}

type SectionSkip struct {
	Section configuration.Section `json:"section"`
	Reason  SkipReason            `json:"reason"`
}

// Result bundles a report with the bookkeeping callers need to tell a
// disabled section from a failed or skipped one.
type Result struct {
	Report   *AnalysisReport  `json:"report"`
	State    State            `json:"state"`
	Failures []SectionFailure `json:"failed_sections,omitempty"`
	Skipped  []SectionSkip    `json:"skipped_sections,omitempty"`
	Partial  bool             `json:"partial"`
}

// FailureFor returns the recorded failure of a section, if any.
func (r *Result) FailureFor(s configuration.Section) (SectionFailure, bool) {
	for _, f := range r.Failures {
		if f.Section == s {
			return f, true
		}
	}
	return SectionFailure{}, false
}

// Record is a persisted report.
type Record struct {
	ID        core.ReportID  `json:"id"`
	OwnerID   core.OwnerID   `json:"owner_id"`
	Result    Result         `json:"result"`
	CreatedAt core.Timestamp `json:"created_at"`
}

func (r *Record) String() string {
	return fmt.Sprintf("report %s (%s)", r.ID, r.Result.Report.DatasetHandle)
}

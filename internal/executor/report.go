package executor

import (
	"time"

	"github.com/vk/factorgrid/internal/resultstore"
)

// Report describes one run of a plan.
type Report struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Stages   []StageReport `json:"stages"`
}

// StageReport is the outcome of one stage. Start and End are zero for
// stages that never ran.
type StageReport struct {
	Seq    int                `json:"seq"`
	Key    string             `json:"key"`
	Kind   string             `json:"kind"`
	Status resultstore.Status `json:"status"`
	Start  time.Time          `json:"start,omitzero"`
	End    time.Time          `json:"end,omitzero"`
	Error  string             `json:"error,omitempty"`
}

// Count returns the number of stages that ended with status.
func (r *Report) Count(status resultstore.Status) int {
	n := 0
	for _, s := range r.Stages {
		if s.Status == status {
			n++
		}
	}
	return n
}

func (n *node) report() StageReport {
	sr := StageReport{
		Seq:    n.stage.Seq,
		Key:    n.stage.Key,
		Kind:   n.stage.Kind.String(),
		Status: n.status(),
		Start:  n.start,
		End:    n.end,
	}
	if n.err != nil {
		sr.Error = n.err.Error()
	}
	return sr
}

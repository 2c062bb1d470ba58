package recorder

import "github.com/rohit191819/prediction/internal/model"

// RunInfo describes one process run of the control loop.
type RunInfo struct {
	RunID         string
	Symbol        string
	Strategy      string
	Settlement    string
	InitialEquity float64
}

// HaltEvent records the kill switch tripping.
type HaltEvent struct {
	RunID  string
	Cycle  int
	Reason string
	State  model.AccountState
}

// Recorder is an observation sink. It is write-only: nothing is read back
// on startup.
type Recorder interface {
	RecordRun(info *RunInfo) error
	RecordCycle(obs *model.Observation) error
	RecordHalt(evt *HaltEvent) error
	Close() error
}

package recorder

import "github.com/rohit191819/prediction/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunInfo) error             { return nil }
func (n *NoopRecorder) RecordCycle(_ *model.Observation) error { return nil }
func (n *NoopRecorder) RecordHalt(_ *HaltEvent) error          { return nil }
func (n *NoopRecorder) Close() error                           { return nil }

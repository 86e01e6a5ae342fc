package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReading(_ *Reading) error            { return nil }
func (n *NoopRecorder) RecordAlert(_ *AlertRecord) error          { return nil }
func (n *NoopRecorder) RecentAlerts(_ int) ([]AlertRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                              { return nil }

package metrics

// NoopMetrics is a no-operation implementation of Recorder.
// Used when metrics are disabled to avoid any recording overhead.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthorizationStarted()                    {}
func (n *NoopMetrics) RecordAuthorizationCallback(success bool)       {}
func (n *NoopMetrics) RecordTokenExchange(grant string, success bool) {}
func (n *NoopMetrics) RecordResourceCall(result string)               {}
func (n *NoopMetrics) RecordLogout()                                  {}

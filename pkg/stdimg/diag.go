package stdimg

import (
	"fmt"
	"sync"
)

// Sink receives intermediate buffers while an image is corrected. stage
// names the pipeline step and scale its neighborhood size (pyramid offset,
// smoothing rounds, or 0). Sinks get their own copy of the buffer.
type Sink interface {
	Record(stage string, scale int, g *Gray) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(stage string, scale int, g *Gray) error

func (f SinkFunc) Record(stage string, scale int, g *Gray) error { return f(stage, scale, g) }

// Record is one captured entry of a MemorySink.
type Record struct {
	Stage string
	Scale int
	Buf   *Gray
}

// Key formats the record as "stage@scale".
func (r Record) Key() string {
	return fmt.Sprintf("%s@%d", r.Stage, r.Scale)
}

// MemorySink keeps every recorded buffer in memory, in arrival order.
type MemorySink struct {
	mu      sync.Mutex
	Records []Record
}

func (m *MemorySink) Record(stage string, scale int, g *Gray) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, Record{Stage: stage, Scale: scale, Buf: g})
	return nil
}

// Find returns the first record with the given stage and scale.
func (m *MemorySink) Find(stage string, scale int) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Records {
		if r.Stage == stage && r.Scale == scale {
			return r, true
		}
	}
	return Record{}, false
}

// Stages lists the recorded keys in arrival order.
func (m *MemorySink) Stages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Records))
	for _, r := range m.Records {
		keys = append(keys, r.Key())
	}
	return keys
}

// record hands a copy of g to the configured sink. Sink failures are logged
// and otherwise ignored: diagnostics never change the result.
func (o Options) record(stage string, scale int, g *Gray) {
	if o.Sink == nil {
		return
	}
	if err := o.Sink.Record(stage, scale, g.Clone()); err != nil {
		o.Logger.Warn().Err(err).Str("stage", stage).Int("scale", scale).Msg("diagnostic sink failed")
	}
}

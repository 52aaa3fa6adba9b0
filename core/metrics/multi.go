package metrics

// MultiSink fans records out to several sinks, returning the first error
// encountered.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRun(r RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordWeekLoads(recs []WeekLoadRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordWeekLoads(recs); err != nil {
			return err
		}
	}
	return nil
}

package flatfile

import (
	"time"

	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

type instrumentedTable struct {
	Table
	name string
	m    *metrics.Metrics
}

// Instrument records read/write counts and latency for t under name.
func Instrument(t Table, name string, m *metrics.Metrics) Table {
	if m == nil {
		return t
	}
	return &instrumentedTable{Table: t, name: name, m: m}
}

func (t *instrumentedTable) Read() ([]string, [][]string, error) {
	start := time.Now()
	header, rows, err := t.Table.Read()
	t.observe("read", start, err)
	return header, rows, err
}

func (t *instrumentedTable) Write(header []string, rows [][]string) error {
	start := time.Now()
	err := t.Table.Write(header, rows)
	t.observe("write", start, err)
	return err
}

func (t *instrumentedTable) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.m.StorageOperations.WithLabelValues(t.name, op, status).Inc()
	t.m.StorageLatency.WithLabelValues(t.name, op).Observe(time.Since(start).Seconds())
}

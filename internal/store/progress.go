package store

import (
	"log/slog"
)

// Progress receives load progress from WriteDocuments. Start is called once
// before the first chunk with the expected total (0 when unknown), Add after
// every committed chunk, and Finish once when the load ends, successfully
// or not.
type Progress interface {
	Start(total int)
	Add(n int)
	Finish()
}

// LogProgress reports progress as structured log lines.
type LogProgress struct {
	Logger *slog.Logger
	LoadID string

	total int
	done  int
}

func (p *LogProgress) Start(total int) {
	p.total = total
	p.done = 0
	attrs := []any{"load_id", p.LoadID}
	if total > 0 {
		attrs = append(attrs, "total", total)
	}
	p.logger().Info("load started", attrs...)
}

func (p *LogProgress) Add(n int) {
	p.done += n
	attrs := []any{"load_id", p.LoadID, "documents", p.done}
	if p.total > 0 {
		attrs = append(attrs, "total", p.total)
	}
	p.logger().Info("chunk committed", attrs...)
}

func (p *LogProgress) Finish() {
	p.logger().Info("load finished", "load_id", p.LoadID, "documents", p.done)
}

func (p *LogProgress) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Add(int)   {}
func (nopProgress) Finish()   {}

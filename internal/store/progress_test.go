package store

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logRecords runs fn against a LogProgress writing JSON lines and returns
// the decoded records.
func logRecords(t *testing.T, fn func(p *LogProgress)) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	p := &LogProgress{Logger: slog.New(slog.NewJSONHandler(&buf, nil)), LoadID: "load-7"}
	fn(p)

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestLogProgress_KnownTotal(t *testing.T) {
	records := logRecords(t, func(p *LogProgress) {
		p.Start(5)
		p.Add(3)
		p.Add(2)
		p.Finish()
	})
	require.Len(t, records, 4)

	assert.Equal(t, "load started", records[0]["msg"])
	assert.Equal(t, "load-7", records[0]["load_id"])
	assert.Equal(t, float64(5), records[0]["total"])
	assert.Equal(t, float64(3), records[1]["documents"])
	assert.Equal(t, float64(5), records[2]["total"])
	assert.Equal(t, "load finished", records[3]["msg"])
	assert.Equal(t, float64(5), records[3]["documents"])
}

func TestLogProgress_UnknownTotalOmitted(t *testing.T) {
	records := logRecords(t, func(p *LogProgress) {
		p.Start(0)
		p.Add(4)
		p.Finish()
	})
	require.Len(t, records, 3)

	assert.NotContains(t, records[0], "total")
	assert.NotContains(t, records[1], "total")
	assert.Equal(t, float64(4), records[1]["documents"])
}

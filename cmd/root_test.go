package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/mailclean/internal/report"
	"github.com/sells-group/mailclean/internal/store"
)

func TestOutputPathFor(t *testing.T) {
	assert.Equal(t, "leads-cleaned.csv", outputPathFor("leads.csv"))
	assert.Equal(t, "data/book-cleaned.xlsx", outputPathFor("data/book.xlsx"))
	assert.Equal(t, "noext-cleaned", outputPathFor("noext"))
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, report.Summary{Total: 10, Accepted: 7, Suppressed: 2, Duplicates: 1})

	out := buf.String()
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "Suppressed")
}

func TestFormatRunsList(t *testing.T) {
	sum := &report.Summary{Total: 42, Suppressed: 3}
	runs := []store.Run{
		{
			ID:        "0b5c8a31-9f21-4f52-8a3e-000000000000",
			Input:     "leads.csv",
			Status:    store.RunStatusComplete,
			Summary:   sum,
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "0b5c8a31")
	assert.NotContains(t, out, "9f21-4f52", "id should be truncated")
	assert.Contains(t, out, "leads.csv")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "42")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcd1234", truncateID("abcd1234efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

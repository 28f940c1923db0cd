package ui

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

func TestFormatNumber(t *testing.T) {
	for in, want := range map[uint64]string{
		0:                    "0",
		999:                  "999",
		1000:                 "1,000",
		1234567:              "1,234,567",
		18446744073709551615: "18,446,744,073,709,551,615",
	} {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "3h 7m", FormatDuration(3*time.Hour+7*time.Minute))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "12/s", FormatRate(12))
	assert.Equal(t, "1.5K/s", FormatRate(1500))
	assert.Equal(t, "2.5M/s", FormatRate(2500000))
}

func withStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevLevel := Stderr, GlobalLogLevel
	Stderr = &buf
	t.Cleanup(func() {
		Stderr, GlobalLogLevel = prev, prevLevel
	})
	return &buf
}

func TestLogLevels(t *testing.T) {
	buf := withStderr(t)

	Logf("Driver", "hello %d", 1)
	Debugf("Driver", "hidden")
	line := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} \[Driver\] INFO hello 1\n$`)
	assert.Regexp(t, line, buf.String())

	buf.Reset()
	SetVerbose()
	assert.True(t, IsLogLevelDebug())
	Debugf("Driver", "shown")
	assert.Contains(t, buf.String(), "[Driver] DEBUG shown")

	buf.Reset()
	SetQuiet()
	Logf("Driver", "muted")
	Noticef("Driver", "muted")
	Errorf("Driver", "boom")
	assert.NotContains(t, buf.String(), "muted")
	assert.Contains(t, buf.String(), "[Driver] ERROR boom")
}

func TestProgressQuiet(t *testing.T) {
	buf := withStderr(t)
	p := NewProgress(10, true)
	p.Block(&generator.BlockResult{Records: make([]generator.Record, 10)})
	p.Finish()
	assert.Empty(t, buf.String())
}

func TestPrintSummary(t *testing.T) {
	buf := withStderr(t)
	PrintSummary(&generator.Summary{Points: 5001, Elapsed: 2 * time.Second})
	assert.Contains(t, buf.String(), "5,001 points")
	assert.Contains(t, buf.String(), "2.5K/s")
}

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	logcontext "github.com/va6996/travelingman-mcp/context"
)

func captureOutput(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(level)
	SetOutput(&buf)
	t.Cleanup(func() { Init("info") })
	return &buf
}

func TestFormatterIncludesRequestAndTool(t *testing.T) {
	buf := captureOutput(t, "info")

	ctx := logcontext.WithRequestID(context.Background(), "req-42")
	ctx = logcontext.WithToolName(ctx, "search_hotels")
	Infof(ctx, "searching %s", "PAR")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "searching PAR")
	assert.Contains(t, out, "[req:req-42]")
	assert.Contains(t, out, "[tool:search_hotels]")
	assert.Contains(t, out, "log_test.go:")
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, "warn")

	Infof(context.Background(), "hidden")
	Warnf(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	captureOutput(t, "loud")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestFormatterSortsExtraFields(t *testing.T) {
	f := &CustomFormatter{TimestampFormat: "15:04"}
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "hello"
	entry.Level = logrus.InfoLevel
	entry.Data = logrus.Fields{"b": 2, "a": 1, requestIDField: ""}

	out, err := f.Format(entry)
	assert.NoError(t, err)
	assert.Contains(t, string(out), "hello a=1 b=2\n")
	assert.NotContains(t, string(out), "[req:")
}

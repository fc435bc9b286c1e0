package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatKVs(t *testing.T) {
	require.Equal(t, " a=1 b=two", formatKVs("a", 1, "b", "two"))
	require.Equal(t, ` msg="hello world"`, formatKVs("msg", "hello world"))
	require.Equal(t, " a=1", formatKVs("a", 1, "dangling"))
	require.Equal(t, "", formatKVs(12, "skipped"))
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	Info("hidden")
	require.Empty(t, buf.String())

	Warn("shown", "k", "v")
	require.Contains(t, buf.String(), "[WARN] shown k=v")

	Error("failed", errors.New("boom"))
	require.Contains(t, buf.String(), "[ERROR] failed err=boom")
	require.False(t, DebugEnabled())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel(" error "))
	require.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

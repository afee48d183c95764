package apilog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_calls.log")

	l, err := New(path)
	require.NoError(t, err)

	start := l.Request(Call{
		Model:       "test-model",
		Temperature: 0.7,
		Messages:    []string{"system instruction", "user instruction"},
		Params:      map[string]string{"use_case": "Login"},
	})
	l.Response(start, "success", 42, nil)
	l.Response(start, "error", 0, errors.New("boom"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "API REQUEST: test-model")
	assert.Contains(t, content, "Temperature: 0.7")
	assert.Contains(t, content, "Message count: 2")
	assert.Contains(t, content, "Last message preview: user instruction")
	assert.Contains(t, content, "Param use_case: Login")
	assert.Contains(t, content, "API RESPONSE: success")
	assert.Contains(t, content, "Content length: 42 chars")
	assert.Contains(t, content, "Error: boom")
	assert.Contains(t, content, "api.llm")
}

func TestLogger_PreviewTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_calls.log")

	l, err := New(path)
	require.NoError(t, err)

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	l.Request(Call{Model: "m", Messages: []string{string(long)}})
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	preview := string(long[:previewLimit]) + "..."
	assert.Contains(t, string(data), preview)
	assert.NotContains(t, string(data), string(long))
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger

	start := l.Request(Call{Model: "m"})
	assert.WithinDuration(t, time.Now(), start, time.Second)

	l.Response(start, "error", 0, errors.New("ignored"))
	l.ErrorWithStack("ignored", errors.New("ignored"))
	assert.NoError(t, l.Close())
}

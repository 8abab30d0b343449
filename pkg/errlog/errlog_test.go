package errlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedactNested(t *testing.T) {
	input := map[string]any{
		"message": "hello",
		"Password": "hunter2",
		"nested": map[string]any{
			"apiKey": "k",
			"list": []any{
				map[string]any{"API_KEY": "k2", "keep": 1.0},
			},
		},
		"secret": map[string]any{"deep": "value"},
	}

	out := Redact(input).(map[string]any)

	require.Equal(t, "hello", out["message"])
	require.Equal(t, Redacted, out["Password"])
	require.Equal(t, Redacted, out["secret"])

	nested := out["nested"].(map[string]any)
	require.Equal(t, Redacted, nested["apiKey"])

	item := nested["list"].([]any)[0].(map[string]any)
	require.Equal(t, Redacted, item["API_KEY"])
	require.Equal(t, 1.0, item["keep"])

	// input is untouched
	require.Equal(t, "hunter2", input["Password"])
}

func TestRedactJSON(t *testing.T) {
	out := RedactJSON([]byte(`{"text":"hi","token":"abc"}`)).(map[string]any)
	require.Equal(t, Redacted, out["token"])
	require.Equal(t, "hi", out["text"])

	require.Equal(t, "not json", RedactJSON([]byte("not json")))
}

func TestWriterDailyFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2029, 8, 29, 23, 59, 0, 0, time.UTC)

	w, err := New(dir, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	defer w.Close()

	logger := w.Logger()
	logger.Error("upstream failed", "status", 502)

	now = now.Add(2 * time.Minute)
	logger.Error("second day")

	first := readLines(t, filepath.Join(dir, "errors-2029-08-29.log"))
	require.Len(t, first, 1)
	require.Equal(t, "upstream failed", first[0]["msg"])
	require.Equal(t, 502.0, first[0]["status"])

	second := readLines(t, filepath.Join(dir, "errors-2029-08-30.log"))
	require.Len(t, second, 1)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2029, 8, 29, 12, 0, 0, 0, time.UTC)

	for _, name := range []string{"errors-2029-08-01.log", "errors-2029-08-20.log", "errors-2029-08-29.log", "other.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644))
	}

	w, err := New(dir, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	removed, err := w.Prune(14 * 24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, "errors-2029-08-01.log"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "other.log"))
	require.NoError(t, err)
}

func readLines(t *testing.T, path string) []map[string]any {
	f, err := os.Open(path)
	require.NoError(t, err)

	defer f.Close()

	var result []map[string]any

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))

		result = append(result, m)
	}

	return result
}

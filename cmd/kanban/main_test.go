package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes a fresh command tree, the way each CLI invocation would.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func taskIDFrom(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, "unexpected add output: %q", out)
	require.True(t, strings.HasPrefix(fields[1], "task_"), "unexpected add output: %q", out)
	return fields[1]
}

func TestCLI_AddListDone(t *testing.T) {
	t.Setenv("KANBAN_DATA_DIR", t.TempDir())
	t.Setenv("KANBAN_USER", "morgan")

	out, err := run(t, "add", "water", "plants")
	require.NoError(t, err)
	id := taskIDFrom(t, out)

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "water plants")
	assert.Contains(t, out, id)

	out, err = run(t, "start", id)
	require.NoError(t, err)
	assert.Contains(t, out, "started")

	out, err = run(t, "done", id)
	require.NoError(t, err)
	assert.Contains(t, out, "done")

	// Done tasks stay hidden unless asked for.
	out, err = run(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	out, err = run(t, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, "points")
	require.NoError(t, err)
	assert.Contains(t, out, "morgan")
}

func TestCLI_DependencyAndRemoveFlow(t *testing.T) {
	t.Setenv("KANBAN_DATA_DIR", t.TempDir())

	out, err := run(t, "add", "paint room")
	require.NoError(t, err)
	paint := taskIDFrom(t, out)

	out, err = run(t, "add", "buy paint")
	require.NoError(t, err)
	buy := taskIDFrom(t, out)

	_, err = run(t, "dep", "add", paint, buy)
	require.NoError(t, err)

	// Cycle must be refused.
	_, err = run(t, "dep", "add", buy, paint)
	require.Error(t, err)

	// Deleting a depended-on task needs --force.
	_, err = run(t, "rm", buy)
	require.Error(t, err)

	out, err = run(t, "rm", buy, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+buy)

	out, err = run(t, "show", paint)
	require.NoError(t, err)
	assert.NotContains(t, out, "depends on:")
}

func TestCLI_WIPAndStatus(t *testing.T) {
	t.Setenv("KANBAN_DATA_DIR", t.TempDir())

	out, err := run(t, "add", "first")
	require.NoError(t, err)
	first := taskIDFrom(t, out)

	out, err = run(t, "add", "second")
	require.NoError(t, err)
	second := taskIDFrom(t, out)

	_, err = run(t, "wip", "set", "in_progress", "1")
	require.NoError(t, err)

	_, err = run(t, "start", first)
	require.NoError(t, err)

	_, err = run(t, "start", second)
	require.Error(t, err, "second start must hit the limit")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "2 tasks")

	// Recorded activity survives across invocations via events.json.
	assert.Contains(t, out, "activity, last 7 days:")
	assert.Contains(t, out, "task_created")
	assert.Contains(t, out, "state_changed")

	_, err = run(t, "wip", "clear", "in_progress")
	require.NoError(t, err)

	_, err = run(t, "start", second)
	require.NoError(t, err)
}

func TestCLI_RejectsBadInput(t *testing.T) {
	t.Setenv("KANBAN_DATA_DIR", t.TempDir())

	_, err := run(t, "add", "x", "--due", "not-a-date")
	require.Error(t, err)

	_, err = run(t, "add", "x", "--rolling")
	require.Error(t, err)

	_, err = run(t, "show", "task_missing")
	require.Error(t, err)
}

func TestParseWhen(t *testing.T) {
	got, err := parseWhen("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, 0, got.Hour())

	got, err = parseWhen("2026-03-02 17:30")
	require.NoError(t, err)
	assert.Equal(t, 17, got.Hour())

	_, err = parseWhen("soon")
	require.Error(t, err)
}

func TestParseWeekdays(t *testing.T) {
	got, err := parseWeekdays("mon, Thu")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, got)

	_, err = parseWeekdays("mon,funday")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijkl", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	// Rune counting, not bytes: each of these glyphs is multibyte.
	assert.Equal(t, "héllø wö...", truncate("héllø wörld über", 11))
	assert.Equal(t, "日本語", truncate("日本語のタイトル", 3))
	assert.Equal(t, "日本語のタイトル", truncate("日本語のタイトル", 8))
}

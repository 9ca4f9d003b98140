package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/easel"
)

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	w, err := easel.NewWorld(easel.NopBackend{}, easel.DefaultConfig(),
		easel.NewRectangle("card", 10, 10, 100, 60),
		easel.NewGroup("pair",
			easel.NewRectangle("left", 200, 0, 40, 40),
			easel.NewRectangle("right", 260, 0, 40, 40),
		),
	)
	require.NoError(t, err)
	defer w.Close()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, writeJSON(path, w.ToData()))
	return path
}

func writeHistory(t *testing.T, dir string, cops ...easel.COp) string {
	t.Helper()
	var d easel.RecordStackData
	for _, c := range cops {
		d.Records = append(d.Records, easel.Record{COp: c})
	}
	path := filepath.Join(dir, "history.json")
	require.NoError(t, writeJSON(path, d))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errw bytes.Buffer
	root := New(&out, &errw).RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errw.String(), err
}

func TestInspect(t *testing.T) {
	scene := writeScene(t, t.TempDir())
	out, _, err := run(t, "inspect", scene)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rectangle card z=0 [10.00 10.00 100.00 60.00]", lines[0])
	assert.Equal(t, "group pair z=0 [200.00 0.00 100.00 40.00]", lines[1])
	assert.Equal(t, "  rectangle left z=0 [200.00 0.00 40.00 40.00]", lines[2])
}

func TestInspectMissingFile(t *testing.T) {
	_, _, err := run(t, "inspect", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestHit(t *testing.T) {
	scene := writeScene(t, t.TempDir())

	out, _, err := run(t, "hit", scene, "270", "20")
	require.NoError(t, err)
	assert.Equal(t, "right\n", out)

	out, _, err = run(t, "hit", scene, "1000", "1000")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = run(t, "hit", scene, "abc", "1")
	assert.ErrorContains(t, err, "x:")
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir)
	history := writeHistory(t, dir,
		easel.MoveTo("card", easel.Point{X: 10, Y: 10}, easel.Point{X: 50, Y: 50}),
		easel.MoveTo("left", easel.Point{X: 200, Y: 0}, easel.Point{X: 0, Y: 0}),
	)
	outPath := filepath.Join(dir, "out.json")

	out, errOut, err := run(t, "replay", scene, history, "--undo", "1", "-o", outPath, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "card 50.00 50.00\n")
	assert.Contains(t, out, "left 200.00 0.00\n")
	assert.Contains(t, errOut, "Replayed 2 records")

	var saved easel.WorldData
	require.NoError(t, readJSON(outPath, &saved))
	assert.Len(t, saved.History.Records, 1)
	assert.Len(t, saved.History.UndoRecords, 1)
}

func TestReplayTooManyUndos(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir)
	history := writeHistory(t, dir, easel.MoveTo("card", easel.Point{X: 10, Y: 10}, easel.Point{X: 0, Y: 0}))

	out, errOut, err := run(t, "replay", scene, history, "--undo", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "card 10.00 10.00\n")
	assert.Contains(t, errOut, "fewer records than requested undos")
}

func TestReplayUnknownAlias(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir)
	history := writeHistory(t, dir, easel.MoveTo("ghost", easel.Point{}, easel.Point{X: 1, Y: 1}))

	_, _, err := run(t, "replay", scene, history)
	require.Error(t, err)
	assert.True(t, easel.IsCode(err, easel.CodeNodeNotFound))
	assert.Contains(t, err.Error(), "record 0")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	scene := writeScene(t, dir)
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[retry]\nattempts = 0\n"), 0o644))

	_, _, err := run(t, "-c", bad, "inspect", scene)
	require.Error(t, err)
	assert.True(t, easel.IsCode(err, easel.CodeInvalidConfig))
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc")
	defer SetVersion("dev", "")
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "easel 1.2.3 abc\n", out)
}

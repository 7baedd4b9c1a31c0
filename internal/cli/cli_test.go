package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = "/cfg/breathe/config.yaml"

// fastClock ticks every millisecond whatever quantum the engine asks for,
// so exercises run in a fraction of their nominal time.
type fastClock struct{}

func (fastClock) NewTicker(time.Duration) exercise.Ticker {
	return fastTicker{time.NewTicker(time.Millisecond)}
}

type fastTicker struct{ t *time.Ticker }

func (f fastTicker) C() <-chan time.Time { return f.t.C }
func (f fastTicker) Stop()               { f.t.Stop() }

type harness struct {
	t   *testing.T
	env *env
	db  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	e := newEnv(afero.NewMemMapFs())
	e.clock = fastClock{}
	t.Cleanup(e.close)
	return &harness{t: t, env: e, db: filepath.Join(t.TempDir(), "breathe.db")}
}

func (h *harness) exec(args ...string) (string, error) {
	h.t.Helper()
	root := newRoot(h.env)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", testConfig, "--db", h.db}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustExec(args ...string) string {
	h.t.Helper()
	out, err := h.exec(args...)
	require.NoError(h.t, err, "breathe %s", strings.Join(args, " "))
	return out
}

func TestRootCommands(t *testing.T) {
	root := newRoot(newEnv(afero.NewMemMapFs()))

	want := []string{"run", "patterns", "import", "stats", "export", "config"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Short, "%s needs a short description", name)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("db"))
}

func TestRunRecordsCompletedSession(t *testing.T) {
	h := newHarness(t)

	out := h.mustExec("run", "--pattern", "box", "--cycles", "1", "--quantum", "1s")

	assert.Contains(t, out, "Box Breathing (4-4-4-4) × 1, 00:16")
	assert.Contains(t, out, "00:00  Inhale")
	assert.Contains(t, out, "00:04  Hold")
	assert.Contains(t, out, "00:08  Exhale")
	assert.Contains(t, out, "00:12  Hold")
	assert.Contains(t, out, "done in 00:16")

	var stats statsOutput
	require.NoError(t, json.Unmarshal([]byte(h.mustExec("stats", "--json")), &stats))
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 10, stats.DailyGoalMin)
}

func TestRunRelaxIncludesBookends(t *testing.T) {
	h := newHarness(t)

	out := h.mustExec("run", "-p", "relax", "-c", "1", "--quantum", "1s")

	// prologue (3) + one loop (3) + epilogue (3)
	assert.Equal(t, 9, strings.Count(out, "\n  "))
	assert.Contains(t, out, "00:12  Inhale")
	assert.Contains(t, out, "done in 00:43")
}

func TestRunUnknownPattern(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("run", "--pattern", "nope", "--cycles", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown pattern "nope"`)
}

func TestImportListExportRemove(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.env.fs, "/in.yaml", []byte(`
patterns:
  - name: Calm
    inhale: 4
    hold_in: 2
    exhale: 6
`), 0o644))

	out := h.mustExec("import", "/in.yaml")
	assert.Contains(t, out, "imported Calm (4-2-6) as custom-")
	id := strings.TrimSpace(out[strings.Index(out, "custom-"):])

	list := h.mustExec("patterns")
	assert.Contains(t, list, "Box Breathing")
	assert.Contains(t, list, "Calm")
	assert.Contains(t, list, "custom")

	out = h.mustExec("patterns", "export", "/out.yaml")
	assert.Contains(t, out, "wrote 1 patterns")
	exported, err := catalog.LoadFile(h.env.fs, "/out.yaml")
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, id, exported[0].ID)

	h.mustExec("patterns", "rm", id)
	assert.NotContains(t, h.mustExec("patterns"), "Calm")
}

func TestImportInvalidFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.env.fs, "/bad.yaml", []byte(`
patterns:
  - name: Broken
    inhale: 0
    exhale: 4
`), 0o644))

	_, err := h.exec("import", "/bad.yaml")
	require.ErrorIs(t, err, catalog.ErrInvalidMethod)

	_, err = h.exec("import", "/missing.yaml")
	require.Error(t, err)
}

func TestPatternsRemoveBuiltin(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("patterns", "rm", "box")
	require.ErrorIs(t, err, catalog.ErrInvalidMethod)
}

func TestExportSessions(t *testing.T) {
	h := newHarness(t)
	h.mustExec("run", "--pattern", "balance", "--cycles", "1", "--quantum", "1s")

	out := h.mustExec("export", "--format", "csv", "--out", "/sessions.csv")
	assert.Contains(t, out, "exported 1 sessions to /sessions.csv")
	data, err := afero.ReadFile(h.env.fs, "/sessions.csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Coherent")

	h.mustExec("export", "-f", "json", "-o", "/sessions.json", "--pattern", "box")
	data, err = afero.ReadFile(h.env.fs, "/sessions.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 0`)
}

func TestExportBadFormat(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)

	out := h.mustExec("config", "init")
	assert.Contains(t, out, "wrote "+testConfig)

	_, err := h.exec("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	h.mustExec("config", "init", "--force")

	show := h.mustExec("config")
	assert.Contains(t, show, "tick_ms:   100")
	assert.Contains(t, show, "log_level: info")
}

func TestConfigFileIsApplied(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.env.fs, testConfig, []byte(`
log_file: /logs/breathe.log
log_level: debug
tick_ms: 500
`), 0o644))

	show := h.mustExec("config")
	assert.Contains(t, show, "tick_ms:   500")
	assert.Equal(t, 500*time.Millisecond, h.env.quantum())

	h.mustExec("patterns")
	h.env.close()
	logs, err := afero.ReadFile(h.env.fs, "/logs/breathe.log")
	require.NoError(t, err)
	assert.Contains(t, string(logs), "store opened")
}

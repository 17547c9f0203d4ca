package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/etable/pkg/etable"
	"github.com/mesh-intelligence/etable/pkg/types"
)

// testEnv is an isolated config and data directory for in-process runs of
// the root command.
type testEnv struct {
	t         *testing.T
	dir       string
	configDir string
	dataDir   string
}

type cmdResult struct {
	stdout   string
	stderr   string
	exitCode int
}

func newTestEnv(t *testing.T, backend string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	e := &testEnv{
		t:         t,
		dir:       dir,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	cfg := "backend: " + backend + "\ndata_dir: " + e.dataDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(cfg), 0o644))
	return e
}

// path returns name inside the environment directory.
func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	p := e.path(name)
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (e *testEnv) readFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(e.path(name))
	require.NoError(e.t, err)
	return string(data)
}

// runWithInput executes etable with args, feeding stdin to the console.
func (e *testEnv) runWithInput(stdin string, args ...string) cmdResult {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	all := append([]string{"--config-dir", e.configDir}, args...)
	code := run(context.Background(), root, all, &stderr)
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), exitCode: code}
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	res := e.run(args...)
	require.Equal(e.t, exitSuccess, res.exitCode, "etable %v\nstderr: %s", args, res.stderr)
	return res.stdout
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	out := e.mustRun("version")
	assert.Contains(t, out, "etable v"+etable.Version)
	assert.Contains(t, out, etable.ModulePath)
}

func TestInit_WritesConfigAndStore(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	freshConfig := e.path("fresh-config")
	dataDir := e.path("fresh-data")

	res := e.run("--config-dir", freshConfig, "--data-dir", dataDir, "init")
	require.Equal(t, exitSuccess, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, "etable initialized")

	data, err := os.ReadFile(filepath.Join(freshConfig, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "data_dir: "+dataDir)
	assert.Contains(t, string(data), "default_rows: 10")
	assert.FileExists(t, filepath.Join(dataDir, "sheets.jsonl"))

	// A second init keeps the existing file.
	require.NoError(t, os.WriteFile(filepath.Join(freshConfig, configFileExt), []byte("backend: bolt\n"), 0o644))
	res = e.run("--config-dir", freshConfig, "--data-dir", dataDir, "init")
	require.Equal(t, exitSuccess, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, "backend: bolt")
	assert.FileExists(t, filepath.Join(dataDir, "sheets.bolt"))
}

func TestEval(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)

	tests := []struct {
		input    string
		want     string
		exitCode int
	}{
		{input: "=10/2", want: "5"},
		{input: "=2^3^2", want: "64"},
		{input: "3.14159", want: "3.142"},
		{input: `"quoted"`, want: `"quoted"`},
		{input: "=10/0", want: "ERROR", exitCode: exitUserError},
		{input: "=-3+4", want: "ERROR", exitCode: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := e.run("eval", "--", tt.input)
			assert.Equal(t, tt.exitCode, res.exitCode, res.stderr)
			assert.Equal(t, tt.want+"\n", res.stdout)
		})
	}
}

func TestEval_WithFileAndJSON(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	file := e.writeFile("grid.txt", "4,5,\n")

	assert.Equal(t, "20\n", e.mustRun("eval", "--file", file, "=R1C1*R1C2"))

	out := e.mustRun("--json", "eval", "=R9C9+1")
	var res evalJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "number", res.Kind)
	assert.Equal(t, 1.0, res.Value)
	assert.Empty(t, res.Error)

	r := e.run("--json", "eval", "nonsense")
	assert.Equal(t, exitUserError, r.exitCode)
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &res))
	assert.Equal(t, "error", res.Kind)
	assert.Equal(t, "invalid type", res.Error)
}

func TestShow(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	file := e.writeFile("show.txt", "10,\"Hello world!\",3.14159,\n21,oops,\n")

	res := e.run("show", file)
	require.Equal(t, exitSuccess, res.exitCode, res.stderr)
	assert.Equal(t, "| 10 | Hello world! | 3.142 |\n| 21 |        ERROR |       |\n", res.stdout)
	assert.Contains(t, res.stderr, "warning: cell R2C2: invalid type")

	assert.Equal(t, "10,\"Hello world!\",3.142,\n21,ERROR,,\n", e.mustRun("show", "--raw", file))

	var tj tableJSON
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("--json", "show", file)), &tj))
	assert.Equal(t, 2, tj.Rows)
	assert.Equal(t, []string{"21", "ERROR", ""}, tj.Cells[1])

	assert.Equal(t, exitUserError, e.run("show", e.path("missing.txt")).exitCode)
	assert.Equal(t, exitUserError, e.run("show", e.path("bad.csv")).exitCode)
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	in := e.writeFile("in.txt", "1,\"one\",\n2.5,=R1C1+R2C1,\n")

	assert.Contains(t, e.mustRun("export", in, e.path("book.xlsx")), "Exported 2x2 table")
	assert.Contains(t, e.mustRun("import", e.path("book.xlsx"), e.path("out.txt")), "Imported 2x2 table")
	assert.Equal(t, "1,\"one\",\n2.5,3.5,\n", e.readFile("out.txt"))

	assert.Equal(t, exitUserError, e.run("export", in, e.path("book.txt")).exitCode)
	assert.Equal(t, exitUserError, e.run("import", e.path("book.xlsx"), e.path("out.xlsx")).exitCode)
}

func TestSheetLifecycle(t *testing.T) {
	for _, backend := range []string{types.BackendSQLite, types.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			e := newTestEnv(t, backend)
			file := e.writeFile("budget.txt", "100,\"rent\",\n=R1C1*12,\n")

			assert.Contains(t, e.mustRun("sheet", "save", "budget", file), "Saved sheet budget")
			assert.Contains(t, e.mustRun("sheet", "list"), "budget")

			var sheets []types.Sheet
			require.NoError(t, json.Unmarshal([]byte(e.mustRun("--json", "sheet", "list")), &sheets))
			require.Len(t, sheets, 1)
			assert.Equal(t, 2, sheets[0].Rows)

			assert.Equal(t, "|  100 | rent |\n| 1200 |      |\n", e.mustRun("sheet", "show", "budget"))
			assert.Equal(t, "100,\"rent\",\n1200,,\n", e.mustRun("sheet", "show", "--raw", "budget"))

			e.mustRun("sheet", "export", "budget", e.path("restored.txt"))
			assert.Equal(t, "100,\"rent\",\n1200,,\n", e.readFile("restored.txt"))

			assert.Contains(t, e.mustRun("sheet", "delete", "budget"), "Deleted sheet budget")
			assert.Equal(t, exitUserError, e.run("sheet", "show", "budget").exitCode)
			assert.Equal(t, exitUserError, e.run("sheet", "delete", "budget").exitCode)

			require.NoError(t, json.Unmarshal([]byte(e.mustRun("--json", "sheet", "list")), &sheets))
			assert.Empty(t, sheets)
		})
	}
}

func TestConsole_FromStdin(t *testing.T) {
	e := newTestEnv(t, types.BackendBolt)
	file := e.writeFile("console.txt", "1,2,\n")

	script := strings.Join([]string{
		"edit 1 2 =R1C1+41",
		"save",
		"store snap",
		"exit",
		"edit 1 1 999",
	}, "\n") + "\n"
	res := e.runWithInput(script, "console", file)
	require.Equal(t, exitSuccess, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, "Successfully opened file")
	assert.Contains(t, res.stdout, "Programme terminated successfully!")
	assert.Equal(t, "1,42,\n", e.readFile("console.txt"))

	assert.Equal(t, "1,42,\n", e.mustRun("sheet", "show", "--raw", "snap"))
}

func TestConsole_RootWithoutSubcommand(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	res := e.runWithInput("help\n")
	require.Equal(t, exitSuccess, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, "saveas <file>")
}

func TestGlobalFlagErrors(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)

	res := e.run("--log-level", "loud", "version")
	assert.Equal(t, exitUserError, res.exitCode)
	assert.Contains(t, res.stderr, "invalid --log-level")

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("delimiter: ';;'\n"), 0o644))
	res = e.run("version")
	assert.Equal(t, exitSysError, res.exitCode)
	assert.Contains(t, res.stderr, "delimiter")
}

func TestConfig_CustomDelimiter(t *testing.T) {
	e := newTestEnv(t, types.BackendSQLite)
	cfg := "backend: sqlite\ndata_dir: " + e.dataDir + "\ndelimiter: ';'\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(cfg), 0o644))

	file := e.writeFile("semi.txt", "1;2;\n")
	assert.Equal(t, "1;2;\n", e.mustRun("show", "--raw", file))
}

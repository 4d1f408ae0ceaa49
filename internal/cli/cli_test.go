package cli_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paveg/clump/internal/cli"
	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const people = "testdata/people.jsonl"

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	previous := slog.Default()
	t.Cleanup(func() {
		config.SetGlobalConfig(config.NewConfig())
		slog.SetDefault(previous)
		collection.SetLogger(nil)
	})

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "clump", cmd.Use)

	for _, name := range []string{"query", "join", "keys", "head", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := cli.NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	logFormat := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, logFormat)
	assert.Equal(t, "text", logFormat.DefValue)
}

func TestQuery_GroupAggregate(t *testing.T) {
	stdout, _, err := run(t, "query", people,
		"--where", "salary >= 80",
		"--group-by", "dept",
		"--agg", "total=salary:sum",
		"--agg", "n=name:count",
		"--sort", "total", "--reverse",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"dept":"eng","n":2,"total":180}`,
		`{"dept":"ops","n":1,"total":90}`,
	}, lines(stdout))
}

func TestQuery_DefaultAggregationName(t *testing.T) {
	stdout, _, err := run(t, "query", people, "--agg", "salary:max")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"max_salary":100}`}, lines(stdout))
}

func TestQuery_Transform(t *testing.T) {
	stdout, _, err := run(t, "query", people,
		"--group-by", "dept",
		"--agg", "top=salary:max",
		"--transform",
		"--select", "name,top",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"name":"ann","top":100}`,
		`{"name":"bob","top":100}`,
		`{"name":"cat","top":90}`,
		`{"name":"dan","top":90}`,
		`{"name":"eve","top":60}`,
	}, lines(stdout))
}

func TestQuery_MutateAndRowNumber(t *testing.T) {
	stdout, _, err := run(t, "query", people,
		"--group-by", "dept",
		"--mutate", "shout=upper(name)",
		"--row-number", "r",
		"--select", "shout,r",
		"--head", "3",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"r":1,"shout":"ANN"}`,
		`{"r":2,"shout":"BOB"}`,
		`{"r":1,"shout":"CAT"}`,
	}, lines(stdout))
}

func TestQuery_ExplodeDedupe(t *testing.T) {
	stdout, _, err := run(t, "query", people,
		"--where", "has(tags)",
		"--explode", "tags",
		"--select", "tags",
		"--dedupe",
		"--sort", "tags",
		"--format", "csv",
	)
	require.NoError(t, err)
	assert.Equal(t, "tags\nexcel\ngo\nsql\n", stdout)
}

func TestQuery_RenameDropTail(t *testing.T) {
	stdout, _, err := run(t, "query", people,
		"--rename", "who=name",
		"--drop", "tags,salary",
		"--tail", "1",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"dept":"sales","who":"eve"}`}, lines(stdout))
}

func TestQuery_SampleIsSeeded(t *testing.T) {
	first, _, err := run(t, "query", people, "--sample", "3", "--seed", "7")
	require.NoError(t, err)
	second, _, err := run(t, "query", people, "--sample", "3", "--seed", "7")
	require.NoError(t, err)

	assert.Len(t, lines(first), 3)
	assert.Equal(t, first, second)
}

func TestQuery_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	stdout, _, err := run(t, "query", people, "--select", "name,salary", "--limit", "2", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,salary\nann,100\nbob,80\n", string(data))
}

func TestQuery_Metrics(t *testing.T) {
	_, stderr, err := run(t, "query", people, "--where", "salary > 75", "--head", "1",
		"--metrics", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"operation":"Keep"`)
	assert.Contains(t, stderr, `"operation":"Head"`)
	assert.Contains(t, stderr, `"msg":"pipeline"`)
}

func TestQuery_Explain(t *testing.T) {
	stdout, stderr, err := run(t, "query", people, "--where", "salary > 75", "--select", "name", "--explain")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"name":"ann"}`, `{"name":"bob"}`, `{"name":"cat"}`}, lines(stdout))
	assert.Contains(t, stderr, "source (5 rows)")
	assert.Contains(t, stderr, "└─ Keep(1 predicates) 5 -> 3 rows")
	assert.Contains(t, stderr, "└─ Select(name) 3 -> 3 rows")
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad expression", []string{"--where", "salary = 3"}, cli.ExitCommandError},
		{"bad aggregation", []string{"--agg", "salary"}, cli.ExitCommandError},
		{"unknown summary", []string{"--agg", "salary:mode"}, cli.ExitCommandError},
		{"transform without agg", []string{"--transform"}, cli.ExitCommandError},
		{"bad output format", []string{"--format", "xml"}, cli.ExitCommandError},
		{"missing key", []string{"--select", "missing"}, cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"query", people}, tt.args...)...)
			assert.Equal(t, tt.code, cli.GetExitCode(err), "%v", err)
		})
	}
}

func TestQuery_MissingSource(t *testing.T) {
	_, _, err := run(t, "query", "testdata/none-*.jsonl")
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestJoin(t *testing.T) {
	stdout, _, err := run(t, "join", people, "testdata/depts.csv", "--on", "dept", "--inner")
	require.NoError(t, err)

	got := lines(stdout)
	require.Len(t, got, 4)
	assert.Equal(t, `{"dept":"eng","floor":"3","name":"ann","salary":100,"tags":["go","sql"]}`, got[0])
	assert.Equal(t, `{"dept":"ops","floor":"1","name":"dan","salary":70}`, got[3])
}

func TestJoin_LeftKeepsUnmatched(t *testing.T) {
	stdout, _, err := run(t, "join", people, "testdata/depts.csv", "--on", "dept", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `{"dept":"sales","name":"eve","salary":60,"tags":["excel"]}`)
}

func TestJoin_Suffixes(t *testing.T) {
	stdout, _, err := run(t, "join", "testdata/depts.csv", "testdata/depts.csv",
		"--on", "dept", "--suffixes", "_l,_r", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"dept":"eng","floor_l":"3","floor_r":"3"}`}, lines(stdout))

	_, _, err = run(t, "join", people, people, "--suffixes", "only")
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestKeys(t *testing.T) {
	stdout, _, err := run(t, "keys", people)
	require.NoError(t, err)
	assert.Equal(t, []string{"dept", "name", "salary", "tags"}, lines(stdout))

	stdout, _, err = run(t, "keys", people, "--overlap")
	require.NoError(t, err)
	assert.Equal(t, []string{"dept", "name", "salary"}, lines(stdout))
}

func TestHead_UsesConfiguredDefault(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "clump.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("default_head: 2\n"), 0o600))

	stdout, _, err := run(t, "head", people, "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, lines(stdout), 2)

	stdout, _, err = run(t, "head", people, "--config", cfgPath, "--rows", "4")
	require.NoError(t, err)
	assert.Len(t, lines(stdout), 4)
}

func TestConfigErrors(t *testing.T) {
	_, _, err := run(t, "keys", people, "--config", "testdata/missing.yaml")
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))

	_, _, err = run(t, "keys", people, "--log-format", "xml")
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version:")
}

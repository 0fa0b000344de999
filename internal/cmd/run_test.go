package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pddkit/pddserve/internal/dispatch"
)

func TestRun_Success(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `echo "$@"`)
	root := t.TempDir()

	stdout, stderr, err := executeCommand(t, "run", "test", "--root", root, "--basename", "calc", "--arg", "--output=out.py")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Equal(t, "test -b calc --output out.py\n", stdout)
}

func TestRun_RepeatedArgAndFlag(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `echo "$@"`)

	stdout, _, err := executeCommand(t, "run", "fix", "--root", t.TempDir(),
		"--arg", "e=A=1", "--arg", "e=B=2", "--flag=--force")
	require.NoError(t, err)
	assert.Equal(t, "fix -e A=1 -e B=2 --force\n", stdout)
}

func TestRun_LiteralPrompt(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `cat "$2"`)

	stdout, _, err := executeCommand(t, "run", "generate", "--root", t.TempDir(), "--prompt", "Write a calculator")
	require.NoError(t, err)
	assert.Equal(t, "Write a calculator\n", stdout)
}

func TestRun_Failure(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `echo "boom" >&2; exit 2`)

	stdout, stderr, err := executeCommand(t, "run", "sync", "--root", t.TempDir(), "-b", "calc")
	require.Error(t, err)

	var exitErr *ExitCodeError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: boom\n", stderr)
}

func TestRun_UnknownCommand(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `echo should-not-run`)

	stdout, stderr, err := executeCommand(t, "run", "deploy", "--root", t.TempDir())
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Unknown command: deploy. Available commands: sync, generate")
}

func TestRun_JSON(t *testing.T) {
	isolateEnv(t)
	fakePDD(t, `echo "  done  "`)

	stdout, _, err := executeCommand(t, "run", "example", "--root", t.TempDir(), "-b", "calc", "--json")
	require.NoError(t, err)

	var resp dispatch.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "done", resp.Output)
	assert.Nil(t, resp.Error)
}

func TestRun_RequiresCommand(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCommand(t, "run")
	require.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	t.Run("scalar bare and sequence", func(t *testing.T) {
		args, err := parseArgs([]string{"output=a.py", "verbose", "e=X=1", "e=Y=2", "e=Z=3"}, []string{"--force"})
		require.NoError(t, err)
		assert.Equal(t, []string{"-output", "a.py", "-verbose", "-e", "X=1", "-e", "Y=2", "-e", "Z=3", "--force"}, args.Expand())

		v, ok := args.Get("e")
		require.True(t, ok)
		assert.Equal(t, dispatch.KindSequence, v.Kind())
		assert.Equal(t, []string{"X=1", "Y=2", "Z=3"}, v.Items())
	})

	t.Run("value may contain equals", func(t *testing.T) {
		args, err := parseArgs([]string{"env=K=V"}, nil)
		require.NoError(t, err)
		v, _ := args.Get("env")
		assert.Equal(t, "K=V", v.String())
	})

	t.Run("flag after scalar keeps value", func(t *testing.T) {
		args, err := parseArgs([]string{"output=a.py"}, []string{"output"})
		require.NoError(t, err)
		v, _ := args.Get("output")
		assert.Equal(t, dispatch.KindScalar, v.Kind())
		assert.Equal(t, "a.py", v.String())
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseArgs([]string{"=x"}, nil)
		assert.Error(t, err)
		_, err = parseArgs(nil, []string{""})
		assert.Error(t, err)
	})
}

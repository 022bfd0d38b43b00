package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/adapters/shell"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	gomock.InOrder(
		mockLogger.EXPECT().Info("line1"),
		mockLogger.EXPECT().Info("line2"),
	)

	executor := shell.NewExecutor(mockLogger)
	var stdout bytes.Buffer

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "echo line1; echo line2"}, Dir: t.TempDir()}
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, nil))
	assert.Equal(t, "line1\nline2\n", stdout.String())
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("part1part2").Times(1)

	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "printf part1; sleep 0.1; echo part2"}}
	require.NoError(t, executor.Execute(context.Background(), cmd, nil, nil))
}

func TestExecutor_Execute_StderrLogsWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("oops").Times(1)

	executor := shell.NewExecutor(mockLogger)
	var stderr bytes.Buffer

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "echo oops >&2"}}
	require.NoError(t, executor.Execute(context.Background(), cmd, nil, &stderr))
	assert.Equal(t, "oops\n", stderr.String())
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("test-value-123").Times(1)

	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo $MY_TEST_VAR"},
		Env:  []string{"MY_TEST_VAR=test-value-123"},
	}
	require.NoError(t, executor.Execute(context.Background(), cmd, nil, nil))
}

func TestExecutor_Execute_WorkingDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	dir := t.TempDir()
	var stdout bytes.Buffer

	cmd := domain.Command{Name: "pwd", Dir: dir}
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, nil))

	got, err := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{Name: "nonexistent-command-xyz123"}
	err := executor.Execute(context.Background(), cmd, nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCommandFailed.Error())
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "exit 42"}}
	err := executor.Execute(context.Background(), cmd, nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "command failed")
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	require.NoError(t, executor.Execute(context.Background(), domain.Command{}, nil, nil))
}

func TestExecutor_Execute_AbsolutePath(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("test").Times(1)

	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{Name: "/bin/sh", Args: []string{"-c", "echo test"}}
	require.NoError(t, executor.Execute(context.Background(), cmd, nil, nil))
}

func TestExecutor_Execute_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "sleep 5"}}
	require.Error(t, executor.Execute(ctx, cmd, nil, nil))
}

func TestExecutor_Execute_WithVertex(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	// The logger is bypassed when a vertex is present.
	mockLogger.EXPECT().Info(gomock.Any()).Times(0)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(0)

	var stdoutBuf, stderrBuf bytes.Buffer
	mockVertex := mocks.NewMockVertex(ctrl)
	mockVertex.EXPECT().Stdout().Return(&stdoutBuf).AnyTimes()
	mockVertex.EXPECT().Stderr().Return(&stderrBuf).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	ctx := ports.ContextWithVertex(context.Background(), mockVertex)

	cmd := domain.Command{Name: "sh", Args: []string{"-c", "echo hello to stdout; echo hello to stderr >&2"}}
	require.NoError(t, executor.Execute(ctx, cmd, nil, nil))

	assert.Contains(t, stdoutBuf.String(), "hello to stdout")
	assert.Contains(t, stderrBuf.String(), "hello to stderr")
}

func TestGitFetcher_Fetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockExec := mocks.NewMockExecutor(ctrl)
	dst := filepath.Join(t.TempDir(), "checkout")

	mockExec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			assert.Equal(t, "git", cmd.Name)
			assert.Equal(t, []string{
				"clone", "--depth", "1", "--quiet", "--branch", "v1.2.0", "--", "https://example.com/widget.git", dst,
			}, cmd.Args)
			assert.Contains(t, cmd.Env, "GIT_TERMINAL_PROMPT=0")
			return nil
		})

	f := shell.NewGitFetcher(mockExec)
	require.NoError(t, f.Fetch(context.Background(), "https://example.com/widget.git", "v1.2.0", dst))
}

func TestGitFetcher_Fetch_DefaultBranch(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockExec := mocks.NewMockExecutor(ctrl)
	dst := filepath.Join(t.TempDir(), "checkout")

	mockExec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			assert.NotContains(t, cmd.Args, "--branch")
			return nil
		})

	f := shell.NewGitFetcher(mockExec)
	require.NoError(t, f.Fetch(context.Background(), "https://example.com/widget.git", "", dst))
}

func TestGitFetcher_Fetch_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockExec := mocks.NewMockExecutor(ctrl)
	dst := filepath.Join(t.TempDir(), "checkout")

	mockExec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 128"))

	f := shell.NewGitFetcher(mockExec)
	err := f.Fetch(context.Background(), "https://example.invalid/widget.git", "", dst)
	require.ErrorIs(t, err, domain.ErrFetch)
	assert.NoDirExists(t, dst)
}

func TestGitFetcher_Fetch_ExistingDestination(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockExec := mocks.NewMockExecutor(ctrl)

	f := shell.NewGitFetcher(mockExec)
	err := f.Fetch(context.Background(), "https://example.com/widget.git", "", t.TempDir())
	require.ErrorIs(t, err, domain.ErrConflict)
}

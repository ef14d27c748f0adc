package execution

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/pkg/logging"
)

const runnerSubsystem = "execution.runner"

// graceTimeout is how long a runner waits after SIGTERM before escalating
// to SIGKILL on cancellation.
const graceTimeout = 10 * time.Second

// RunnerConfig describes one worker invocation.
type RunnerConfig struct {
	WorkerPath     string // path to the worker executable
	JobFile        string // path to the serialized JobDescriptor
	WorkDir        string
	Lane           model.TestType
	MergedDataFile string
	BrokerSocket   string // empty when the broker is not running
	ArchiveDir     string
	ArchiveName    string
	Debug          bool
}

// Runner launches and supervises one worker subprocess.
type Runner struct {
	out io.Writer
}

// NewRunner returns a Runner that stores out. Run does not write to it;
// worker output goes to the OutputProcessor passed to Run.
func NewRunner(out io.Writer) *Runner {
	return &Runner{out: out}
}

// Run launches the worker described by cfg, streams its merged
// stdout/stderr to processor, and waits for exit. On success it returns
// the path to the archive the worker produced.
func (r *Runner) Run(ctx context.Context, cfg RunnerConfig, processor *OutputProcessor) (string, error) {
	cmd := exec.CommandContext(ctx, cfg.WorkerPath, cfg.JobFile)
	cmd.Dir = cfg.WorkDir
	cmd.Env = buildEnv(cfg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errs.Wrap(errs.WorkerLaunchError, "create stdout pipe", "runner", cfg.WorkerPath, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", errs.Wrap(errs.WorkerLaunchError, "start worker", "runner", cfg.WorkerPath, err)
	}

	done := make(chan struct{})
	go func() {
		processor.Consume(stdout)
		close(done)
	}()

	waitErr := cmd.Wait()
	<-done

	if ctx.Err() != nil {
		r.terminate(cmd)
		return "", errs.Wrap(errs.WorkerExecutionError, "worker cancelled", "runner", cfg.WorkerPath, ctx.Err())
	}

	exitCode := exitCodeOf(waitErr)
	switch {
	case exitCode == 0, exitCode == 1:
		// 0: all passed. 1: expected failure path, recorded in results.
	default:
		logging.Error(runnerSubsystem, waitErr, "worker exited with code %d", exitCode)
		return "", errs.Wrap(errs.WorkerExecutionError, "worker execution", "runner", cfg.WorkerPath, waitErr)
	}

	archivePath := filepath.Join(cfg.ArchiveDir, cfg.ArchiveName)
	if _, statErr := os.Stat(archivePath); statErr != nil {
		return "", errs.Wrap(errs.WorkerExecutionError, "locate produced archive", "runner", archivePath, statErr)
	}
	return archivePath, nil
}

// terminate sends SIGTERM to the worker's process group, then SIGKILL
// after graceTimeout if it hasn't exited.
func (r *Runner) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGTERM)

	exited := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(graceTimeout):
		_ = syscall.Kill(pgid, syscall.SIGKILL)
	}
}

func buildEnv(cfg RunnerConfig) []string {
	env := os.Environ()
	env = append(env,
		"PYTHONWARNINGS=ignore",
		"NAC_TEST_TYPE="+string(cfg.Lane),
		"MERGED_DATA_MODEL_TEST_VARIABLES_FILEPATH="+cfg.MergedDataFile,
	)
	if cfg.BrokerSocket != "" {
		env = append(env, "NAC_TEST_BROKER_SOCKET="+cfg.BrokerSocket)
	}
	if cfg.Debug {
		env = append(env, "NAC_TEST_DEBUG=1")
	}
	return env
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

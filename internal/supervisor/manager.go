package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/turtacn/hestia/pkg/logger"
)

// ProcessManager handles the lifecycle of one managed child process.
// It manages starting, stopping, and waiting for the process.
type ProcessManager struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// New creates a new ProcessManager instance.
func New() *ProcessManager {
	return &ProcessManager{}
}

// Start launches the process with the given command and extra environment. files are
// passed as descriptors 3 and up. Output is forwarded to hestia's stdout and stderr.
// An empty command is a no-op.
func (pm *ProcessManager) Start(command []string, env []string, files []*os.File) error {
	if len(command) == 0 {
		return nil
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.cmd != nil && pm.done != nil {
		select {
		case <-pm.done:
		default:
			return fmt.Errorf("process already running (pid %d)", pm.cmd.Process.Pid)
		}
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = files

	logger.Log.Info("Supervisor: Forking process", "cmd", command)
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	pm.cmd, pm.done, pm.err = cmd, done, nil
	go func() {
		err := cmd.Wait()
		pm.mu.Lock()
		pm.err = err
		pm.mu.Unlock()
		close(done)
	}()
	return nil
}

// Pid returns the PID of the current process, or 0.
func (pm *ProcessManager) Pid() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.cmd == nil || pm.cmd.Process == nil {
		return 0
	}
	return pm.cmd.Process.Pid
}

// Stop sends a SIGTERM signal to the managed process to initiate a graceful shutdown.
func (pm *ProcessManager) Stop() error {
	return pm.signal(syscall.SIGTERM)
}

// Kill immediately terminates the managed process using a SIGKILL signal.
func (pm *ProcessManager) Kill() error {
	return pm.signal(syscall.SIGKILL)
}

func (pm *ProcessManager) signal(sig syscall.Signal) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.cmd == nil || pm.cmd.Process == nil {
		return nil
	}
	select {
	case <-pm.done:
		return nil
	default:
	}
	logger.Log.Info("Supervisor: Sending signal", "signal", sig, "pid", pm.cmd.Process.Pid)
	return pm.cmd.Process.Signal(sig)
}

// Wait waits for the managed process to exit and returns the resulting error, if any.
func (pm *ProcessManager) Wait() error {
	pm.mu.Lock()
	done := pm.done
	pm.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.err
}

// Shutdown sends SIGTERM and waits up to grace for the process to exit before
// escalating to SIGKILL. The exit status of a signalled process is not an error.
func (pm *ProcessManager) Shutdown(ctx context.Context, grace time.Duration) error {
	pm.mu.Lock()
	done := pm.done
	pm.mu.Unlock()
	if done == nil {
		return nil
	}
	if err := pm.Stop(); err != nil {
		return err
	}

	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
	case <-ctx.Done():
	}

	logger.Log.Warn("Supervisor: Grace period elapsed, killing", "pid", pm.Pid())
	if err := pm.Kill(); err != nil {
		return err
	}
	<-done
	return nil
}

// Personal.AI order the ending

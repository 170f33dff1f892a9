package supervisor

import (
	"context"
	"testing"
	"time"
)

func TestProcessManager_StartStop(t *testing.T) {
	pm := New()

	// Start a simple long-running command
	err := pm.Start([]string{"sleep", "10"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if pm.Pid() == 0 {
		t.Fatal("Process should be started")
	}

	if err := pm.Start([]string{"sleep", "10"}, nil, nil); err == nil {
		t.Error("Second Start while running should fail")
	}

	err = pm.Stop()
	if err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	if err := pm.Wait(); err == nil {
		t.Errorf("Wait should report the signalled exit")
	}
}

func TestProcessManager_Kill(t *testing.T) {
	pm := New()
	err := pm.Start([]string{"sleep", "10"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	err = pm.Kill()
	if err != nil {
		t.Errorf("Kill failed: %v", err)
	}

	err = pm.Wait()
	if err == nil {
		t.Errorf("Wait should have returned error for killed process")
	}

	// signalling an exited process is a no-op
	if err := pm.Stop(); err != nil {
		t.Errorf("Stop after exit should be nil, got %v", err)
	}
}

func TestProcessManager_EmptyCommand(t *testing.T) {
	pm := New()
	err := pm.Start(nil, nil, nil)
	if err != nil {
		t.Errorf("Start(nil) should not return error, got %v", err)
	}
	if err := pm.Wait(); err != nil {
		t.Errorf("Wait without process should be nil, got %v", err)
	}
	if err := pm.Shutdown(context.Background(), time.Second); err != nil {
		t.Errorf("Shutdown without process should be nil, got %v", err)
	}
}

func TestProcessManager_Shutdown(t *testing.T) {
	pm := New()
	if err := pm.Start([]string{"sleep", "10"}, nil, nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- pm.Shutdown(context.Background(), 2*time.Second) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not return")
	}
}

func TestProcessManager_ShutdownEscalatesToKill(t *testing.T) {
	pm := New()
	// ignore SIGTERM so only SIGKILL ends it
	if err := pm.Start([]string{"sh", "-c", "trap '' TERM; sleep 10"}, nil, nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	if err := pm.Shutdown(context.Background(), 200*time.Millisecond); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Shutdown took too long: %v", time.Since(start))
	}
}

func TestProcessManager_ExitedProcess(t *testing.T) {
	pm := New()
	if err := pm.Start([]string{"true"}, []string{"HESTIA_TEST=1"}, nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := pm.Wait(); err != nil {
		t.Errorf("true should exit cleanly, got %v", err)
	}
}

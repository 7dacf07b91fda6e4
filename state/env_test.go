package state_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/state"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())

	env := state.EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env != state.EnvFromContext(ctx) {
		t.Error("EnvFromContext() should return the same value for the same context")
	}
	if env.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("default console level = %q, want normal", env.Logging.ConsoleLogger.Level)
	}
}

func TestEnvFromContextPanicsWithoutEnv(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("EnvFromContext() should panic on a context without env")
		}
	}()
	state.EnvFromContext(context.Background())
}

func TestUptime(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	time.Sleep(time.Millisecond)
	if env.Uptime() <= 0 {
		t.Errorf("Uptime() = %v, want > 0", env.Uptime())
	}
}

func TestStdLogRedirection(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	// without a logger both calls are no-ops
	env.RedirectStdLog()
	env.RestoreStdLog()

	env.Log = zap.NewNop()
	env.RedirectStdLog()
	env.RestoreStdLog()
}

package execx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunnerFunc(t *testing.T) {
	var gotName string
	var gotArgs []string
	r := RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName, gotArgs = name, args
		return []byte("out"), nil, nil
	})

	out, _, err := r.Run(context.Background(), "tool", "-a", "b")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(out) != "out" || gotName != "tool" || strings.Join(gotArgs, " ") != "-a b" {
		t.Errorf("Run() = %q, name %q, args %v", out, gotName, gotArgs)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner(nil)
	_, _, err := r.Run(context.Background(), "papertrail-no-such-binary-xyz")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Run() error = %v, want ErrNotInstalled", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd...(truncated)" {
		t.Errorf("truncate() = %q", got)
	}
}

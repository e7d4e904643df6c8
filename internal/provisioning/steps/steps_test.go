package steps

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/provisioning"
	"github.com/enableit/yubikey-setup/internal/ui"
)

// testEnv bundles the fakes a step test needs.
type testEnv struct {
	ctx      *provisioning.Context
	runner   *execx.Fake
	prompter *ui.Scripted
	observer *provisioning.MockObserver
	stdout   *bytes.Buffer
	env      map[string]string
}

// newTestEnv builds a context with every external surface faked out. Host
// facts default to a Linux user with a temp home directory.
func newTestEnv(t *testing.T, opts provisioning.Options) *testEnv {
	t.Helper()

	e := &testEnv{
		runner:   execx.NewFake(),
		prompter: &ui.Scripted{HasPIN: true, KeyPath: "~/public.key"},
		observer: provisioning.NewMockObserver(),
		stdout:   &bytes.Buffer{},
		env:      map[string]string{},
	}
	e.ctx = &provisioning.Context{
		Context:    context.Background(),
		Options:    opts,
		State:      &provisioning.State{},
		Runner:     e.runner,
		Prompter:   e.prompter,
		Observer:   e.observer,
		TrackingID: "test-tracking-id",
		GOOS:       "linux",
		Home:       t.TempDir(),
		UID:        "1000",
		Username:   "jdoe",
		Getenv:     func(key string) string { return e.env[key] },
		Setenv: func(key, value string) error {
			e.env[key] = value
			return nil
		},
		Unsetenv: func(key string) error {
			delete(e.env, key)
			return nil
		},
		Sleep:  func(time.Duration) {},
		Stdout: e.stdout,
	}
	return e
}

func TestSetupOrder(t *testing.T) {
	t.Parallel()

	steps := Setup()

	var names []string
	for _, s := range steps {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"platform",
		"pin-check",
		"public-key",
		"prerequisites",
		"gpg-config",
		"agent-config",
		"shell-profile",
		"auth-sock",
		"key-import",
		"agent-restart",
		"token-detect",
		"ssh-identity",
		"key-id",
		"owner-trust",
		"crypto-test",
		"git-signing",
		"report",
	}, names)
}

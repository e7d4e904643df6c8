package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/provisioning"
	"github.com/enableit/yubikey-setup/internal/ui"
)

func TestRunSetup_DryRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	observer := provisioning.NewMockObserver()

	err := runSetup(context.Background(), SetupOptions{DryRun: true},
		execx.NewFake(), &ui.Scripted{}, observer, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "YubiKey Setup Tool")
	assert.Empty(t, stderr.String())
	assert.True(t, observer.HasEvent(provisioning.EventStepCompleted, "report"))
}

func TestRunSetup_FatalPrintsTrackingID(t *testing.T) {
	var stdout, stderr bytes.Buffer
	observer := provisioning.NewMockObserver()

	// Declining the PIN prompt aborts the run at the second step, before
	// anything touches the filesystem.
	err := runSetup(context.Background(), SetupOptions{},
		execx.NewFake(), &ui.Scripted{HasPIN: false}, observer, &stdout, &stderr)

	var fatal *provisioning.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "pin-check", fatal.Step)
	assert.Contains(t, stderr.String(), fatal.TrackingID)
}

func TestRunSetup_BadConfigPath(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := runSetup(context.Background(), SetupOptions{ConfigPath: "/nonexistent/config.yaml"},
		execx.NewFake(), &ui.Scripted{}, provisioning.NewMockObserver(), &stdout, &stderr)

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestRunSetup_SkipPinFromFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	observer := provisioning.NewMockObserver()
	prompter := &ui.Scripted{HasPIN: false}

	err := runSetup(context.Background(), SetupOptions{DryRun: true, SkipPinCheck: true},
		execx.NewFake(), prompter, observer, &stdout, &stderr)

	require.NoError(t, err)
	assert.Zero(t, prompter.ConfirmPINCalls)
}

func TestRunSetup_DryRunNeverExecutes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	fake := execx.NewFake()
	fake.On("gpg --import", "", errors.New("should never run"))

	err := runSetup(context.Background(), SetupOptions{DryRun: true},
		fake, &ui.Scripted{}, provisioning.NewMockObserver(), &stdout, &stderr)

	require.NoError(t, err)
	assert.Empty(t, fake.Calls())
}

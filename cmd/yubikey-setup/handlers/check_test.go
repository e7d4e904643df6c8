package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enableit/yubikey-setup/internal/config"
	"github.com/enableit/yubikey-setup/internal/execx"
)

const testKeyListing = `pub   rsa4096/0x3996B9E90711DD51 2019-03-12 [SC]
uid                   [ultimate] Jane Doe <jdoe@obmondo.com>
`

func TestGatherChecks(t *testing.T) {
	t.Parallel()

	t.Run("unsupported OS short-circuits", func(t *testing.T) {
		t.Parallel()
		report := gatherChecks(context.Background(), execx.NewFake(), config.Default(), "windows", t.TempDir())

		require.Len(t, report.Rows, 1)
		assert.False(t, report.Ready)
		assert.False(t, report.Rows[0].OK)
	})

	t.Run("all probes pass", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()
		fake.On("gpg --list-keys --keyid-format 0xlong", testKeyListing, nil)
		fake.On("ssh-add -L", "", errors.New("agent not running"))

		report := gatherChecks(context.Background(), fake, config.Default(), "linux", t.TempDir())

		byName := map[string]CheckRow{}
		for _, row := range report.Rows {
			byName[row.Name] = row
		}

		assert.True(t, byName["operating system"].OK)
		assert.True(t, byName["gpg"].OK)
		assert.True(t, byName["YubiKey detected"].OK)
		assert.True(t, byName["GPG key imported"].OK)
		assert.Equal(t, "0x3996B9E90711DD51", byName["GPG key imported"].Detail)
		// No config files in the temp home and no SSH identity.
		assert.False(t, byName["gpg.conf"].OK)
		assert.False(t, byName["SSH identity"].OK)
		assert.False(t, report.Ready)
	})

	t.Run("missing card marks the report not ready", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()
		fake.On("gpg2 --card-status", "", errors.New("card error"))

		report := gatherChecks(context.Background(), fake, config.Default(), "linux", t.TempDir())

		assert.False(t, report.Ready)
	})

	t.Run("never mutates", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()

		gatherChecks(context.Background(), fake, config.Default(), "linux", t.TempDir())

		for _, call := range fake.Calls() {
			assert.NotEqual(t, "sudo", call.Name)
			assert.NotContains(t, call.Cmdline(), "--import")
		}
	})
}

func TestProbeKeyring(t *testing.T) {
	t.Parallel()

	t.Run("known key wins", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()
		fake.On("gpg --list-keys --keyid-format 0xlong", testKeyListing, nil)

		row := probeKeyring(context.Background(), fake, "0x3996B9E90711DD51")

		assert.True(t, row.OK)
		assert.Equal(t, "0x3996B9E90711DD51", row.Detail)
	})

	t.Run("any parseable key counts", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()
		fake.On("gpg --list-keys --keyid-format 0xlong",
			"pub   rsa4096/0x1234567890ABCDEF 2023-01-01 [SC]\n", nil)

		row := probeKeyring(context.Background(), fake, "0x3996B9E90711DD51")

		assert.True(t, row.OK)
		assert.Equal(t, "0x1234567890ABCDEF", row.Detail)
	})

	t.Run("empty keyring fails", func(t *testing.T) {
		t.Parallel()
		fake := execx.NewFake()

		row := probeKeyring(context.Background(), fake, "0x3996B9E90711DD51")

		assert.False(t, row.OK)
	})
}

func TestCheckReportJSON(t *testing.T) {
	t.Parallel()

	report := &CheckReport{
		OS:    "linux",
		Rows:  []CheckRow{{Name: "gpg", OK: true, Detail: "/usr/bin/gpg", Blocker: true}},
		Ready: true,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded CheckReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.OS, decoded.OS)
	assert.True(t, decoded.Ready)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, "gpg", decoded.Rows[0].Name)
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printReport(&buf, &CheckReport{
		OS: "linux",
		Rows: []CheckRow{
			{Name: "gpg", OK: true, Detail: "/usr/bin/gpg", Blocker: true},
			{Name: "pinentry-gnome3", OK: false, Detail: "apt-get install pinentry-gnome3"},
			{Name: "YubiKey detected", OK: false, Blocker: true},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "gpg")
	assert.Contains(t, out, "/usr/bin/gpg")
	assert.Contains(t, out, "Setup is incomplete.")
}

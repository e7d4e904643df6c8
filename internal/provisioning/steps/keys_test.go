package steps

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/enableit/yubikey-setup/internal/provisioning"
)

const keyListing = `/home/jdoe/.gnupg/pubring.kbx
---------------------------------
pub   rsa4096/0x3996B9E90711DD51 2019-03-12 [SC]
      Key fingerprint = AAAA BBBB CCCC DDDD EEEE  FFFF 3996 B9E9 0711 DD51
uid                   [ultimate] Jane Doe <jdoe@obmondo.com>
sub   rsa4096/0x1111222233334444 2019-03-12 [E]
`

// agentLine renders a fresh ed25519 key as an ssh-add -L line with the
// given comment.
func agentLine(t *testing.T, comment string) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		line += " " + comment
	}
	return line
}

func TestImportKeyStep(t *testing.T) {
	t.Parallel()

	t.Run("skips when the known key is listed", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{KnownKeyID: "0x3996B9E90711DD51"})
		e.ctx.State.GPGKeyPath = "/home/jdoe/public.key"
		e.runner.On("gpg --list-keys", keyListing, nil)

		require.NoError(t, ImportKey().Run(e.ctx))

		assert.True(t, e.observer.HasEvent(provisioning.EventStepSkipped, "key-import"))
		assert.False(t, e.runner.Ran("gpg --import /home/jdoe/public.key"))
	})

	t.Run("imports when absent", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{KnownKeyID: "0x3996B9E90711DD51"})
		e.ctx.State.GPGKeyPath = "/home/jdoe/public.key"
		e.runner.On("gpg --list-keys", "", nil)

		require.NoError(t, ImportKey().Run(e.ctx))

		assert.True(t, e.runner.Ran("gpg --import /home/jdoe/public.key"))
	})

	t.Run("failed import is fatal", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{KnownKeyID: "0x3996B9E90711DD51"})
		e.ctx.State.GPGKeyPath = "/home/jdoe/public.key"
		e.runner.On("gpg --import /home/jdoe/public.key", "", errors.New("no valid OpenPGP data found"))

		err := ImportKey().Run(e.ctx)

		assert.ErrorContains(t, err, "failed to import GPG key")
	})
}

func TestAgentRestartStep(t *testing.T) {
	t.Parallel()

	t.Run("kills, verifies, and restarts", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("pgrep gpg-agent", "", errors.New("exit status 1"))

		require.NoError(t, AgentRestart(0).Run(e.ctx))

		assert.True(t, e.runner.Ran("pkill gpg-agent"))
		assert.True(t, e.runner.Ran("gpg-agent --daemon"))
	})

	t.Run("surviving agent is fatal", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		// pgrep succeeding means the process is still there.

		err := AgentRestart(0).Run(e.ctx)

		assert.ErrorContains(t, err, "still running")
	})

	t.Run("failed daemon start is only a warning", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("pgrep gpg-agent", "", errors.New("exit status 1"))
		e.runner.On("gpg-agent --daemon", "", errors.New("address already in use"))

		require.NoError(t, AgentRestart(0).Run(e.ctx))
	})

	t.Run("dry run skips the wait and verification", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{DryRun: true})

		require.NoError(t, AgentRestart(agentSettleDelay).Run(e.ctx))

		assert.Empty(t, e.runner.Calls())
	})
}

func TestTokenDetectStep(t *testing.T) {
	t.Parallel()

	t.Run("card present registers pinentry on linux", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		require.NoError(t, Platform().Run(e.ctx))

		require.NoError(t, TokenDetect().Run(e.ctx))

		assert.Equal(t, 1, e.prompter.WaitForTokenCalls)
		assert.True(t, e.runner.Ran("gpg2 --card-status"))
		assert.True(t, e.runner.Ran("sudo update-alternatives --install /usr/bin/pinentry pinentry /usr/bin/pinentry-gnome3 1"))
		assert.True(t, e.runner.Ran("sudo update-alternatives --set pinentry /usr/bin/pinentry-gnome3"))
	})

	t.Run("card absent is fatal with a replug hint", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		require.NoError(t, Platform().Run(e.ctx))
		e.runner.On("gpg2 --card-status", "", errors.New("card error"))

		err := TokenDetect().Run(e.ctx)

		assert.ErrorContains(t, err, "replug")
	})

	t.Run("missing update-alternatives is tolerated", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		require.NoError(t, Platform().Run(e.ctx))
		e.runner.MarkMissing("update-alternatives")

		require.NoError(t, TokenDetect().Run(e.ctx))

		assert.False(t, e.runner.Ran("sudo update-alternatives --set pinentry /usr/bin/pinentry-gnome3"))
	})
}

func TestSSHIdentityStep(t *testing.T) {
	t.Parallel()

	t.Run("finds the token identity", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		software := agentLine(t, "jdoe@laptop")
		hardware := agentLine(t, "cardno:000612345678")
		e.runner.On("ssh-add -L", software+"\n"+hardware+"\n", nil)

		require.NoError(t, SSHIdentity().Run(e.ctx))

		assert.Equal(t, hardware, e.ctx.State.AgentKeyLine)
	})

	t.Run("no hardware identity is fatal", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("ssh-add -L", agentLine(t, "jdoe@laptop")+"\n", nil)

		err := SSHIdentity().Run(e.ctx)

		assert.ErrorContains(t, err, "cardno:")
	})

	t.Run("agent failure is fatal", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("ssh-add -L", "", errors.New("could not open a connection to your authentication agent"))

		err := SSHIdentity().Run(e.ctx)

		assert.ErrorContains(t, err, "ssh-add -L failed")
	})

	t.Run("dry run skips the check", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{DryRun: true})

		require.NoError(t, SSHIdentity().Run(e.ctx))
		assert.Empty(t, e.runner.Calls())
	})
}

func TestKeyIDStep(t *testing.T) {
	t.Parallel()

	t.Run("parses the long key id", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("gpg2 --list-keys --keyid-format 0xlong", keyListing, nil)

		require.NoError(t, KeyID().Run(e.ctx))

		assert.Equal(t, "0x3996B9E90711DD51", e.ctx.State.PGPKeyID)
	})

	t.Run("empty listing is fatal", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{})
		e.runner.On("gpg2 --list-keys --keyid-format 0xlong", "", nil)

		err := KeyID().Run(e.ctx)

		assert.ErrorContains(t, err, "could not determine")
	})

	t.Run("dry run synthesizes a key id", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t, provisioning.Options{DryRun: true})

		require.NoError(t, KeyID().Run(e.ctx))

		assert.Equal(t, "0x1234567890ABCDEF", e.ctx.State.PGPKeyID)
		assert.Empty(t, e.runner.Calls())
	})
}

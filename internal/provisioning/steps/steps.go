// Package steps contains the concrete provisioning steps of the YubiKey
// setup pipeline, in their fixed execution order.
package steps

import (
	"time"

	"github.com/enableit/yubikey-setup/internal/provisioning"
)

// agentSettleDelay gives the OS time to reclaim the killed agent's sockets
// before termination is verified. Best-effort stand-in for a wait-for-exit
// signal, since gpg-agent daemonizes away from our process tree.
const agentSettleDelay = 2 * time.Second

// Setup returns the full pipeline in its fixed order.
func Setup() []provisioning.Step {
	return []provisioning.Step{
		Platform(),
		PINCheck(),
		PublicKey(),
		Prerequisites(),
		GPGConfig(),
		AgentConfig(),
		ShellProfile(),
		AuthSock(),
		ImportKey(),
		AgentRestart(agentSettleDelay),
		TokenDetect(),
		SSHIdentity(),
		KeyID(),
		OwnerTrust(),
		CryptoTest(),
		GitSigning(),
		Report(),
	}
}

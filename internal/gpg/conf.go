// Package gpg holds the GnuPG side of YubiKey provisioning: the literal
// configuration files written to ~/.gnupg, the key listing parser, and the
// ordered recipient candidates used by trust-setting and the encryption test.
package gpg

import (
	"fmt"

	"github.com/enableit/yubikey-setup/internal/platform"
)

// Conf is the content written to ~/.gnupg/gpg.conf. Hardened cipher and
// digest preferences for smartcard use; identical on both platforms.
const Conf = `auto-key-locate keyserver
keyserver hkps://hkps.pool.sks-keyservers.net
keyserver-options no-honor-keyserver-url
personal-cipher-preferences AES256 AES192 AES CAST5
personal-digest-preferences SHA512 SHA384 SHA256 SHA224
default-preference-list SHA512 SHA384 SHA256 SHA224 AES256 AES192 AES CAST5 ZLIB BZIP2 ZIP Uncompressed
cert-digest-algo SHA512
s2k-cipher-algo AES256
s2k-digest-algo SHA512
charset utf-8
fixed-list-mode
no-comments
no-emit-version
keyid-format 0xlong
list-options show-uid-validity
verify-options show-uid-validity
with-fingerprint
use-agent
require-cross-certification`

// DirmngrConf is the content written to ~/.gnupg/dirmngr.conf.
const DirmngrConf = `keyserver hkp://jirk5u4osbsr34t5.onion
keyserver hkp://keys.gnupg.net
honor-http-proxy
hkp-cacert /etc/sks-keyservers.netCA.pem`

// AgentConf returns the content of ~/.gnupg/gpg-agent.conf for the platform.
// The Linux variant advertises an extra socket for remote forwarding; the
// macOS variant must name the pinentry binary explicitly since the agent
// cannot find pinentry-mac on its own.
func AgentConf(p *platform.Platform) string {
	switch p.OS {
	case platform.Linux:
		return fmt.Sprintf(`# enables SSH support (ssh-agent)
enable-ssh-support
#remote
extra-socket /run/user/%s/gnupg/S.gpg-agent-extra
# default cache timeout of 600 seconds
default-cache-ttl 600
max-cache-ttl 7200`, p.UID)
	default:
		return fmt.Sprintf(`pinentry-program %s
enable-ssh-support
# default cache timeout of 600 seconds
default-cache-ttl 600
max-cache-ttl 7200`, p.PinentryProgram)
	}
}

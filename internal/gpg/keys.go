package gpg

import (
	"fmt"
	"strings"
)

// KnownKeyID is the long key id of the shared company key. Its presence in
// a `gpg --list-keys` listing means the import step already ran; existing
// tooling greps for exactly this string, so it must not change format.
const KnownKeyID = "0x3996B9E90711DD51"

// DefaultEmailDomain is the domain used to derive the fallback recipient
// identifier from the local username.
const DefaultEmailDomain = "obmondo.com"

// TrustScript is the command stream fed to `gpg --edit-key --command-fd 0`
// to assign ultimate owner trust non-interactively.
const TrustScript = "trust\n5\ny\nsave\n"

// ListingContainsKey reports whether a `gpg --list-keys` listing mentions
// the given key id. This is a documented substring contract: gpg prints
// long ids in 0xlong format anywhere in the pub/sub lines.
func ListingContainsKey(listing, keyID string) bool {
	return strings.Contains(listing, keyID)
}

// ParseKeyID extracts the long key id from the first public-key line of a
// `gpg --list-keys --keyid-format 0xlong` listing. A pub line looks like:
//
//	pub   rsa4096/0x1234567890ABCDEF 2023-01-01 [SC]
//
// The id is the token after the slash in the second field.
func ParseKeyID(listing string) (string, error) {
	for _, line := range strings.Split(listing, "\n") {
		if !strings.HasPrefix(line, "pub") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		algoAndID := strings.SplitN(fields[1], "/", 2)
		if len(algoAndID) < 2 || algoAndID[1] == "" {
			continue
		}
		return algoAndID[1], nil
	}
	return "", fmt.Errorf("no public key line found in gpg listing")
}

// Candidates returns the ordered recipient identifiers to try for
// operations that address the key (trust-setting, encryption test): the
// discovered key id first, then the email derived from the username. Each
// identifier gets exactly one attempt.
func Candidates(keyID, username, domain string) []string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return []string{keyID, fmt.Sprintf("%s@%s", username, domain)}
}

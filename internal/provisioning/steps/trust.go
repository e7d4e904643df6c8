package steps

import (
	"fmt"
	"strings"

	"github.com/enableit/yubikey-setup/internal/gpg"
	"github.com/enableit/yubikey-setup/internal/provisioning"
)

// cryptoTestPayload is the fixed plaintext for the encryption round trip.
const cryptoTestPayload = "yubikey-setup encryption test\n"

// recipients returns the ordered identifiers to try for key-addressed
// operations: the discovered key id, then the derived email address.
func recipients(ctx *provisioning.Context) []string {
	return gpg.Candidates(ctx.State.PGPKeyID, ctx.Username, ctx.Options.EmailDomain)
}

// tryRecipients runs attempt once per candidate identifier, in order,
// returning on the first success. Each candidate gets exactly one attempt.
func tryRecipients(ctx *provisioning.Context, candidates []string, attempt func(id string) error) error {
	var lastErr error
	for i, id := range candidates {
		if err := attempt(id); err != nil {
			lastErr = err
			if i+1 < len(candidates) {
				ctx.Observer.Warnf("attempt with %s failed (%v), retrying with %s", id, err, candidates[i+1])
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed (%s): %w",
		len(candidates), strings.Join(candidates, ", "), lastErr)
}

type ownerTrustStep struct{}

// OwnerTrust assigns ultimate trust to the imported key by driving the
// interactive edit session with a scripted command stream.
func OwnerTrust() provisioning.Step {
	return &ownerTrustStep{}
}

func (s *ownerTrustStep) Name() string { return "owner-trust" }

func (s *ownerTrustStep) Run(ctx *provisioning.Context) error {
	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would set owner trust to ultimate",
		})
		return nil
	}
	if ctx.State.PGPKeyID == "" {
		return fmt.Errorf("no PGP key id discovered")
	}

	ctx.Observer.Infof("setting trust level to 5 (ultimate) for key %s", ctx.State.PGPKeyID)
	err := tryRecipients(ctx, recipients(ctx), func(id string) error {
		_, err := ctx.Input(gpg.TrustScript, "gpg", "--edit-key", id, "--command-fd", "0")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set key trust: %w", err)
	}
	return nil
}

type cryptoTestStep struct{}

// CryptoTest encrypts a fixed payload to the key and decrypts it again,
// proving the token signs off on the whole chain (agent, pinentry, card).
func CryptoTest() provisioning.Step {
	return &cryptoTestStep{}
}

func (s *cryptoTestStep) Name() string { return "crypto-test" }

func (s *cryptoTestStep) Run(ctx *provisioning.Context) error {
	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would run the encryption round-trip test",
		})
		return nil
	}
	if ctx.State.PGPKeyID == "" {
		return fmt.Errorf("no PGP key id discovered")
	}

	// Some pinentry backends refuse to prompt without a terminal.
	if err := ctx.Setenv("GPG_TTY", "/dev/tty"); err != nil {
		return err
	}

	ctx.Observer.Infof("enter your PIN when prompted and touch the YubiKey when it blinks")
	err := tryRecipients(ctx, recipients(ctx), func(id string) error {
		ciphertext, err := ctx.Input(cryptoTestPayload, "gpg2", "--encrypt", "--armor", "--recipient", id)
		if err != nil {
			return err
		}
		plaintext, err := ctx.Input(ciphertext, "gpg2", "--decrypt")
		if err != nil {
			return err
		}
		if strings.TrimSpace(plaintext) == "" {
			return fmt.Errorf("decryption produced no output")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("encryption round trip failed; check that pinentry is set up and GPG_TTY is exported: %w", err)
	}

	ctx.Observer.Infof("encryption round trip passed")
	return nil
}

package signer

import (
	"context"

	"github.com/sage-x-project/sage/pkg/agent/crypto"

	"github.com/sage-x-project/elo-auth-go/pkg/identity"
)

// ProtocolVersion is mixed into the nonce digest and the signed stream.
// Receivers rebuild the same bytes, so it must not change.
const ProtocolVersion = "70"

// MessageSigner signs outgoing chat messages on behalf of an identity
type MessageSigner interface {
	// Sign signs the canonical bytes for sender, nonce and payload with keyPair.
	// Failures are returned as *SigningError.
	Sign(ctx context.Context, keyPair crypto.KeyPair, sender identity.Identity, nonce int64, payload ...string) ([]byte, error)
}

// Package signer produces the per-message signature carried in the
// authentication fields.
//
// # Canonical Bytes
//
// Receivers rebuild the signed stream from the fields they get, so the byte
// layout is fixed:
//
//	"<high>/<low>"                       identity as two signed 64-bit integers
//	base64(SHA-256(nonce || "70"))       nonce digest, nonce in decimal
//	"70"                                 protocol version
//	payload[0] || payload[1] || ...      caller order, no separators
//
// Canonicalize returns exactly these bytes and is deterministic. The
// signature itself need not be: a primitive with randomized padding yields
// different bytes per call, which is fine as long as they verify.
//
// # Signing
//
//	signer := signer.NewDefaultMessageSigner()
//	sig, err := signer.Sign(ctx, material.KeyPair(), id, nonce, "hello")
//	if err != nil {
//	    var signErr *signer.SigningError
//	    errors.As(err, &signErr) // always true
//	}
//
// Any sage crypto.KeyPair can sign. Key pairs issued by the certificate
// service are keys.RSAKeyPair, which signs with SHA256withRSA.
//
// # Error Handling
//
// Every failure is a *SigningError:
//
//   - Context canceled: Op "context"
//   - Nil key pair: Op "init"
//   - Primitive failure or empty signature: Op "sign"
package signer

// Package signer implements the Bundle Signer: keypair lifecycle,
// deterministic JSON serialization, and RSA-SHA256 (PKCS#1 v1.5) signing
// and verification over bundles.
//
// crypto/rsa and crypto/sha256 are used directly rather than through a
// third-party signing library: no RSA-signing package appears anywhere in
// the teacher repo or the rest of the retrieval pack, and this is exactly
// the narrow, security-sensitive primitive the standard library is the
// right tool for (see DESIGN.md).
package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// Signer is the Bundle Signer. Stateless once keys are loaded, so it is
// safe for concurrent signing (spec §5).
type Signer struct {
	mu      sync.RWMutex
	private *rsa.PrivateKey
	keyID   string
	log     *slog.Logger
}

// New constructs an uninitialized Signer. Call Initialize before first use.
func New() *Signer {
	return &Signer{log: slog.With("component", "signer")}
}

// Initialize loads an existing keypair from dir, generating and persisting
// a fresh 2048-bit RSA keypair if none exists.
func (s *Signer) Initialize(dir string) error {
	key, err := loadOrGenerateKeypair(dir)
	if err != nil {
		return err
	}
	keyID, err := Fingerprint(&key.PublicKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.private = key
	s.keyID = keyID
	s.mu.Unlock()

	s.log.Info("signer initialized", "key_id", keyID)
	return nil
}

// IsInitialized reports whether a keypair has been loaded.
func (s *Signer) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.private != nil
}

// PublicKeyPEM exports this signer's public key, PEM-encoded.
func (s *Signer) PublicKeyPEM() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.private == nil {
		return "", ErrNotInitialized
	}
	return ExportPublicKeyPEM(&s.private.PublicKey)
}

// Fingerprint returns this signer's key id (SHA-256 fingerprint of its
// public key).
func (s *Signer) Fingerprint() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.private == nil {
		return "", ErrNotInitialized
	}
	return s.keyID, nil
}

// digest canonicalizes and SHA-256-hashes a bundle's content, per spec
// §4.5 steps 1-3. bundle is the unsigned Bundle value only — callers pass
// the embedded Bundle field of a SignedBundle, never the signature block
// itself, so there is no pre-existing signature field to strip.
func digest(bundle models.Bundle) ([32]byte, error) {
	canonical, err := canonicalize(bundle)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(canonical), nil
}

// Sign produces a Signature over bundle's deterministic JSON serialization.
func (s *Signer) Sign(bundle models.Bundle) (models.Signature, error) {
	s.mu.RLock()
	key := s.private
	keyID := s.keyID
	s.mu.RUnlock()
	if key == nil {
		return models.Signature{}, ErrNotInitialized
	}

	hash, err := digest(bundle)
	if err != nil {
		return models.Signature{}, err
	}

	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		return models.Signature{}, err
	}

	return models.Signature{
		Algorithm: "RSA-SHA256",
		Value:     base64.StdEncoding.EncodeToString(sig),
		SignedAt:  time.Now().UTC(),
		KeyID:     keyID,
	}, nil
}

// SignBundle signs bundle and returns the full SignedBundle.
func (s *Signer) SignBundle(bundle models.Bundle) (models.SignedBundle, error) {
	sig, err := s.Sign(bundle)
	if err != nil {
		return models.SignedBundle{}, err
	}
	return models.SignedBundle{Bundle: bundle, Signature: sig}, nil
}

// Verify re-derives the digest of bundle and checks sig against pub. Any
// mismatch — including a single mutated byte anywhere in the bundle's
// content — returns false, never an error (a malformed signature value is
// just a failed verification).
func Verify(bundle models.Bundle, sig models.Signature, pub *rsa.PublicKey) bool {
	if sig.Algorithm != "RSA-SHA256" {
		return false
	}
	hash, err := digest(bundle)
	if err != nil {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(sig.Value)
	if err != nil {
		return false
	}
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, hash[:], raw) == nil
}

// VerifyBundle verifies a SignedBundle's signature against pub.
func VerifyBundle(sb models.SignedBundle, pub *rsa.PublicKey) bool {
	return Verify(sb.Bundle, sb.Signature, pub)
}

// VerifySelf verifies sb against this signer's own public key.
func (s *Signer) VerifySelf(sb models.SignedBundle) (bool, error) {
	s.mu.RLock()
	key := s.private
	s.mu.RUnlock()
	if key == nil {
		return false, ErrNotInitialized
	}
	return VerifyBundle(sb, &key.PublicKey), nil
}

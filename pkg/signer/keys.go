package signer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// keySizeBits is the RSA modulus size generated on first use (spec §4.5).
const keySizeBits = 2048

const (
	privateKeyFile = "private.pem"
	publicKeyFile  = "public.pem"
)

// ErrNotInitialized is returned by signing/verification operations before
// keys have been loaded.
var ErrNotInitialized = errors.New("signer: keys not loaded")

// loadOrGenerateKeypair loads an RSA keypair from dir, generating and
// persisting a fresh one if absent. The private key file is written
// owner-read/write only (0600); the public key is world-readable (0644).
func loadOrGenerateKeypair(dir string) (*rsa.PrivateKey, error) {
	privPath := filepath.Join(dir, privateKeyFile)
	pubPath := filepath.Join(dir, publicKeyFile)
	log := slog.With("component", "signer")

	if _, err := os.Stat(privPath); err == nil {
		return readPrivateKey(privPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat private key: %w", err)
	}

	log.Info("no keypair found, generating fresh RSA keypair", "dir", dir, "bits", keySizeBits)
	key, err := rsa.GenerateKey(rand.Reader, keySizeBits)
	if err != nil {
		return nil, fmt.Errorf("generate RSA keypair: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := writePrivateKey(privPath, key); err != nil {
		return nil, err
	}
	if err := writePublicKey(pubPath, &key.PublicKey); err != nil {
		return nil, err
	}
	return key, nil
}

func readPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("signer: invalid private key PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func writePrivateKey(path string, key *rsa.PrivateKey) error {
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	data := pem.EncodeToMemory(block)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	return nil
}

func writePublicKey(path string, pub *rsa.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	data := pem.EncodeToMemory(block)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

// ExportPublicKeyPEM PEM-encodes a public key.
func ExportPublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// LoadForeignPublicKeyPEM decodes a PEM-encoded public key supplied by a
// verifying party other than this process (e.g. a client checking a
// bundle it downloaded).
func LoadForeignPublicKeyPEM(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, errors.New("signer: invalid public key PEM")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("signer: not an RSA public key")
	}
	return pub, nil
}

// Fingerprint returns the hex-encoded SHA-256 digest of a public key's DER
// encoding, used as the signature block's key_id.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

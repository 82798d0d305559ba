package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"flashio/internal/crypto"
)

// sealFormatVersion is the newest sealed image layout this package reads.
const sealFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed image or its metadata has been modified.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted image")

// sealed is the on-disk JSON structure holding the ciphertext and KDF parameters.
type sealed struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase and encrypts image, binding ad.
func seal(passphrase string, image, ad []byte, N, r, p int) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; the salt makes every key fresh
	ct := aead.Seal(nil, nonce[:], image, ad)

	return json.Marshal(sealed{
		V:      sealFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// unseal opens a sealed image using a key derived from passphrase.
func unseal(passphrase string, b, ad []byte) ([]byte, error) {
	var s sealed
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if s.V > sealFormatVersion {
		return nil, fmt.Errorf("unsupported sealed image version %d", s.V)
	}

	key, err := scrypt.Key([]byte(passphrase), s.Salt, s.N, s.R, s.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	image, err := aead.Open(nil, nonce[:], s.Cipher, ad)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return image, nil
}

// scryptParamsDefault returns the scrypt cost parameters for new seals.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

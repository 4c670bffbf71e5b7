package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKeySize    = errors.New("aes secret must be 16, 24 or 32 bytes")
	ErrInvalidIVSize     = errors.New("aes iv must be 16 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// HashPassword hashes a password (or verification code) with bcrypt.
// The cost factor is configuration-driven so deployments can tune it.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckHash verifies a plaintext value against a bcrypt hash.
func CheckHash(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// NumericCode generates a fixed-length numeric verification code using
// crypto/rand. Leading zeros are allowed.
func NumericCode(length int) (string, error) {
	if length <= 0 {
		length = 4
	}
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}

// ResetToken returns an opaque token issued after successful code verification.
func ResetToken() string {
	return uuid.NewString()
}

// Encrypt encrypts a string with AES-CBC and PKCS#7 padding, returning base64
// ciphertext. Key and IV come straight from configuration, matching the token
// wrapping scheme clients already speak.
func Encrypt(plain, secret, iv string) (string, error) {
	block, err := newBlock(secret, iv)
	if err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plain), block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(iv)).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encoded, secret, iv string) (string, error) {
	block, err := newBlock(secret, iv)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) == 0 || len(raw)%block.BlockSize() != 0 {
		return "", ErrInvalidCiphertext
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, []byte(iv)).CryptBlocks(out, raw)
	unpadded, err := pkcs7Unpad(out)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func newBlock(secret, iv string) (cipher.Block, error) {
	switch len(secret) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKeySize
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}
	return aes.NewCipher([]byte(secret))
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > len(data) {
		return nil, ErrInvalidCiphertext
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrInvalidCiphertext
		}
	}
	return data[:len(data)-padding], nil
}

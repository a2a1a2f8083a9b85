package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/scrypt"
	"lukechampine.com/frand"
)

var N = int(math.Pow(2, 16))

func deriveCipher(password, salt []byte) (cipher.AEAD, error) {
	derivedKey, err := scrypt.Key(password, salt, N, 8, 1, 32)
	if err != nil {
		return nil, err
	}

	c, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(c)
}

func encrypt(password, salt, data []byte) ([]byte, error) {
	gcm, err := deriveCipher(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(frand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

func decrypt(password, salt, data []byte) ([]byte, error) {
	gcm, err := deriveCipher(password, salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("invalid data length")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	decryptedData, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	return decryptedData, nil
}

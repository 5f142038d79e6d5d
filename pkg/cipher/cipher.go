package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Cipher sela e abre valores com chave simétrica derivada do segredo
// configurado. Usado para guardar credenciais de acesso em repouso.
type Cipher struct {
	key [32]byte
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("segredo de criptografia não configurado")
	}

	return &Cipher{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal criptografa o texto e devolve o resultado em base64.
func (c *Cipher) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("erro ao gerar o nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open descriptografa um valor produzido por Seal.
func (c *Cipher) Open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("erro ao decodificar o valor selado: %w", err)
	}

	if len(sealed) < nonceSize {
		return "", fmt.Errorf("valor selado truncado")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("não foi possível abrir o valor selado")
	}

	return string(plaintext), nil
}

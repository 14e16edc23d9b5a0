package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewVerificationCode código numérico de 6 dígitos (100000-999999).
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generar código: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewTempPassword contraseña temporal de 8 caracteres alfanuméricos.
func NewTempPassword() (string, error) {
	buf := make([]byte, 8)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generar contraseña temporal: %w", err)
		}
		buf[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

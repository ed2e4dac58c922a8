package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	codeCharset            = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	reservationSuffixChars = 6
)

// GenerateCode returns n random uppercase letters, e.g. "KQZTRA".
// crypto/rand + rand.Int (math/big) avoids modulo bias.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeCharset[num.Int64()])
	}
	return sb.String(), nil
}

// GenerateReservationNumber builds RES-<year>-<6 letters>. Uniqueness is
// enforced by the database; callers retry on collision.
func GenerateReservationNumber(year int) (string, error) {
	suffix, err := GenerateCode(reservationSuffixChars)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RES-%d-%s", year, suffix), nil
}

// IsReservationNumber checks the RES-<year>-<6 letters> shape.
func IsReservationNumber(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != "RES" || len(parts[1]) != 4 || len(parts[2]) != reservationSuffixChars {
		return false
	}
	for _, c := range parts[1] {
		if c < '0' || c > '9' {
			return false
		}
	}
	for _, c := range parts[2] {
		if !strings.ContainsRune(codeCharset, c) {
			return false
		}
	}
	return true
}

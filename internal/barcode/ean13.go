// Package barcode allocates in-store EAN-13 codes for products.
package barcode

import (
	"fmt"
	"strings"
)

// payloadLen is the number of digits before the check digit.
const payloadLen = 12

// CheckDigit computes the EAN-13 check digit for a 12-digit payload.
// Digits at odd positions (1st, 3rd, ...) weigh 1, even positions weigh 3;
// the check digit brings the weighted sum to a multiple of 10.
func CheckDigit(payload string) (int, error) {
	if len(payload) != payloadLen {
		return 0, fmt.Errorf("payload must be %d digits, got %d", payloadLen, len(payload))
	}
	sum := 0
	for i, c := range payload {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("payload contains non-digit %q at position %d", c, i)
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10, nil
}

// Make builds a full EAN-13 code from a numeric prefix and a sequence
// number, zero-padding the sequence to fill the 12-digit payload.
func Make(prefix string, seq int64) (string, error) {
	if seq < 0 {
		return "", fmt.Errorf("sequence must be non-negative, got %d", seq)
	}
	seqDigits := payloadLen - len(prefix)
	if seqDigits < 1 {
		return "", fmt.Errorf("prefix %q leaves no room for a sequence", prefix)
	}
	seqStr := fmt.Sprintf("%0*d", seqDigits, seq)
	if len(seqStr) > seqDigits {
		return "", fmt.Errorf("sequence %d overflows %d digits", seq, seqDigits)
	}

	payload := prefix + seqStr
	check, err := CheckDigit(payload)
	if err != nil {
		return "", err
	}
	return payload + fmt.Sprintf("%d", check), nil
}

// Valid reports whether code is a well-formed EAN-13 with a correct check
// digit.
func Valid(code string) bool {
	if len(code) != payloadLen+1 {
		return false
	}
	if strings.IndexFunc(code, func(c rune) bool { return c < '0' || c > '9' }) >= 0 {
		return false
	}
	check, err := CheckDigit(code[:payloadLen])
	if err != nil {
		return false
	}
	return int(code[payloadLen]-'0') == check
}

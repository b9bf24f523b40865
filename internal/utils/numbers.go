package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Human-readable document numbers, distinct from primary keys:
// ORD-20250901-4821, BIL-20250901-0193, RSV-20250901-7755.
// A date-scoped random suffix keeps them short; uniqueness is backed by
// the unique index on the column, callers retry on collision.

func OrderNumber(now time.Time) string {
	return documentNumber("ORD", now)
}

func BillNumber(now time.Time) string {
	return documentNumber("BIL", now)
}

func ConfirmationNumber(now time.Time) string {
	return documentNumber("RSV", now)
}

func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), rand.Intn(10000))
}

const qrTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// QRToken returns an opaque token bound to a table or room row.
func QRToken() string {
	var b strings.Builder
	for i := 0; i < 32; i++ {
		b.WriteByte(qrTokenAlphabet[rand.Intn(len(qrTokenAlphabet))])
	}
	return b.String()
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	branchID := int64(3)
	token, exp, err := GenerateToken(42, "frontdesk", &branchID, time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserId)
	assert.Equal(t, "frontdesk", claims.Username)
	require.NotNil(t, claims.BranchId)
	assert.Equal(t, int64(3), *claims.BranchId)
}

func TestTokenWithoutBranch(t *testing.T) {
	token, _, err := GenerateToken(1, "owner", nil, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.BranchId)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, _, err := GenerateToken(1, "owner", nil, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestDocumentNumberFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Regexp(t, `^ORD-20250601-\d{4}$`, OrderNumber(now))
	assert.Regexp(t, `^BIL-20250601-\d{4}$`, BillNumber(now))
	assert.Regexp(t, `^RSV-20250601-\d{4}$`, ConfirmationNumber(now))
}

func TestQRTokenShape(t *testing.T) {
	token := QRToken()
	assert.Len(t, token, 32)
	assert.Regexp(t, `^[a-zA-Z0-9]+$`, token)

	assert.NotEqual(t, token, QRToken())
}

package service

import (
	"testing"

	"printscrap/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"98765 43210", "+919876543210"},
		{"+91 98765-43210", "+919876543210"},
		{"Buyer@Example.COM", "buyer@example.com"},
	}
	for _, tc := range cases {
		got, err := normalizeContact("buyerContact", tc.in, "IN")
		require.NoError(t, err, tc.in)
		require.NotNil(t, got)
		assert.Equal(t, tc.want, *got)
	}
}

func TestNormalizeContact_EmptyAndInvalid(t *testing.T) {
	got, err := normalizeContact("buyerContact", "  ", "IN")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"12", "not a phone", "buyer@"} {
		_, err := normalizeContact("buyerContact", bad, "IN")
		var ve *apierror.ValidationError
		assert.ErrorAs(t, err, &ve, bad)
	}
}

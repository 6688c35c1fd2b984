package interfaces

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		decimals uint8
		expected uint64
		overflow bool
	}{
		{name: "two decimals", amount: 100, decimals: 2, expected: 10000},
		{name: "no decimals", amount: 42, decimals: 0, expected: 42},
		{name: "nine decimals", amount: 1, decimals: 9, expected: 1_000_000_000},
		{name: "zero amount", amount: 0, decimals: 9, expected: 0},
		{name: "max without scaling", amount: math.MaxUint64, decimals: 0, expected: math.MaxUint64},
		{name: "overflow", amount: math.MaxUint64 / 10, decimals: 2, overflow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToBaseUnits(tt.amount, tt.decimals)
			if tt.overflow {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTokenSpec))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTokenSpec_Validate(t *testing.T) {
	valid := TokenSpec{Name: "Moldova coin", Symbol: "MDLC", Description: "Description", Decimals: 2, Amount: 100}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*TokenSpec)
	}{
		{name: "empty name", mutate: func(s *TokenSpec) { s.Name = "" }},
		{name: "long name", mutate: func(s *TokenSpec) { s.Name = strings.Repeat("n", MaxNameLength+1) }},
		{name: "empty symbol", mutate: func(s *TokenSpec) { s.Symbol = "" }},
		{name: "long symbol", mutate: func(s *TokenSpec) { s.Symbol = strings.Repeat("S", MaxSymbolLength+1) }},
		{name: "too many decimals", mutate: func(s *TokenSpec) { s.Decimals = MaxDecimals + 1 }},
		{name: "amount overflow", mutate: func(s *TokenSpec) { s.Amount = math.MaxUint64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTokenSpec))
		})
	}
}

func TestNewStorageBackendLocation(t *testing.T) {
	for _, uri := range []string{"file:///tmp/x", "ipfs://127.0.0.1:5001/", "s3://bucket/prefix", "gs://bucket/p"} {
		loc, err := NewStorageBackendLocation(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, uri, loc.String())
	}

	_, err := NewStorageBackendLocation("ftp://example.com/")
	assert.True(t, errors.Is(err, ErrInvalidLocationURI))
}

func TestContentID(t *testing.T) {
	id := ComputeID([]byte("hello"))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", id.String())
	assert.True(t, id.Equal(ComputeID([]byte("hello"))))
	assert.False(t, id.Equal(ComputeID([]byte("hello!"))))
}

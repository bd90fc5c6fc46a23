package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	// CRC32C (Castagnoli) の既知の値
	assert.Equal(t, int64(0xe3069283), checksum([]byte("123456789")))
	assert.Equal(t, int64(0), checksum(nil))
}

func TestNewKMSSealer_RequiresKeyName(t *testing.T) {
	_, err := NewKMSSealer(context.Background(), "")
	require.Error(t, err)
}

package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeUint32_ReadsBigEndian(t *testing.T) {
	assert.Equal(t, uint32(0x01020304), beUint32([]byte{0x01, 0x02, 0x03, 0x04}))
}

func TestSwap32_ReversesByteOrder(t *testing.T) {
	assert.Equal(t, uint32(0x04030201), swap32(0x01020304))
}

func TestCRC32_KnownVector(t *testing.T) {
	assert.Equal(t, uint32(0xCBF43926), CRC32([]byte("123456789")))
}

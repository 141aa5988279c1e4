package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte{0x0C, 0x94, 0x10, 0x00, 0x11, 0x24}
	encrypted := EncryptROM(plain)
	decrypted := DecryptROM(encrypted, len(plain))
	assert.Equal(t, plain, decrypted)
}

func TestIsEncrypted_PlainLeadByteIsDetectedAsUnencrypted(t *testing.T) {
	assert.False(t, isEncrypted([]byte{0x0C, 0x94}))
	assert.False(t, isEncrypted([]byte{0xFD, 0x00}))
	assert.True(t, isEncrypted([]byte{0xAB, 0x00}))
}

func TestPrepareForFlash_EncryptsOnlyWhenNeeded(t *testing.T) {
	plain := []byte{0x0C, 0x94, 0x10, 0x00}
	prepared := PrepareForFlash(plain)
	assert.NotEqual(t, plain, prepared)

	already := PrepareForFlash(prepared)
	assert.Equal(t, prepared, already)
}

func TestDecryptROM_PadsShortImageWithFF(t *testing.T) {
	out := DecryptROM([]byte{0xAC, 0x9C}, 8)
	assert.Len(t, out, 8)
	for _, b := range out[2:] {
		assert.Equal(t, byte(0xFF), b)
	}
}

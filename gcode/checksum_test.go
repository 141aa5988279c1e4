package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFletcher16_EmptyInput(t *testing.T) {
	s1, s2 := fletcher16(nil)
	assert.Equal(t, byte(0), s1)
	assert.Equal(t, byte(0), s2)
}

func TestFletcher16_KnownVector(t *testing.T) {
	// "abcde" -> sum1=0xF0, sum2=0xC8 under mod-255 Fletcher-16.
	s1, s2 := fletcher16([]byte("abcde"))
	assert.Equal(t, byte(0xF0), s1)
	assert.Equal(t, byte(0xC8), s2)
}

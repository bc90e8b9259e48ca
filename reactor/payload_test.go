package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadRoundTripUnpaired(t *testing.T) {
	v := encodePayload(42, false, 42, false)
	p := decodePayload(v)
	assert.Equal(t, int32(42), p.primaryFD)
	assert.False(t, p.primaryTimer)
	assert.False(t, p.hasPair())
}

func TestPayloadRoundTripPaired(t *testing.T) {
	v := encodePayload(7, false, 9, true)
	p := decodePayload(v)
	assert.Equal(t, int32(7), p.primaryFD)
	assert.False(t, p.primaryTimer)
	assert.Equal(t, int32(9), p.extraFD)
	assert.True(t, p.extraTimer)
	assert.True(t, p.hasPair())
}

func TestPayloadRejectsTagBitCollision(t *testing.T) {
	assert.Panics(t, func() {
		tb := tagBit
		encodePayload(int32(tb), false, 0, false)
	})
}

func TestPayloadSymmetricPairEncoding(t *testing.T) {
	ioSide := encodePayload(5, false, 100, true)
	timerSide := encodePayload(100, true, 5, false)

	pIO := decodePayload(ioSide)
	pTimer := decodePayload(timerSide)

	assert.Equal(t, pIO.primaryFD, pTimer.extraFD)
	assert.Equal(t, pIO.extraFD, pTimer.primaryFD)
}

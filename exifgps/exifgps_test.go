package exifgps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyImageHasNoGPS(t *testing.T) {
	_, err := FromImage(nil)
	assert.ErrorIs(t, err, ErrNoGPS)

	_, err = FromImage([]byte{})
	assert.ErrorIs(t, err, ErrNoGPS)
}

func TestNonImageBytesHaveNoGPS(t *testing.T) {
	_, err := FromImage([]byte("definitely not a jpeg"))
	assert.ErrorIs(t, err, ErrNoGPS)
}

func TestJPEGWithoutEXIFHasNoGPS(t *testing.T) {
	// Minimal JPEG SOI/EOI markers with no APP1 segment.
	_, err := FromImage([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	assert.ErrorIs(t, err, ErrNoGPS)
}

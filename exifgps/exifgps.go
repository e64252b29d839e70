// Package exifgps pulls GPS coordinates out of image metadata. Resolution
// evidence only counts when the coordinates are embedded in the photo itself.
package exifgps

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"

	"civicfix/geo"
)

// ErrNoGPS means the image carries no usable embedded coordinates.
var ErrNoGPS = errors.New("no GPS coordinates embedded in image")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FromImage decodes the EXIF block of an image and returns its GPS position.
// Missing EXIF, missing GPS tags, out-of-range values and the 0,0 camera
// default all report ErrNoGPS.
func FromImage(data []byte) (Coordinates, error) {
	if len(data) == 0 {
		return Coordinates{}, ErrNoGPS
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrNoGPS, err)
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrNoGPS, err)
	}

	if !geo.Valid(lat, lon) {
		return Coordinates{}, ErrNoGPS
	}
	// 0,0 is the default many cameras write when location services are off.
	if lat == 0 && lon == 0 {
		return Coordinates{}, ErrNoGPS
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Package verification implements the identity gate consulted before
// resolution: a local structural face detector and a remote semantic
// confirmer, OR-composed so one healthy method is enough.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrNoDetectors is returned when the gate is enabled but nothing is
// configured to run; the gate fails closed rather than silently passing.
var ErrNoDetectors = errors.New("no face verification methods configured")

// minImageBytes filters out payloads too small to be a real photo.
const minImageBytes = 1000

// Result is the aggregate gate outcome.
type Result struct {
	Detected      bool   `json:"face_detected_locally"`
	ConfirmsHuman bool   `json:"confirms_human"`
	Reason        string `json:"reason,omitempty"`
}

// Passed reports whether either method independently confirmed a human face.
func (r Result) Passed() bool {
	return r.Detected || r.ConfirmsHuman
}

// Detector runs one face-check method over raw image bytes.
type Detector interface {
	DetectFace(ctx context.Context, image []byte) (found bool, reason string, err error)
}

// Gate composes the configured detectors. With bypass set it always passes;
// with no detectors and no bypass it always errors.
type Gate struct {
	local  Detector
	remote Detector
	bypass bool
}

func NewGate(local, remote Detector, bypass bool) *Gate {
	return &Gate{local: local, remote: remote, bypass: bypass}
}

// Verify runs the configured detectors and ORs their verdicts.
func (g *Gate) Verify(ctx context.Context, image []byte) (Result, error) {
	if g.bypass {
		log.Println("Face verification bypassed by configuration")
		return Result{Detected: true, Reason: "verification bypassed by configuration"}, nil
	}

	if g.local == nil && g.remote == nil {
		return Result{}, ErrNoDetectors
	}

	if len(image) < minImageBytes {
		return Result{Reason: "image too small"}, nil
	}

	var reasons []string
	result := Result{}

	if g.remote != nil {
		found, reason, err := g.remote.DetectFace(ctx, image)
		if err != nil {
			log.Printf("Remote face confirmation failed: %v", err)
			reasons = append(reasons, fmt.Sprintf("remote error: %v", err))
		} else {
			result.ConfirmsHuman = found
			reasons = append(reasons, "remote: "+reason)
		}
	}

	if g.local != nil {
		found, reason, err := g.local.DetectFace(ctx, image)
		if err != nil {
			log.Printf("Local face detection failed: %v", err)
			reasons = append(reasons, fmt.Sprintf("local error: %v", err))
		} else {
			result.Detected = found
			reasons = append(reasons, "local: "+reason)
		}
	}

	result.Reason = strings.Join(reasons, "; ")
	return result, nil
}

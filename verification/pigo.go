package verification

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	// detectionQuality is pigo's cluster score cutoff; below it the hit is
	// treated as noise.
	detectionQuality = 5.0

	// A plausible selfie face occupies between 5% and 80% of the frame.
	minFaceRatio = 0.05
	maxFaceRatio = 0.8
)

// PigoDetector is the local structural detector, backed by the pigo
// pixel-intensity cascade classifier.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads a binary cascade file (the stock facefinder cascade
// shipped with pigo works).
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &PigoDetector{classifier: classifier}, nil
}

func (d *PigoDetector) DetectFace(_ context.Context, data []byte) (bool, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false, "", fmt.Errorf("failed to decode image: %w", err)
	}

	nrgba := pigo.ImgToNRGBA(src)
	pixels := pigo.RgbToGrayscale(nrgba)
	bounds := nrgba.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()

	params := pigo.CascadeParams{
		MinSize:     80,
		MaxSize:     cols,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	best := pigo.Detection{}
	for _, det := range dets {
		if det.Q >= detectionQuality && det.Scale > best.Scale {
			best = det
		}
	}
	if best.Scale == 0 {
		return false, "no face detected", nil
	}

	// Reject detections that are implausibly small or fill the whole frame.
	faceArea := float64(best.Scale) * float64(best.Scale)
	imgArea := float64(cols) * float64(rows)
	ratio := faceArea / imgArea
	if ratio < minFaceRatio || ratio > maxFaceRatio {
		return false, fmt.Sprintf("face size ratio %.3f outside plausible range", ratio), nil
	}

	return true, fmt.Sprintf("face detected at scale %d, ratio %.3f", best.Scale, ratio), nil
}

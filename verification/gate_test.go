package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	found  bool
	reason string
	err    error
}

func (s stubDetector) DetectFace(context.Context, []byte) (bool, string, error) {
	return s.found, s.reason, s.err
}

var photo = make([]byte, 4096)

func TestGatePassesWhenEitherDetectorConfirms(t *testing.T) {
	cases := []struct {
		name          string
		local, remote stubDetector
		want          bool
	}{
		{"both confirm", stubDetector{found: true}, stubDetector{found: true}, true},
		{"only local", stubDetector{found: true}, stubDetector{found: false}, true},
		{"only remote", stubDetector{found: false}, stubDetector{found: true}, true},
		{"neither", stubDetector{found: false}, stubDetector{found: false}, false},
	}

	for _, tc := range cases {
		g := NewGate(tc.local, tc.remote, false)
		res, err := g.Verify(context.Background(), photo)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, res.Passed(), tc.name)
	}
}

func TestGateSurvivesOneDetectorError(t *testing.T) {
	g := NewGate(stubDetector{found: true, reason: "face detected"}, stubDetector{err: errors.New("vision service down")}, false)

	res, err := g.Verify(context.Background(), photo)
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Contains(t, res.Reason, "remote error")
}

func TestGateFailsClosedWithNoDetectors(t *testing.T) {
	g := NewGate(nil, nil, false)

	_, err := g.Verify(context.Background(), photo)
	assert.ErrorIs(t, err, ErrNoDetectors)
}

func TestGateBypassAlwaysPasses(t *testing.T) {
	g := NewGate(nil, nil, true)

	res, err := g.Verify(context.Background(), photo)
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Contains(t, res.Reason, "bypassed")
}

func TestGateRejectsTinyImages(t *testing.T) {
	g := NewGate(stubDetector{found: true}, nil, false)

	res, err := g.Verify(context.Background(), []byte("tiny"))
	require.NoError(t, err)
	assert.False(t, res.Passed())
	assert.Equal(t, "image too small", res.Reason)
}

func TestGateSingleDetectorOnly(t *testing.T) {
	g := NewGate(nil, stubDetector{found: true, reason: "true"}, false)
	res, err := g.Verify(context.Background(), photo)
	require.NoError(t, err)
	assert.True(t, res.ConfirmsHuman)
	assert.False(t, res.Detected)
	assert.True(t, res.Passed())
}

package detection

import (
	"testing"

	"civicfix/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(id, category string, lat, lon float64) types.Report {
	return types.Report{ID: id, Category: category, Latitude: lat, Longitude: lon, Status: types.StatusReported}
}

func TestNearbySameCategoryIsDuplicate(t *testing.T) {
	// Second pothole ~14 m from the first.
	existing := []types.Report{report("r1", "Pothole", 28.6139, 77.2090)}

	m, ok := FindNearestDuplicate(existing, "Pothole", 28.6140, 77.2091, DuplicateRadiusMeters)
	require.True(t, ok)
	assert.Equal(t, "r1", m.Report.ID)
	assert.InDelta(t, 14.0, m.Distance, 4.0)
}

func TestCategoryComparisonIsCaseInsensitive(t *testing.T) {
	existing := []types.Report{report("r1", "pothole", 28.6139, 77.2090)}

	_, ok := FindNearestDuplicate(existing, "  POTHOLE ", 28.6139, 77.2090, DuplicateRadiusMeters)
	assert.True(t, ok)
}

func TestDifferentCategoryIsNotDuplicate(t *testing.T) {
	existing := []types.Report{report("r1", "Garbage", 28.6139, 77.2090)}

	_, ok := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090, DuplicateRadiusMeters)
	assert.False(t, ok)
}

func TestThresholdBoundaryIsInclusive(t *testing.T) {
	// 0.000307 degrees of longitude at this latitude is ~30 m.
	existing := []types.Report{report("r1", "Pothole", 28.6139, 77.2090)}

	m, ok := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090+0.000307, m30(existing))
	require.True(t, ok)
	assert.Equal(t, "r1", m.Report.ID)

	// Just past the measured distance it no longer matches.
	_, ok = FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090+0.000307, m.Distance-0.01)
	assert.False(t, ok)
}

// m30 returns the exact measured distance so the boundary test asserts the
// inclusive comparison rather than longitude arithmetic.
func m30(existing []types.Report) float64 {
	m, _ := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090+0.000307, 1000)
	return m.Distance
}

func TestNearestWins(t *testing.T) {
	existing := []types.Report{
		report("far", "Pothole", 28.61410, 77.20920),
		report("near", "Pothole", 28.61391, 77.20901),
	}

	m, ok := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090, DuplicateRadiusMeters)
	require.True(t, ok)
	assert.Equal(t, "near", m.Report.ID)
}

func TestTieBreaksOnLowestID(t *testing.T) {
	existing := []types.Report{
		report("b", "Pothole", 28.6139, 77.2090),
		report("a", "Pothole", 28.6139, 77.2090),
	}

	m, ok := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090, DuplicateRadiusMeters)
	require.True(t, ok)
	assert.Equal(t, "a", m.Report.ID)
}

func TestInvalidCandidateCoordinatesNeverMatch(t *testing.T) {
	existing := []types.Report{report("r1", "Pothole", 999, 77.2090)}

	_, ok := FindNearestDuplicate(existing, "Pothole", 28.6139, 77.2090, DuplicateRadiusMeters)
	assert.False(t, ok)
}

func TestEmptyCandidateList(t *testing.T) {
	_, ok := FindNearestDuplicate(nil, "Pothole", 28.6139, 77.2090, DuplicateRadiusMeters)
	assert.False(t, ok)
}

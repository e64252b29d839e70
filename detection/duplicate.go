// Package detection scans active reports for near-duplicates of a new
// submission so the same pothole does not get filed twice.
package detection

import (
	"strings"

	"civicfix/geo"
	"civicfix/types"
)

// DuplicateRadiusMeters is the inclusive match radius. Whether this should
// vary by category is an open policy question; it is a single parameter here
// so callers can override it per deployment.
const DuplicateRadiusMeters = 30.0

// Match is a duplicate hit with its measured distance.
type Match struct {
	Report   types.Report
	Distance float64
}

// FindNearestDuplicate returns the nearest candidate whose category matches
// case-insensitively and whose distance to the new point is within radius.
// Ties on distance are broken by the lowest report ID so results are
// deterministic regardless of scan order. Returns false when nothing matches.
func FindNearestDuplicate(candidates []types.Report, category string, lat, lon float64, radius float64) (Match, bool) {
	var best Match
	found := false

	newCat := strings.ToLower(strings.TrimSpace(category))
	for _, r := range candidates {
		if strings.ToLower(strings.TrimSpace(r.Category)) != newCat {
			continue
		}

		d := geo.DistanceMeters(r.Latitude, r.Longitude, lat, lon)
		if d > radius {
			continue
		}
		if !found || d < best.Distance || (d == best.Distance && r.ID < best.Report.ID) {
			best = Match{Report: r, Distance: d}
			found = true
		}
	}

	return best, found
}

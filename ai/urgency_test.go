package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicfix/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 11:00 UTC, outside rush hours.
var quietTime = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

func TestScoreClampedToRange(t *testing.T) {
	cfg := DefaultUrgencyConfig()

	high := cfg.Score("Traffic Signal", types.MCQResponses{
		Severity: "Critical", Duration: "More than 1 month", AffectedArea: "Entire area",
	}, quietTime)
	assert.Equal(t, 100, high)

	low := cfg.Score("Sidewalk", types.MCQResponses{
		Severity: "Low", Duration: "Just noticed", AffectedArea: "Few people",
	}, quietTime)
	assert.GreaterOrEqual(t, low, 1)
	assert.LessOrEqual(t, low, 100)
	assert.Less(t, low, 50)
}

func TestScoreUnknownCategoryUsesDefaultBase(t *testing.T) {
	cfg := DefaultUrgencyConfig()
	score := cfg.Score("Alien Invasion", types.MCQResponses{Severity: "Medium", Duration: "1 day", AffectedArea: "Few people"}, quietTime)
	assert.Equal(t, 40, score) // 50 * 1.0 * 1.0 * 0.8
}

func TestRushHourRaisesScore(t *testing.T) {
	cfg := DefaultUrgencyConfig()
	mcq := types.MCQResponses{Severity: "Medium", Duration: "1 day", AffectedArea: "Many people"}

	rush := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC) // Monday 08:30
	assert.Greater(t, cfg.Score("Pothole", mcq, rush), cfg.Score("Pothole", mcq, quietTime))
}

func TestLabelBanding(t *testing.T) {
	assert.Equal(t, "Critical", LabelFor(95))
	assert.Equal(t, "Critical", LabelFor(90))
	assert.Equal(t, "High", LabelFor(75))
	assert.Equal(t, "Medium", LabelFor(50))
	assert.Equal(t, "Low", LabelFor(25))
	assert.Equal(t, "Very Low", LabelFor(10))
}

func TestClassifyUrgencyFallsBackWhenServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, DefaultUrgencyConfig())
	resp := c.ClassifyUrgency(context.Background(), ClassificationRequest{
		Category:      "Pothole",
		MCQ:           types.MCQResponses{Severity: "High", Duration: "1 week", AffectedArea: "Traffic flow"},
		ReportingTime: quietTime,
	})
	// 75 * 1.2 * 1.1 * 1.2 = 118.8, clamped to 100
	assert.Equal(t, 100, resp.UrgencyScore)
	assert.Equal(t, "Critical", resp.UrgencyLabel)
	assert.Contains(t, resp.Reasoning, "fallback")
}

func TestClassifyUrgencyUsesService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/classify", r.URL.Path)
		json.NewEncoder(w).Encode(ClassificationResponse{UrgencyScore: 77, UrgencyLabel: "High"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, DefaultUrgencyConfig())
	resp := c.ClassifyUrgency(context.Background(), ClassificationRequest{Category: "Pothole", ReportingTime: quietTime})
	assert.Equal(t, 77, resp.UrgencyScore)
	assert.Equal(t, "High", resp.UrgencyLabel)
}

func TestGenerateSummaryFallbackTemplate(t *testing.T) {
	c := NewClient("", DefaultUrgencyConfig()) // no service configured

	resp := c.GenerateSummary(context.Background(), SummaryRequest{
		Category:      "Pothole",
		ReportingTime: quietTime,
		Latitude:      28.6139,
		Longitude:     77.2090,
		MCQ:           types.MCQResponses{Severity: "High", Duration: "1 week"},
	})
	assert.Equal(t, "Road Surface Damage Report", resp.Title)
	assert.Contains(t, resp.Description, "Severity Level: High")
	assert.Contains(t, resp.Description, "28.613900")
	assert.Equal(t, []string{"Pothole"}, resp.Tags)
}

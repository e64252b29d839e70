// Package ai talks to the external report-enhancement service for titles,
// descriptions, tags and urgency classification, falling back to local
// deterministic generation when the service is unavailable.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"civicfix/types"
)

const defaultTimeout = 30 * time.Second

type SummaryRequest struct {
	Category      string             `json:"category"`
	ReportingTime time.Time          `json:"reporting_time"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	MCQ           types.MCQResponses `json:"mcq_responses"`
	ReporterName  string             `json:"reporter_name,omitempty"`
}

type SummaryResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

type ClassificationRequest struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	MCQ           types.MCQResponses `json:"mcq_responses"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	ReportingTime time.Time          `json:"reporting_time"`
}

type ClassificationResponse struct {
	UrgencyScore int    `json:"urgency_score"`
	UrgencyLabel string `json:"urgency_label"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// Client calls the AI microservice. An empty base URL disables the remote
// path entirely and every call uses the local fallback.
type Client struct {
	baseURL    string
	httpClient *http.Client
	urgency    UrgencyConfig
}

func NewClient(baseURL string, urgency UrgencyConfig) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		urgency:    urgency,
	}
}

// GenerateSummary produces the report title, description and tags. Service
// failures degrade to a structured template.
func (c *Client) GenerateSummary(ctx context.Context, req SummaryRequest) SummaryResponse {
	if c.baseURL != "" {
		var resp SummaryResponse
		if err := c.post(ctx, "/generate-summary", req, &resp); err == nil && resp.Title != "" {
			return resp
		} else if err != nil {
			log.Printf("AI summary generation failed, using fallback: %v", err)
		}
	}
	return c.fallbackSummary(req)
}

// ClassifyUrgency scores a report 1-100. Service failures degrade to the
// weighted lookup tables.
func (c *Client) ClassifyUrgency(ctx context.Context, req ClassificationRequest) ClassificationResponse {
	if c.baseURL != "" {
		var resp ClassificationResponse
		if err := c.post(ctx, "/classify", req, &resp); err == nil && resp.UrgencyScore > 0 {
			if resp.UrgencyLabel == "" {
				resp.UrgencyLabel = LabelFor(resp.UrgencyScore)
			}
			return resp
		} else if err != nil {
			log.Printf("AI urgency classification failed, using fallback: %v", err)
		}
	}

	score := c.urgency.Score(req.Category, req.MCQ, req.ReportingTime)
	return ClassificationResponse{
		UrgencyScore: score,
		UrgencyLabel: LabelFor(score),
		Reasoning:    fmt.Sprintf("Weighted fallback: category %s, severity %s, duration %s", req.Category, req.MCQ.Severity, req.MCQ.Duration),
	}
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("AI service returned status: " + resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var categoryTitles = map[string]string{
	"Road Issue":     "Road Infrastructure Issue Report",
	"Garbage":        "Waste Management Issue Report",
	"Streetlight":    "Street Lighting Problem Report",
	"Waterlogging":   "Waterlogging and Drainage Issue Report",
	"Pothole":        "Road Surface Damage Report",
	"Traffic Signal": "Traffic Signal Malfunction Report",
	"Sidewalk":       "Pedestrian Infrastructure Issue Report",
	"Drainage":       "Drainage System Problem Report",
	"Other":          "General Infrastructure Issue Report",
}

func (c *Client) fallbackSummary(req SummaryRequest) SummaryResponse {
	title, ok := categoryTitles[req.Category]
	if !ok {
		title = "Infrastructure Issue Report"
	}

	reporter := req.ReporterName
	if reporter == "" {
		reporter = "Citizen"
	}

	description := fmt.Sprintf(
		"INFRASTRUCTURE ISSUE REPORT\n\n"+
			"Issue Type: %s\n"+
			"Reported: %s\n"+
			"Location: %.6f, %.6f\n"+
			"Reporter: %s\n"+
			"Severity Level: %s\n"+
			"Duration: %s\n"+
			"Area Affected: %s\n",
		req.Category,
		req.ReportingTime.Format("January 2, 2006 3:04 PM"),
		req.Latitude, req.Longitude,
		reporter,
		orDefault(req.MCQ.Severity, "Medium"),
		orDefault(req.MCQ.Duration, "Unknown"),
		orDefault(req.MCQ.AffectedArea, "Local area"),
	)

	return SummaryResponse{
		Title:       title,
		Description: description,
		Tags:        []string{req.Category},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package api

import (
	"strconv"

	"github.com/goccy/go-json"
)

// SampleOptions bounds a projection request's point count.
type SampleOptions struct {
	Enabled   bool   `json:"enabled"`
	MaxPoints int    `json:"max_points"`
	Strategy  string `json:"strategy" validate:"omitempty,oneof=random stratified_by_session"`
}

// ProjectRequest is the /api/project payload.
type ProjectRequest struct {
	Method       string              `json:"method"`
	Params       map[string]any      `json:"params"`
	Mode         string              `json:"mode" validate:"omitempty,oneof=all session"`
	SessionValue string              `json:"session_value"`
	Filters      map[string][]string `json:"filters"`
	Sample       SampleOptions       `json:"sample"`
	OralOnly     bool                `json:"oral_only"`
	SearchText   string              `json:"search_text"`
	SearchMode   string              `json:"search_mode" validate:"omitempty,oneof=highlight filter"`
}

// applyDefaults fills the documented defaults for omitted fields.
func (r *ProjectRequest) applyDefaults() {
	if r.Method == "" {
		r.Method = "pca"
	}
	if r.Mode == "" {
		r.Mode = "all"
	}
	if r.SearchMode == "" {
		r.SearchMode = "highlight"
	}
	if r.Sample.Strategy == "" {
		r.Sample.Strategy = "random"
	}
	if r.Params == nil {
		r.Params = map[string]any{}
	}
}

// Point is one projected paper in a /api/project response.
type Point struct {
	PaperID          string  `json:"paper_id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Title            string  `json:"title"`
	Session          string  `json:"session"`
	RoomLocation     string  `json:"room_location"`
	TypePresentation string  `json:"type_presentation"`
	AttendanceType   string  `json:"attendance_type"`
	ColorValue       string  `json:"color_value"`
	Matched          bool    `json:"matched"`
}

// ProjectStats summarizes one projection request.
type ProjectStats struct {
	NTotal    int     `json:"n_total"`
	NFiltered int     `json:"n_filtered"`
	NReturned int     `json:"n_returned"`
	ComputeMS float64 `json:"compute_ms"`
}

// ProjectResponse is the /api/project response body.
type ProjectResponse struct {
	Points       []Point      `json:"points"`
	ColorBy      string       `json:"color_by"`
	LegendValues []string     `json:"legend_values"`
	Stats        ProjectStats `json:"stats"`
}

// NeighborsRequest is the /api/nn payload.
type NeighborsRequest struct {
	PaperID    string   `json:"paper_id" validate:"required"`
	K          *int     `json:"k"`
	CurrentIDs []string `json:"current_ids"`
}

// NeighborPayload is one ranked neighbor in a /api/nn response.
type NeighborPayload struct {
	PaperID          string  `json:"paper_id"`
	Title            string  `json:"title"`
	Cosine           float64 `json:"cosine"`
	Session          string  `json:"session"`
	RoomLocation     string  `json:"room_location"`
	TypePresentation string  `json:"type_presentation"`
	AttendanceType   string  `json:"attendance_type"`
}

// NeighborsResponse is the /api/nn response body.
type NeighborsResponse struct {
	Neighbors []NeighborPayload `json:"neighbors"`
}

// TopicMatchRequest is the /api/topic_match payload. Ratings and slots stay
// raw here: malformed entries are tolerated (skipped) rather than failing
// the whole request, except for a non-list slots value which is a
// validation error.
type TopicMatchRequest struct {
	Ratings map[string]json.RawMessage `json:"ratings"`
	Slots   json.RawMessage            `json:"slots"`
	TopK    int                        `json:"top_k"`
}

// SlotPayload is one candidate group in a topic-match request.
type SlotPayload struct {
	SlotKey  string   `json:"slot_key"`
	PaperIDs []string `json:"paper_ids"`
}

// SlotResult is the per-slot outcome of a topic-match request.
type SlotResult struct {
	SlotKey     string  `json:"slot_key"`
	TopicMatch  float64 `json:"topic_match"`
	NCandidates int     `json:"n_candidates"`
	NUsed       int     `json:"n_used"`
}

// TopicMatchResponse is the /api/topic_match response body.
type TopicMatchResponse struct {
	OK                  bool         `json:"ok"`
	HasPreferenceSignal bool         `json:"has_preference_signal"`
	TopK                int          `json:"top_k"`
	Results             []SlotResult `json:"results"`
}

// SaveStateRequest is the /api/save_state payload.
type SaveStateRequest struct {
	State json.RawMessage `json:"state"`
}

// SaveScoredCSVRequest is the /api/save_scored_csv payload. CSVText is a
// pointer so a missing field can be told apart from an empty export.
type SaveScoredCSVRequest struct {
	CSVText *string `json:"csv_text"`
}

// SavedResponse acknowledges a persisted artifact.
type SavedResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

// MetaResponse is the /api/meta response body.
type MetaResponse struct {
	NTotal            int                 `json:"n_total"`
	Filters           map[string][]string `json:"filters"`
	AvailableSessions []string            `json:"available_sessions"`
	DefaultColumns    map[string]string   `json:"default_columns"`
}

// parseSlot decodes one slots entry. Non-object entries are skipped rather
// than failing the request; a malformed paper_ids value degrades to an empty
// candidate list.
func parseSlot(raw json.RawMessage) (SlotPayload, bool) {
	var entry struct {
		SlotKey  string          `json:"slot_key"`
		PaperIDs json.RawMessage `json:"paper_ids"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return SlotPayload{}, false
	}
	slot := SlotPayload{SlotKey: entry.SlotKey}
	if len(entry.PaperIDs) > 0 {
		_ = json.Unmarshal(entry.PaperIDs, &slot.PaperIDs)
	}
	return slot, true
}

// parseMu extracts a numeric rating from a raw ratings entry. Entries that
// are not objects, lack mu, or carry an unparseable mu are skipped.
func parseMu(raw json.RawMessage) (float64, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, false
	}
	muRaw, ok := payload["mu"]
	if !ok {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(muRaw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(muRaw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

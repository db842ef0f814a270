// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package api

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/paperatlas/paperatlas/internal/config"
	"github.com/paperatlas/paperatlas/internal/engine"
	"github.com/paperatlas/paperatlas/internal/logging"
	"github.com/paperatlas/paperatlas/internal/store"
	"github.com/paperatlas/paperatlas/internal/validation"
)

// Handler serves the Paperatlas API over a loaded engine.
type Handler struct {
	cfg    *config.Config
	engine *engine.Engine
}

// NewHandler creates the API handler.
func NewHandler(cfg *config.Config, eng *engine.Engine) *Handler {
	return &Handler{cfg: cfg, engine: eng}
}

// Meta reports the corpus size, the distinct values of every filterable
// column, and the UI column mapping.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Store()

	filters := make(map[string][]string, len(store.FilterColumns))
	for _, col := range store.FilterColumns {
		filters[string(col)] = s.UniqueValues(col)
	}

	respondJSON(w, http.StatusOK, MetaResponse{
		NTotal:            s.Len(),
		Filters:           filters,
		AvailableSessions: filters[string(store.ColSession)],
		DefaultColumns: map[string]string{
			"title":            string(store.ColTitle),
			"paper_id":         string(store.ColPaperID),
			"color_by_all":     string(store.ColSession),
			"color_by_session": string(store.ColRoomLocation),
		},
	})
}

// Project runs the filter → sample → project pipeline and returns the 2D
// point cloud with its legend and stats.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.applyDefaults()
	if err := validation.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	s := h.engine.Store()
	colorBy := string(store.ColSession)
	if req.Mode != "all" {
		colorBy = string(store.ColRoomLocation)
	}

	mask, err := h.engine.Filter(engine.FilterSpec{
		Filters:      req.Filters,
		Mode:         req.Mode,
		SessionValue: req.SessionValue,
		OralOnly:     req.OralOnly,
		SearchText:   req.SearchText,
		SearchMode:   req.SearchMode,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	rows := engine.MaskRows(mask)
	nFiltered := len(rows)

	if nFiltered == 0 {
		respondJSON(w, http.StatusOK, ProjectResponse{
			Points:       []Point{},
			ColorBy:      colorBy,
			LegendValues: []string{},
			Stats: ProjectStats{
				NTotal:    s.Len(),
				ComputeMS: elapsedMS(started),
			},
		})
		return
	}

	rows = h.engine.Sample(rows, engine.SampleSpec{
		Enabled:     req.Sample.Enabled,
		MaxPoints:   req.Sample.MaxPoints,
		Strategy:    req.Sample.Strategy,
		RandomState: engine.RandomState(req.Params),
	})

	coords, cached, err := h.engine.Project(req.Method, req.Params, rows)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	searchTerms := engine.ParseSearchTerms(req.SearchText)

	points := make([]Point, len(rows))
	legendSet := make(map[string]struct{})
	for i, row := range rows {
		rec := s.Record(row)
		colorValue := rec.Field(store.Column(colorBy))
		legendSet[colorValue] = struct{}{}
		points[i] = Point{
			PaperID:          rec.PaperID,
			X:                coords[i][0],
			Y:                coords[i][1],
			Title:            rec.Title,
			Session:          rec.Session,
			RoomLocation:     rec.RoomLocation,
			TypePresentation: rec.TypePresentation,
			AttendanceType:   rec.AttendanceType,
			ColorValue:       colorValue,
			Matched:          engine.MatchesSearch(rec.Title, searchTerms),
		}
	}

	legend := make([]string, 0, len(legendSet))
	for v := range legendSet {
		legend = append(legend, v)
	}
	sort.Strings(legend)

	logging.Debug().
		Str("method", req.Method).
		Int("n_filtered", nFiltered).
		Int("n_returned", len(points)).
		Bool("cached", cached).
		Msg("projection served")

	respondJSON(w, http.StatusOK, ProjectResponse{
		Points:       points,
		ColorBy:      colorBy,
		LegendValues: legend,
		Stats: ProjectStats{
			NTotal:    s.Len(),
			NFiltered: nFiltered,
			NReturned: len(points),
			ComputeMS: elapsedMS(started),
		},
	})
}

// Neighbors ranks papers by cosine similarity to a query paper.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	var req NeighborsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.PaperID = strings.TrimSpace(req.PaperID)
	if err := validation.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	k := 10
	if req.K != nil {
		k = *req.K
	}

	neighbors, err := h.engine.Neighbors(req.PaperID, req.CurrentIDs, k)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	s := h.engine.Store()
	payload := make([]NeighborPayload, len(neighbors))
	for i, nb := range neighbors {
		rec := s.Record(nb.Row)
		payload[i] = NeighborPayload{
			PaperID:          rec.PaperID,
			Title:            rec.Title,
			Cosine:           nb.Similarity,
			Session:          rec.Session,
			RoomLocation:     rec.RoomLocation,
			TypePresentation: rec.TypePresentation,
			AttendanceType:   rec.AttendanceType,
		}
	}
	respondJSON(w, http.StatusOK, NeighborsResponse{Neighbors: payload})
}

// TopicMatch scores candidate paper groups against a preference vector built
// from the caller's ratings.
func (h *Handler) TopicMatch(w http.ResponseWriter, r *http.Request) {
	var req TopicMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	var rawSlots []json.RawMessage
	if len(req.Slots) > 0 && string(req.Slots) != "null" {
		if err := json.Unmarshal(req.Slots, &rawSlots); err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "'slots' must be a list")
			return
		}
	}
	slots := make([]SlotPayload, 0, len(rawSlots))
	for _, raw := range rawSlots {
		if slot, ok := parseSlot(raw); ok {
			slots = append(slots, slot)
		}
	}

	ratings := make(map[string]float64, len(req.Ratings))
	for id, raw := range req.Ratings {
		if mu, ok := parseMu(raw); ok {
			ratings[id] = mu
		}
	}

	topK := req.TopK
	if topK == 0 {
		topK = 2
	}
	topK = engine.ClampTopK(topK)

	pref := h.engine.PreferenceVector(ratings)

	results := make([]SlotResult, 0, len(slots))
	for _, slot := range slots {
		score := h.engine.ScoreSlot(pref, strings.TrimSpace(slot.SlotKey), slot.PaperIDs, topK)
		results = append(results, SlotResult{
			SlotKey:     score.SlotKey,
			TopicMatch:  score.TopicMatch,
			NCandidates: score.NCandidates,
			NUsed:       score.NUsed,
		})
	}

	respondJSON(w, http.StatusOK, TopicMatchResponse{
		OK:                  true,
		HasPreferenceSignal: pref != nil,
		TopK:                topK,
		Results:             results,
	})
}

// SaveState persists client-submitted explorer state as indented JSON.
func (h *Handler) SaveState(w http.ResponseWriter, r *http.Request) {
	var req SaveStateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if len(req.State) == 0 || string(req.State) == "null" {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "missing 'state' in request body")
		return
	}

	var state any
	if err := json.Unmarshal(req.State, &state); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid 'state' value")
		return
	}
	pretty, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodePersistence,
			fmt.Sprintf("failed to save state: %v", err))
		return
	}

	if err := writeFileMkdir(h.cfg.Data.StateJSON, append(pretty, '\n')); err != nil {
		logging.Error().Err(err).Str("path", h.cfg.Data.StateJSON).Msg("state persistence failed")
		respondError(w, http.StatusInternalServerError, ErrCodePersistence,
			fmt.Sprintf("failed to save state: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, SavedResponse{OK: true, Path: filepath.Base(h.cfg.Data.StateJSON)})
}

// SaveScoredCSV persists a client-rendered scored CSV export verbatim, with a
// trailing newline guaranteed.
func (h *Handler) SaveScoredCSV(w http.ResponseWriter, r *http.Request) {
	var req SaveScoredCSVRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.CSVText == nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "missing 'csv_text' string in request body")
		return
	}

	text := *req.CSVText
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if err := writeFileMkdir(h.cfg.Data.ScoredCSV, []byte(text)); err != nil {
		logging.Error().Err(err).Str("path", h.cfg.Data.ScoredCSV).Msg("scored CSV persistence failed")
		respondError(w, http.StatusInternalServerError, ErrCodePersistence,
			fmt.Sprintf("failed to save scored CSV: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, SavedResponse{OK: true, Path: filepath.Base(h.cfg.Data.ScoredCSV)})
}

// Health reports liveness and the loaded corpus size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"n_papers": h.engine.Store().Len(),
	})
}

// writeFileMkdir writes data to path, creating parent directories as needed.
func writeFileMkdir(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// elapsedMS reports milliseconds since started, rounded to two decimals.
func elapsedMS(started time.Time) float64 {
	ms := float64(time.Since(started).Microseconds()) / 1000.0
	return math.Round(ms*100) / 100
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/box-packer/internal/export"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/sample"
	"github.com/eugenenazirov/box-packer/internal/storage"
	"github.com/eugenenazirov/box-packer/internal/validation"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultPackTimeout  = 10 * time.Second
	defaultMaxItems     = 500
	defaultMaxGridCells = 2_000_000
	defaultPreviewScale = 20
)

// Handler wires the packing engine, catalog storage and run history into HTTP handlers.
type Handler struct {
	packer  Packer
	storage storage.Storage
	runs    *storage.RunStore
	logger  *zap.Logger

	clock           func() time.Time
	packTimeout     time.Duration
	defaultStrategy packing.Strategy
	maxItems        int
	maxGridCells    float64
	slots           runSlots

	mu                      sync.RWMutex
	containerTypesUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRunStore sets where completed runs are kept.
func WithRunStore(runs *storage.RunStore) HandlerOption {
	return func(h *Handler) {
		if runs != nil {
			h.runs = runs
		}
	}
}

// WithPackTimeout bounds how long a single packing run may take.
func WithPackTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.packTimeout = timeout
		}
	}
}

// WithDefaultStrategy sets the strategy used when a request names none.
func WithDefaultStrategy(s packing.Strategy) HandlerOption {
	return func(h *Handler) {
		if s != "" {
			h.defaultStrategy = s
		}
	}
}

// WithMaxItems limits how many items a single request may submit.
func WithMaxItems(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxItems = n
		}
	}
}

// WithMaxGridCells rejects container types whose probe grid has more cells
// than n at the packer's grid step.
func WithMaxGridCells(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxGridCells = float64(n)
		}
	}
}

// WithMaxConcurrentRuns limits how many packing runs may execute at once.
func WithMaxConcurrentRuns(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.slots = newRunSlots(n)
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(packer Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  packer,
		storage: store,
		runs:    storage.NewRunStore(0),
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		packTimeout:     defaultPackTimeout,
		defaultStrategy: packing.StrategyAuto,
		maxItems:        defaultMaxItems,
		maxGridCells:    defaultMaxGridCells,
		slots:           newRunSlots(0),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.containerTypesUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetContainerTypes(w http.ResponseWriter, r *http.Request) {
	_ = r
	types, err := h.storage.GetContainerTypes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containerTypesResponse{
		ContainerTypes: types,
		UpdatedAt:      h.currentContainerTypesUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutContainerTypes(w http.ResponseWriter, r *http.Request) {
	var req containerTypesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.ContainerTypes) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid container types", "containerTypes must contain at least one entry")
		return
	}

	if err := h.storage.SetContainerTypes(req.ContainerTypes); err != nil {
		if errors.Is(err, storage.ErrInvalidContainerTypes) {
			writeError(w, http.StatusBadRequest, "Invalid container types", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markContainerTypesUpdated()

	types, err := h.storage.GetContainerTypes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containerTypesResponse{
		ContainerTypes: types,
		UpdatedAt:      h.currentContainerTypesUpdatedAt(),
		Message:        "Container types updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, sample.Load())
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Items) > h.maxItems {
		writeError(w, http.StatusBadRequest, "Too many items",
			fmt.Sprintf("request contains %d items, the limit is %d", len(req.Items), h.maxItems),
			"Split the shipment into smaller batches")
		return
	}

	strategy := h.defaultStrategy
	if strings.TrimSpace(req.Strategy) != "" {
		parsed, err := packing.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid strategy", err.Error(),
				"Use first-fit-decreasing, best-fit-decreasing or auto")
			return
		}
		strategy = parsed
	}

	types := req.ContainerTypes
	if len(types) == 0 {
		stored, err := h.storage.GetContainerTypes()
		if err != nil {
			writeInternalError(w, err)
			return
		}
		types = stored
	}

	if err := validation.Request(req.Items, types); err != nil {
		resp := errorResponse{
			Error:    "Invalid input",
			Details:  strings.Join(validation.Messages(err), "; "),
			Problems: validation.Messages(err),
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if problems := h.oversizedTypes(types); len(problems) > 0 {
		resp := errorResponse{
			Error:      "Container types too large",
			Details:    strings.Join(problems, "; "),
			Suggestion: "Use smaller container types or a coarser grid step",
			Problems:   problems,
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if !h.slots.tryAcquire() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "Server busy", ErrRunsBusy.Error(), "Retry the request shortly")
		return
	}

	start := time.Now()
	result, err := runWithDeadline(r.Context(), h.packTimeout, h.packer, req.Items, types, strategy, h.slots.release)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, ErrPackTimeout):
			writeError(w, http.StatusServiceUnavailable, "Packing timed out", err.Error(),
				"Reduce the number of items or use a coarser grid step")
		case errors.Is(err, packing.ErrUnknownStrategy):
			writeError(w, http.StatusBadRequest, "Invalid strategy", err.Error())
		case errors.Is(err, context.Canceled):
			writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	run := h.runs.Save(storage.Run{
		CreatedAt: h.clock(),
		Duration:  elapsed,
		Items:     req.Items,
		Result:    result,
	})

	h.logger.Info("packing run completed",
		zap.String("run_id", run.ID),
		zap.String("strategy", string(result.Strategy)),
		zap.Int("items", len(req.Items)),
		zap.Int("containers", result.ContainerCount),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Float64("efficiency", result.Efficiency),
		zap.Duration("duration", elapsed),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusOK, newRunResponse(run))
}

// oversizedTypes lists container types whose probe grid exceeds maxGridCells.
func (h *Handler) oversizedTypes(types []packing.ContainerType) []string {
	step := packing.DefaultGridStep
	if g, ok := h.packer.(interface{ GridStep() float64 }); ok {
		step = g.GridStep()
	}

	var problems []string
	for _, t := range types {
		if cells := packing.GridCells(t, step); cells > h.maxGridCells {
			problems = append(problems, fmt.Sprintf("container type %q spans %.0f grid cells, the limit is %.0f", t.Name, cells, h.maxGridCells))
		}
	}
	return problems
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	h.writeExport(w, "application/pdf", fmt.Sprintf("packing-%s.pdf", run.ID), func(out io.Writer) error {
		return export.WritePDF(out, run)
	})
}

func (h *Handler) handleLabelsPDF(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	h.writeExport(w, "application/pdf", fmt.Sprintf("labels-%s.pdf", run.ID), func(out io.Writer) error {
		return export.WriteLabels(out, run)
	})
}

func (h *Handler) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	h.writeExport(w, xlsxType, fmt.Sprintf("packing-%s.xlsx", run.ID), func(out io.Writer) error {
		return export.WriteWorkbook(out, run)
	})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 || n > len(run.Result.Containers) {
		writeError(w, http.StatusNotFound, "Container not found",
			fmt.Sprintf("run %s has %d containers", run.ID, len(run.Result.Containers)))
		return
	}

	scale := defaultPreviewScale
	if raw := r.URL.Query().Get("scale"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "Invalid scale", "scale must be an integer between 1 and 100")
			return
		}
		scale = parsed
	}

	container := run.Result.Containers[n-1]
	h.writeExport(w, "image/png", "", func(out io.Writer) error {
		return export.WritePreview(out, container, scale)
	})
}

// lookupRun resolves the {id} path value, writing a 404 when the run is unknown.
func (h *Handler) lookupRun(w http.ResponseWriter, r *http.Request) (storage.Run, bool) {
	id := r.PathValue("id")
	run, err := h.runs.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "Run not found", fmt.Sprintf("no run with id %q", id),
				"Runs are kept in memory; submit the shipment again")
			return storage.Run{}, false
		}
		writeInternalError(w, err)
		return storage.Run{}, false
	}
	return run, true
}

// writeExport renders into a buffer first so a failed export still gets a JSON error.
func (h *Handler) writeExport(w http.ResponseWriter, contentType, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.logger.Error("export failed", zap.String("content_type", contentType), zap.Error(err))
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) currentContainerTypesUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.containerTypesUpdatedAt
}

func (h *Handler) markContainerTypesUpdated() {
	h.mu.Lock()
	h.containerTypesUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type containerTypesRequest struct {
	ContainerTypes []packing.ContainerType `json:"containerTypes"`
}

type packRequest struct {
	Items          []packing.Item          `json:"items"`
	ContainerTypes []packing.ContainerType `json:"containerTypes"`
	Strategy       string                  `json:"strategy"`
}

type containerView struct {
	ID             int                   `json:"id"`
	Type           packing.ContainerType `json:"type"`
	WeightCapacity float64               `json:"weightCapacity"`
	LoadedWeight   float64               `json:"loadedWeight"`
	Efficiency     float64               `json:"efficiency"`
	Items          []packing.PlacedItem  `json:"items"`
}

type runResponse struct {
	ID                string           `json:"id"`
	CreatedAt         time.Time        `json:"createdAt"`
	Strategy          packing.Strategy `json:"strategy"`
	Label             string           `json:"label"`
	Containers        []containerView  `json:"containers"`
	Unplaced          []packing.Item   `json:"unplaced"`
	ContainerCount    int              `json:"containerCount"`
	Efficiency        float64          `json:"efficiency"`
	ItemsPacked       int              `json:"itemsPacked"`
	ItemsUnplaced     int              `json:"itemsUnplaced"`
	CalculationTimeMs int64            `json:"calculationTimeMs"`
}

func newRunResponse(run storage.Run) runResponse {
	result := run.Result
	containers := make([]containerView, 0, len(result.Containers))
	for _, c := range result.Containers {
		containers = append(containers, containerView{
			ID:             c.ID,
			Type:           c.Type,
			WeightCapacity: c.WeightCapacity,
			LoadedWeight:   c.LoadedWeight(),
			Efficiency:     c.Efficiency(),
			Items:          c.Items,
		})
	}

	unplaced := result.Unplaced
	if unplaced == nil {
		unplaced = []packing.Item{}
	}

	return runResponse{
		ID:                run.ID,
		CreatedAt:         run.CreatedAt,
		Strategy:          result.Strategy,
		Label:             result.Label,
		Containers:        containers,
		Unplaced:          unplaced,
		ContainerCount:    result.ContainerCount,
		Efficiency:        result.Efficiency,
		ItemsPacked:       result.PlacedCount(),
		ItemsUnplaced:     len(result.Unplaced),
		CalculationTimeMs: run.Duration.Milliseconds(),
	}
}

type containerTypesResponse struct {
	ContainerTypes []packing.ContainerType `json:"containerTypes"`
	UpdatedAt      time.Time               `json:"updatedAt"`
	Message        string                  `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Details    string   `json:"details,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Problems   []string `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

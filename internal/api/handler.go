package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eugenenazirov/load-planner/internal/catalog"
	"github.com/eugenenazirov/load-planner/internal/packer"
	"github.com/eugenenazirov/load-planner/internal/plan"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// maxRequestBodyBytes caps JSON request bodies.
const maxRequestBodyBytes = 1 << 20

// Planner computes load plans.
type Planner interface {
	Plan(ctx context.Context, req plan.Request) (plan.Outcome, error)
}

// Handler wires planner and catalog dependencies into HTTP handlers.
type Handler struct {
	planner Planner
	catalog catalog.Catalog

	clock func() time.Time

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(planner Planner, store catalog.Catalog, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner: planner,
		catalog: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
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

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.catalogSnapshot(""))
}

func (h *Handler) handlePutContainers(w http.ResponseWriter, r *http.Request) {
	var req containersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.catalog.SetContainers(req.Containers); err != nil {
		writeCatalogError(w, err)
		return
	}

	h.markCatalogUpdated()
	writeJSON(w, http.StatusOK, h.catalogSnapshot("Container presets updated successfully"))
}

func (h *Handler) handlePutTrucks(w http.ResponseWriter, r *http.Request) {
	var req trucksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.catalog.SetTrucks(req.Trucks); err != nil {
		writeCatalogError(w, err)
		return
	}

	h.markCatalogUpdated()
	writeJSON(w, http.StatusOK, h.catalogSnapshot("Truck classes updated successfully"))
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.planner.Plan(r.Context(), plan.Request{
		Container:       req.Container,
		ContainerPreset: req.ContainerPreset,
		TruckClass:      req.TruckClass,
		WeightBudget:    req.WeightBudget,
		Boxes:           req.Boxes,
	})
	if err != nil {
		h.writePlanError(w, err)
		return
	}

	result := outcome.Result
	resp := planResponse{
		Container:          outcome.Container,
		ContainerPreset:    outcome.ContainerPreset,
		TruckClass:         outcome.TruckClass,
		WeightBudget:       outcome.WeightBudget,
		Placements:         result.Placements,
		PlacedCount:        result.PlacedCount(),
		RequestedCount:     outcome.RequestedUnits,
		PlacedByBox:        result.PlacedByBox(),
		UsedVolumePercent:  result.UsedVolumePercent,
		UsedVolumeM3:       result.UsedVolume / 1_000_000,
		ContainerVolumeM3:  outcome.Container.VolumeCubicMeters(),
		TotalWeight:        result.TotalWeight,
		WeightLimitReached: result.WeightLimitReached(),
		Truncated:          outcome.Truncated(),
		CalculationTimeMs:  outcome.Duration.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	var inputErr *packer.InputError
	switch {
	case errors.Is(err, packer.ErrUndefinedUtilization):
		writeError(w, http.StatusUnprocessableEntity, "Utilization undefined", err.Error(),
			"Use container dimensions whose product is a finite, non-zero volume")
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, plan.ErrMissingContainer), errors.Is(err, plan.ErrMissingWeightBudget):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, catalog.ErrUnknownContainer):
		writeError(w, http.StatusNotFound, "Unknown container preset", err.Error(),
			"Available presets: "+strings.Join(containerNames(h.catalog.Containers()), ", "))
	case errors.Is(err, catalog.ErrUnknownTruck):
		writeError(w, http.StatusNotFound, "Unknown truck class", err.Error(),
			"Available truck classes: "+strings.Join(truckNames(h.catalog.Trucks()), ", "))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func (h *Handler) catalogSnapshot(message string) catalogResponse {
	maxGross := h.catalog.MaxGrossWeight()
	presets := h.catalog.Containers()
	containers := make([]containerPresetResponse, 0, len(presets))
	for _, p := range presets {
		containers = append(containers, containerPresetResponse{
			ContainerPreset: p,
			Payload:         p.Payload(maxGross),
			VolumeM3:        p.Container().VolumeCubicMeters(),
		})
	}

	return catalogResponse{
		Containers:     containers,
		Trucks:         h.catalog.Trucks(),
		MaxGrossWeight: maxGross,
		UpdatedAt:      h.currentCatalogUpdatedAt(),
		Message:        message,
	}
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
	h.mu.Unlock()
}

func containerNames(presets []catalog.ContainerPreset) []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}

func truckNames(trucks []catalog.TruckClass) []string {
	names := make([]string, 0, len(trucks))
	for _, t := range trucks {
		names = append(names, t.Name)
	}
	return names
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type planRequest struct {
	Container       *packer.Container `json:"container"`
	ContainerPreset string            `json:"containerPreset"`
	TruckClass      string            `json:"truckClass"`
	WeightBudget    *float64          `json:"weightBudget"`
	Boxes           []packer.BoxType  `json:"boxes"`
}

type planResponse struct {
	Container          packer.Container   `json:"container"`
	ContainerPreset    string             `json:"containerPreset,omitempty"`
	TruckClass         string             `json:"truckClass,omitempty"`
	WeightBudget       float64            `json:"weightBudget"`
	Placements         []packer.PlacedBox `json:"placements"`
	PlacedCount        int                `json:"placedCount"`
	RequestedCount     int                `json:"requestedCount"`
	PlacedByBox        map[string]int     `json:"placedByBox"`
	UsedVolumePercent  float64            `json:"usedVolumePercent"`
	UsedVolumeM3       float64            `json:"usedVolumeM3"`
	ContainerVolumeM3  float64            `json:"containerVolumeM3"`
	TotalWeight        float64            `json:"totalWeight"`
	WeightLimitReached bool               `json:"weightLimitReached"`
	Truncated          bool               `json:"truncated"`
	CalculationTimeMs  int64              `json:"calculationTimeMs"`
}

type containersRequest struct {
	Containers []catalog.ContainerPreset `json:"containers"`
}

type trucksRequest struct {
	Trucks []catalog.TruckClass `json:"trucks"`
}

type containerPresetResponse struct {
	catalog.ContainerPreset
	Payload  float64 `json:"payload"`
	VolumeM3 float64 `json:"volumeM3"`
}

type catalogResponse struct {
	Containers     []containerPresetResponse `json:"containers"`
	Trucks         []catalog.TruckClass      `json:"trucks"`
	MaxGrossWeight float64                   `json:"maxGrossWeight"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
	Message        string                    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrInvalidCatalog) {
		writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error())
		return
	}
	writeInternalError(w, fmt.Errorf("update catalog: %w", err))
}

// decodeJSON reads a size-capped JSON body into dst and writes the error
// response itself when that fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	return true
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

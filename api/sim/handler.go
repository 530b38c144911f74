// Package sim exposes the simulation engine over HTTP. The handlers are thin
// plumbing: decode, call the engine, encode.
package sim

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ridegrid/ridegrid/core/logger"
	"github.com/ridegrid/ridegrid/core/model"
	"github.com/ridegrid/ridegrid/core/registry"
	coresim "github.com/ridegrid/ridegrid/core/sim"
)

// Handler serves the simulation API.
type Handler struct {
	engine *coresim.Engine
	log    logger.Logger
}

// NewHandler returns the API handler for the given engine.
func NewHandler(engine *coresim.Engine, log logger.Logger) *Handler {
	return &Handler{engine: engine, log: log}
}

// Router returns the ServeMux with every simulation route registered.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/simulation/state", h.getState)
	mux.HandleFunc("GET /api/simulation/queue", h.getQueue)
	mux.HandleFunc("GET /api/simulation/stats", h.getStats)
	mux.HandleFunc("GET /api/simulation/config", h.getConfig)
	mux.HandleFunc("PUT /api/simulation/config", h.putConfig)
	mux.HandleFunc("POST /api/simulation/drivers", h.addDriver)
	mux.HandleFunc("DELETE /api/simulation/drivers/{id}", h.removeDriver)
	mux.HandleFunc("POST /api/simulation/riders", h.addRider)
	mux.HandleFunc("DELETE /api/simulation/riders/{id}", h.removeRider)
	mux.HandleFunc("POST /api/simulation/riders/{id}/request", h.createRequest)
	mux.HandleFunc("POST /api/simulation/tick", h.advanceTick)
	mux.HandleFunc("POST /api/simulation/reset", h.reset)
	mux.HandleFunc("POST /api/simulation/initialize", h.initialize)
	return mux
}

type addDriverRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type addRiderRequest struct {
	PickupX  int `json:"pickup_x"`
	PickupY  int `json:"pickup_y"`
	DropoffX int `json:"dropoff_x"`
	DropoffY int `json:"dropoff_y"`
}

type addRiderResponse struct {
	Rider   model.Rider       `json:"rider"`
	Request model.RideRequest `json:"request"`
}

type stateResponse struct {
	Drivers  []model.Driver      `json:"drivers"`
	Riders   []model.Rider       `json:"riders"`
	Requests []model.RideRequest `json:"requests"`
	Config   coresim.Config      `json:"config"`
	Stats    coresim.Stats       `json:"stats"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id"`
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		Drivers:  h.engine.ListDrivers(),
		Riders:   h.engine.ListRiders(),
		Requests: h.engine.ListRequests(),
		Config:   h.engine.Config(),
		Stats:    h.engine.Stats(),
	})
}

func (h *Handler) getQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.QueueInfo())
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Config())
}

func (h *Handler) putConfig(w http.ResponseWriter, r *http.Request) {
	var cfg coresim.Config
	if !h.decode(w, r, &cfg) {
		return
	}
	if err := h.engine.SetConfig(cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Config())
}

func (h *Handler) addDriver(w http.ResponseWriter, r *http.Request) {
	var body addDriverRequest
	if !h.decode(w, r, &body) {
		return
	}
	d, err := h.engine.AddDriver(body.X, body.Y)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) removeDriver(w http.ResponseWriter, r *http.Request) {
	if !h.engine.RemoveDriver(r.PathValue("id")) {
		h.writeError(w, r, &registry.NotFoundError{Kind: "driver", ID: r.PathValue("id")})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) addRider(w http.ResponseWriter, r *http.Request) {
	var body addRiderRequest
	if !h.decode(w, r, &body) {
		return
	}
	rider, req, err := h.engine.AddRider(body.PickupX, body.PickupY, body.DropoffX, body.DropoffY)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addRiderResponse{Rider: rider, Request: req})
}

func (h *Handler) removeRider(w http.ResponseWriter, r *http.Request) {
	if !h.engine.RemoveRider(r.PathValue("id")) {
		h.writeError(w, r, &registry.NotFoundError{Kind: "rider", ID: r.PathValue("id")})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.engine.CreateRequest(r.PathValue("id"))
	if !ok {
		h.writeError(w, r, &registry.NotFoundError{Kind: "rider", ID: r.PathValue("id")})
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) advanceTick(w http.ResponseWriter, r *http.Request) {
	h.engine.AdvanceTick()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// initialize resets the world and seeds a small sample fleet.
func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	for _, pos := range []model.Position{{X: 2, Y: 2}, {X: 15, Y: 8}, {X: 8, Y: 15}} {
		if _, err := h.engine.AddDriver(pos.X, pos.Y); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "simulation initialized with sample data"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeError maps engine errors onto HTTP statuses: bounds and config
// violations are client errors, lookup misses are 404s.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var oob *registry.OutOfBoundsError
	var nf *registry.NotFoundError
	var badCfg *coresim.InvalidConfigError
	switch {
	case errors.As(err, &oob), errors.As(err, &badCfg):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &nf):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, detail string) {
	id := uuid.New().String()
	h.log.Warnf("request %s failed: %s", id, detail)
	writeJSON(w, status, errorResponse{Detail: detail, RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package sim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ridegrid/ridegrid/core/model"
	coresim "github.com/ridegrid/ridegrid/core/sim"
	"github.com/ridegrid/ridegrid/infra/logger"
)

func newTestServer(t *testing.T) (*httptest.Server, *coresim.Engine) {
	t.Helper()
	engine, err := coresim.NewEngine(coresim.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	srv := httptest.NewServer(NewHandler(engine, logger.NopLogger{}).Router())
	t.Cleanup(srv.Close)
	return srv, engine
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func TestAddDriverEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var d model.Driver
	resp := postJSON(t, srv.URL+"/api/simulation/drivers", `{"x": 3, "y": 4}`, &d)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if d.ID != "Driver 1" || d.Pos != (model.Position{X: 3, Y: 4}) {
		t.Fatalf("unexpected driver: %+v", d)
	}
}

func TestAddDriverOutOfBoundsIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Detail    string `json:"detail"`
		RequestID string `json:"request_id"`
	}
	resp := postJSON(t, srv.URL+"/api/simulation/drivers", `{"x": 20, "y": 5}`, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Detail == "" || body.RequestID == "" {
		t.Fatalf("error body incomplete: %+v", body)
	}
}

func TestAddRiderAssignsWhenDriverAvailable(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.AddDriver(0, 0)

	var out struct {
		Rider   model.Rider       `json:"rider"`
		Request model.RideRequest `json:"request"`
	}
	resp := postJSON(t, srv.URL+"/api/simulation/riders", `{"pickup_x": 0, "pickup_y": 5, "dropoff_x": 0, "dropoff_y": 10}`, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if out.Rider.ID != "Rider 1" {
		t.Fatalf("unexpected rider: %+v", out.Rider)
	}
	if out.Request.Status != model.RequestAssigned || out.Request.AssignedDriverID != "Driver 1" {
		t.Fatalf("unexpected request: %+v", out.Request)
	}
}

func TestRemoveUnknownDriverIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodDelete, srv.URL+"/api/simulation/drivers/Driver%2099", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestTickEndpointAdvances(t *testing.T) {
	srv, engine := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/simulation/tick", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if engine.Tick() != 1 {
		t.Fatalf("tick not advanced: %d", engine.Tick())
	}
}

func TestConfigRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	var cfg coresim.Config
	getJSON(t, srv.URL+"/api/simulation/config", &cfg)
	if cfg.GridWidth != 20 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/simulation/config",
		strings.NewReader(`{"grid_width": 30, "grid_height": 30, "driver_speed": 2, "tick_interval_ms": 500}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.GridWidth != 30 || cfg.DriverSpeed != 2 {
		t.Fatalf("config not updated: %+v", cfg)
	}
}

func TestPutConfigInvalidIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/simulation/config",
		strings.NewReader(`{"grid_width": 0, "grid_height": 30, "driver_speed": 1, "tick_interval_ms": 500}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestInitializeSeedsFleet(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.AddDriver(0, 0) // wiped by initialize

	resp := postJSON(t, srv.URL+"/api/simulation/initialize", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	drivers := engine.ListDrivers()
	if len(drivers) != 3 {
		t.Fatalf("expected 3 seeded drivers got %d", len(drivers))
	}
	if drivers[0].ID != "Driver 1" || drivers[0].Pos != (model.Position{X: 2, Y: 2}) {
		t.Fatalf("unexpected seed: %+v", drivers[0])
	}
}

func TestStateAndQueueEndpoints(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.AddRider(1, 1, 2, 2) // queued: no drivers

	var state struct {
		Drivers  []model.Driver      `json:"drivers"`
		Riders   []model.Rider       `json:"riders"`
		Requests []model.RideRequest `json:"requests"`
	}
	getJSON(t, srv.URL+"/api/simulation/state", &state)
	if len(state.Riders) != 1 || len(state.Requests) != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}

	var queue coresim.QueueInfo
	getJSON(t, srv.URL+"/api/simulation/queue", &queue)
	if queue.QueueLength != 1 {
		t.Fatalf("unexpected queue: %+v", queue)
	}
}

func TestCreateRequestUnknownRiderIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/simulation/riders/Rider%2099/request", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

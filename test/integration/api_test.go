package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/box-packer/internal/application"
	"github.com/eugenenazirov/box-packer/internal/config"
	"github.com/eugenenazirov/box-packer/internal/export"
	"github.com/eugenenazirov/box-packer/internal/packing"
)

// newApp loads configuration the way the server binary does: a YAML file
// pointing at a CSV catalog.
func newApp(t *testing.T) http.Handler {
	t.Helper()

	for _, key := range []string{"PORT", "CATALOG_FILE", "DEFAULT_STRATEGY", "GRID_STEP", "PACK_TIMEOUT", "MAX_ITEMS", "MAX_GRID_CELLS", "MAX_CONCURRENT_RUNS", "LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(catalog, []byte("Name;Length;Breadth;Height;Capacity\nCube;3;3;3;10\nBar;4;2;2;10\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	configFile := filepath.Join(dir, "config.yaml")
	yamlConfig := "catalog_file: " + catalog + "\ndefault_strategy: auto\nenable_request_logging: false\nrate_limit:\n  rps: 0\n"
	if err := os.WriteFile(configFile, []byte(yamlConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(&config.CLIOverrides{ConfigFile: configFile})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	app, err := application.New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return app.Handler()
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newApp(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/container-types", nil, nil)
	var catalog struct {
		ContainerTypes []packing.ContainerType `json:"containerTypes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog.ContainerTypes) != 2 || catalog.ContainerTypes[0].Name != "Cube" {
		t.Fatalf("expected imported catalog, got %v", catalog.ContainerTypes)
	}

	items := []packing.Item{
		{Name: "Item2", Length: 2, Breadth: 2, Height: 2, Weight: 1},
		{Name: "Item10", Length: 2, Breadth: 2, Height: 2, Weight: 1},
		{Name: "Crate", Length: 9, Breadth: 9, Height: 9, Weight: 1},
	}
	body, _ := json.Marshal(map[string]any{"items": items})
	rec = performRequest(t, handler, http.MethodPost, "/api/pack", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from pack, got %d: %s", rec.Code, rec.Body.String())
	}

	var run struct {
		ID             string         `json:"id"`
		Label          string         `json:"label"`
		ContainerCount int            `json:"containerCount"`
		Efficiency     float64        `json:"efficiency"`
		Unplaced       []packing.Item `json:"unplaced"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Label != "Best Fit Decreasing" || run.ContainerCount != 1 || run.Efficiency != 100 {
		t.Fatalf("expected a single full Bar from best fit, got %+v", run)
	}
	if len(run.Unplaced) != 1 || run.Unplaced[0].Name != "Crate" {
		t.Fatalf("expected the oversized crate to be unplaced, got %v", run.Unplaced)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/runs/"+run.ID+"/workbook.xlsx", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from workbook, got %d", rec.Code)
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(export.SheetPlacements)
	if err != nil {
		t.Fatalf("read placements: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "Item2" || rows[2][1] != "Item10" {
		t.Fatalf("expected naturally ordered placements, got %v", rows)
	}

	body, _ = json.Marshal(map[string]any{"items": items, "strategy": "ffd"})
	rec = performRequest(t, handler, http.MethodPost, "/api/pack", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from first-fit pack, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ContainerCount != 2 {
		t.Fatalf("expected first fit to open two cubes, got %d", run.ContainerCount)
	}
}

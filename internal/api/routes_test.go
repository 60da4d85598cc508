package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shotdeck/shotdeck-agent/internal/catalog"
	"github.com/shotdeck/shotdeck-agent/internal/db"
	"github.com/shotdeck/shotdeck-agent/internal/structure"
	"github.com/shotdeck/shotdeck-agent/internal/template"
)

const testToken = "test-token-0123456789"

func setupRouter(t *testing.T) (http.Handler, catalog.Repository) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), db.Options{})
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := catalog.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), "auth_token", testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := structure.New(structure.Config{FallbackBase: filepath.Join(t.TempDir(), "Projects"), Logger: logger})
	templates := template.Set{
		"film": {Root: []string{"assets", "editorial"}, ShotStructure: []string{"plates", "comp"}},
	}

	cfg := ServerConfig{
		Service:    catalog.NewService(engine, templates, repo, logger),
		Repository: repo,
		Logger:     logger,
		StartTime:  time.Now(),
		DeviceID:   "device-1",
		Version:    "test",
	}
	return NewRouter(cfg), repo
}

func doRequest(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) structure.Result {
	t.Helper()
	var res structure.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v (%s)", err, rr.Body.String())
	}
	return res
}

func TestHealth_NoAuth(t *testing.T) {
	h, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.DeviceID != "device-1" {
		t.Errorf("health = %+v", resp)
	}
}

func TestTemplates(t *testing.T) {
	h, _ := setupRouter(t)

	rr := doRequest(t, h, http.MethodGet, "/templates", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp TemplatesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Templates) != 1 || resp.Templates[0].Name != "film" {
		t.Fatalf("templates = %+v", resp.Templates)
	}
	if len(resp.Templates[0].ShotStructure) != 2 {
		t.Errorf("shotStructure = %v", resp.Templates[0].ShotStructure)
	}
}

func TestCreateProject_ThenStructure(t *testing.T) {
	h, _ := setupRouter(t)
	base := t.TempDir()

	rr := doRequest(t, h, http.MethodPost, "/projects", CreateProjectRequest{
		TargetPath:  base,
		ProjectName: "feature",
		Template:    "film",
		Shots:       []string{"sh010"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	res := decodeResult(t, rr)
	if !res.Success || res.FinalPath != filepath.Join(base, "feature") {
		t.Fatalf("result = %+v", res)
	}

	rr = doRequest(t, h, http.MethodGet, "/projects/structure?path="+res.FinalPath, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("structure status = %d (%s)", rr.Code, rr.Body.String())
	}
	tree := decodeResult(t, rr)
	if tree.ProjectPath != res.FinalPath || tree.Tree == nil {
		t.Fatalf("tree result = %+v", tree)
	}
	if len(tree.Tree.Children) != 3 {
		t.Errorf("top level children = %d, want 3", len(tree.Tree.Children))
	}

	rr = doRequest(t, h, http.MethodGet, "/projects", nil)
	var projects ProjectsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(projects.Projects) != 1 || projects.Projects[0].Template != "film" {
		t.Errorf("projects = %+v", projects.Projects)
	}
}

func TestStructure_TextFormat(t *testing.T) {
	h, _ := setupRouter(t)
	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, "shots", "sh010", "comp"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rr := doRequest(t, h, http.MethodGet, "/projects/structure?format=text&path="+project, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d (%s)", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "└── comp") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestAddShot_CollisionIsConflict(t *testing.T) {
	h, _ := setupRouter(t)
	project := t.TempDir()
	req := AddShotRequest{ProjectPath: project, ShotName: "sh010", Template: "film"}

	rr := doRequest(t, h, http.MethodPost, "/projects/shots", req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first status = %d (%s)", rr.Code, rr.Body.String())
	}
	if res := decodeResult(t, rr); res.ShotPath != filepath.Join(project, "shots", "sh010") {
		t.Errorf("shot_path = %s", res.ShotPath)
	}

	rr = doRequest(t, h, http.MethodPost, "/projects/shots", req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second status = %d, want %d", rr.Code, http.StatusConflict)
	}
	res := decodeResult(t, rr)
	if res.Success || res.Code != structure.KindCollision || !strings.Contains(res.Error, "sh010") {
		t.Errorf("result = %+v", res)
	}
}

func TestAddShot_MissingProjectIsNotFound(t *testing.T) {
	h, _ := setupRouter(t)

	rr := doRequest(t, h, http.MethodPost, "/projects/shots", AddShotRequest{
		ProjectPath: filepath.Join(t.TempDir(), "missing"),
		ShotName:    "sh010",
		Template:    "film",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAddFolderAndRename(t *testing.T) {
	h, _ := setupRouter(t)
	project := t.TempDir()

	rr := doRequest(t, h, http.MethodPost, "/projects/folders", AddFolderRequest{ProjectPath: project, RelativePath: "a/b/c"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add folder status = %d (%s)", rr.Code, rr.Body.String())
	}
	if res := decodeResult(t, rr); res.Path != filepath.Join(project, "a", "b", "c") {
		t.Errorf("path = %s", res.Path)
	}

	rr = doRequest(t, h, http.MethodPost, "/projects/rename", RenameFolderRequest{ProjectPath: project, OldRelativePath: "a/b", NewName: "z"})
	if rr.Code != http.StatusOK {
		t.Fatalf("rename status = %d (%s)", rr.Code, rr.Body.String())
	}
	if res := decodeResult(t, rr); res.Path != filepath.Join(project, "a", "z") {
		t.Errorf("path = %s", res.Path)
	}

	rr = doRequest(t, h, http.MethodPost, "/projects/rename", RenameFolderRequest{ProjectPath: project, OldRelativePath: ".", NewName: "z"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("root rename status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestInvalidBodyIsValidationResult(t *testing.T) {
	h, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if res := decodeResult(t, rr); res.Success || res.Code != structure.KindValidation {
		t.Errorf("result = %+v", res)
	}
}

func TestOperationsAndForget(t *testing.T) {
	h, _ := setupRouter(t)
	project := t.TempDir()

	doRequest(t, h, http.MethodPost, "/projects/folders", AddFolderRequest{ProjectPath: project, RelativePath: "assets"})
	doRequest(t, h, http.MethodPost, "/projects/folders", AddFolderRequest{ProjectPath: project, RelativePath: "../escape"})

	rr := doRequest(t, h, http.MethodGet, "/operations?project="+project, nil)
	var ops OperationsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &ops); err != nil {
		t.Fatalf("decode operations: %v", err)
	}
	if len(ops.Operations) != 2 {
		t.Fatalf("operations = %+v, want 2", ops.Operations)
	}

	rr = doRequest(t, h, http.MethodGet, "/projects", nil)
	var projects ProjectsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(projects.Projects) != 1 {
		t.Fatalf("projects = %+v, want 1", projects.Projects)
	}

	rr = doRequest(t, h, http.MethodDelete, "/projects/"+projects.Projects[0].ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	rr = doRequest(t, h, http.MethodDelete, "/projects/"+projects.Projects[0].ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

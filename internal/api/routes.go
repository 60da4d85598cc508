package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shotdeck/shotdeck-agent/internal/structure"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/templates", listTemplatesHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Delete("/projects/{id}", forgetProjectHandler(cfg))
		r.Post("/projects/shots", addShotHandler(cfg))
		r.Post("/projects/folders", addFolderHandler(cfg))
		r.Post("/projects/rename", renameFolderHandler(cfg))
		r.Get("/projects/structure", structureHandler(cfg))
		r.Get("/operations", listOperationsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func listTemplatesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, TemplatesToResponse(cfg.Service.Templates()))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Service.ListProjects(r.Context(), queryLimit(r, 50))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func forgetProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
			return
		}

		project, err := cfg.Service.ForgetProject(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if project == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if !decodeRequest(w, r, "createProject", &req) {
			return
		}

		res, err := cfg.Service.CreateProject(r.Context(), req.TargetPath, req.ProjectName, req.Template, req.Shots)
		WriteResult(w, http.StatusCreated, structure.CreateProjectOutcome(res, err))
	}
}

func addShotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddShotRequest
		if !decodeRequest(w, r, "addShot", &req) {
			return
		}

		shotPath, err := cfg.Service.AddShot(r.Context(), req.ProjectPath, req.ShotName, req.Template)
		WriteResult(w, http.StatusCreated, structure.ShotOutcome(shotPath, err))
	}
}

func addFolderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddFolderRequest
		if !decodeRequest(w, r, "addFolder", &req) {
			return
		}

		path, err := cfg.Service.AddFolder(r.Context(), req.ProjectPath, req.RelativePath)
		WriteResult(w, http.StatusOK, structure.PathOutcome(path, err))
	}
}

func renameFolderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenameFolderRequest
		if !decodeRequest(w, r, "renameFolder", &req) {
			return
		}

		path, err := cfg.Service.RenameFolder(r.Context(), req.ProjectPath, req.OldRelativePath, req.NewName)
		WriteResult(w, http.StatusOK, structure.PathOutcome(path, err))
	}
}

func structureHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectPath := r.URL.Query().Get("path")

		tree, err := cfg.Service.ReadStructure(r.Context(), projectPath)
		if err == nil && r.URL.Query().Get("format") == "text" {
			var buf bytes.Buffer
			if err := structure.RenderTree(&buf, tree); err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write(buf.Bytes())
			return
		}

		WriteResult(w, http.StatusOK, structure.TreeOutcome(projectPath, tree, err))
	}
}

func listOperationsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ops, err := cfg.Service.ListOperations(r.Context(), r.URL.Query().Get("project"), queryLimit(r, 50))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list operations", "INTERNAL_ERROR")
			return
		}

		resp := OperationsResponse{Operations: make([]OperationResponse, len(ops))}
		for i, op := range ops {
			resp.Operations[i] = OperationToResponse(op)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// decodeRequest decodes a JSON body, answering with a validation Result on
// failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteResult(w, http.StatusOK, structure.Failure(
			structure.Errorf(structure.KindValidation, op, "", "invalid request body: %v", err)))
		return false
	}
	return true
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

package api

import (
	"time"

	"github.com/shotdeck/shotdeck-agent/internal/catalog"
	"github.com/shotdeck/shotdeck-agent/internal/template"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type TemplateResponse struct {
	Name          string   `json:"name"`
	Root          []string `json:"root"`
	ShotStructure []string `json:"shotStructure"`
}

type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

type CreateProjectRequest struct {
	TargetPath  string   `json:"target_path"`
	ProjectName string   `json:"project_name"`
	Template    string   `json:"template"`
	Shots       []string `json:"shots,omitempty"`
}

type AddShotRequest struct {
	ProjectPath string `json:"project_path"`
	ShotName    string `json:"shot_name"`
	Template    string `json:"template,omitempty"`
}

type AddFolderRequest struct {
	ProjectPath  string `json:"project_path"`
	RelativePath string `json:"relative_path"`
}

type RenameFolderRequest struct {
	ProjectPath     string `json:"project_path"`
	OldRelativePath string `json:"old_relative_path"`
	NewName         string `json:"new_name"`
}

type ProjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Template     string `json:"template,omitempty"`
	CreatedAt    string `json:"created_at"`
	LastOpenedAt string `json:"last_opened_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type OperationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ProjectPath string `json:"project_path"`
	TargetPath  string `json:"target_path,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type OperationsResponse struct {
	Operations []OperationResponse `json:"operations"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func TemplatesToResponse(set template.Set) TemplatesResponse {
	resp := TemplatesResponse{Templates: make([]TemplateResponse, 0, len(set))}
	for _, name := range set.Names() {
		t := set[name]
		resp.Templates = append(resp.Templates, TemplateResponse{
			Name:          name,
			Root:          nonNil(t.Root),
			ShotStructure: nonNil(t.ShotStructure),
		})
	}
	return resp
}

func ProjectToResponse(p *catalog.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Path:         p.Path,
		Template:     p.Template,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		LastOpenedAt: p.LastOpenedAt.Format(time.RFC3339),
	}
}

func OperationToResponse(op *catalog.Operation) OperationResponse {
	return OperationResponse{
		ID:          op.ID,
		Type:        op.Type,
		ProjectPath: op.ProjectPath,
		TargetPath:  op.TargetPath,
		Status:      op.Status,
		Error:       op.Error,
		CreatedAt:   op.CreatedAt.Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

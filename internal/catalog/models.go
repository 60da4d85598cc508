package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Project is a project folder the agent has created or opened.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Template     string    `json:"template,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastOpenedAt time.Time `json:"last_opened_at"`
}

const (
	OpCreateProject = "create_project"
	OpAddShot       = "add_shot"
	OpAddFolder     = "add_folder"
	OpRenameFolder  = "rename_folder"

	OpStatusSucceeded = "succeeded"
	OpStatusFailed    = "failed"
)

// Operation is one recorded structure mutation.
type Operation struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ProjectPath string    `json:"project_path"`
	TargetPath  string    `json:"target_path,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewID() string {
	return uuid.NewString()
}

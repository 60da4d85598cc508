package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/shotdeck/shotdeck-agent/internal/logging"
	"github.com/shotdeck/shotdeck-agent/internal/structure"
	"github.com/shotdeck/shotdeck-agent/internal/template"
)

// ProjectService runs structure operations and keeps the recent-project
// list and operation history up to date. The returned errors are always the
// engine's; registry failures are only logged.
type ProjectService interface {
	Templates() template.Set
	CreateProject(ctx context.Context, targetPath, projectName, templateName string, shots []string) (structure.CreateProjectResult, error)
	AddShot(ctx context.Context, projectPath, shotName, templateName string) (string, error)
	AddFolder(ctx context.Context, projectPath, relativePath string) (string, error)
	RenameFolder(ctx context.Context, projectPath, oldRelativePath, newName string) (string, error)
	ReadStructure(ctx context.Context, projectPath string) (*structure.Node, error)

	ListProjects(ctx context.Context, limit int) ([]*Project, error)
	CountProjects(ctx context.Context) (int, error)
	ForgetProject(ctx context.Context, id string) (*Project, error)
	ListOperations(ctx context.Context, projectPath string, limit int) ([]*Operation, error)
}

type Service struct {
	engine    *structure.Engine
	templates template.Set
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(engine *structure.Engine, templates template.Set, repo Repository, logger *slog.Logger) *Service {
	return &Service{
		engine:    engine,
		templates: templates,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Templates() template.Set {
	return s.templates
}

func (s *Service) CreateProject(ctx context.Context, targetPath, projectName, templateName string, shots []string) (structure.CreateProjectResult, error) {
	tmpl, err := s.template("createProject", templateName)
	if err != nil {
		s.record(ctx, OpCreateProject, targetPath, "", err)
		return structure.CreateProjectResult{}, err
	}

	res, err := s.engine.CreateProject(targetPath, projectName, tmpl, shots)
	if err != nil {
		s.record(ctx, OpCreateProject, targetPath, "", err)
		return res, err
	}

	if res.UsedFallback && s.logger != nil {
		logging.WithProject(s.logger, res.FinalPath).Warn("project redirected to fallback location",
			"requested", logging.SanitizePath(targetPath),
		)
	}

	s.record(ctx, OpCreateProject, res.FinalPath, res.FinalPath, nil)
	s.remember(ctx, res.FinalPath, templateName)
	return res, nil
}

// AddShot adds a shot using templateName, or the template the project was
// created with when templateName is empty.
func (s *Service) AddShot(ctx context.Context, projectPath, shotName, templateName string) (string, error) {
	if templateName == "" {
		if p, err := s.repo.GetProjectByPath(ctx, filepath.Clean(projectPath)); err == nil && p != nil {
			templateName = p.Template
		}
	}

	tmpl, err := s.template("addShot", templateName)
	if err != nil {
		s.record(ctx, OpAddShot, projectPath, "", err)
		return "", err
	}

	shotPath, err := s.engine.AddShot(projectPath, shotName, tmpl)
	s.record(ctx, OpAddShot, projectPath, shotPath, err)
	if err != nil {
		return "", err
	}
	s.remember(ctx, projectPath, templateName)
	return shotPath, nil
}

func (s *Service) AddFolder(ctx context.Context, projectPath, relativePath string) (string, error) {
	path, err := s.engine.AddFolder(projectPath, relativePath)
	s.record(ctx, OpAddFolder, projectPath, path, err)
	if err != nil {
		return "", err
	}
	s.remember(ctx, projectPath, "")
	return path, nil
}

func (s *Service) RenameFolder(ctx context.Context, projectPath, oldRelativePath, newName string) (string, error) {
	path, err := s.engine.RenameFolder(projectPath, oldRelativePath, newName)
	s.record(ctx, OpRenameFolder, projectPath, path, err)
	if err != nil {
		return "", err
	}
	s.remember(ctx, projectPath, "")
	return path, nil
}

// ReadStructure reads the tree and marks the project as recently opened.
// Reads are not recorded in the history.
func (s *Service) ReadStructure(ctx context.Context, projectPath string) (*structure.Node, error) {
	tree, err := s.engine.ReadProjectStructure(projectPath)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, projectPath, "")
	return tree, nil
}

func (s *Service) ListProjects(ctx context.Context, limit int) ([]*Project, error) {
	return s.repo.ListProjects(ctx, limit)
}

func (s *Service) CountProjects(ctx context.Context) (int, error) {
	return s.repo.CountProjects(ctx)
}

// ForgetProject drops a project from the recent list. Nothing on disk is touched.
func (s *Service) ForgetProject(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListOperations(ctx context.Context, projectPath string, limit int) ([]*Operation, error) {
	if projectPath != "" {
		return s.repo.ListOperationsByProject(ctx, filepath.Clean(projectPath), limit)
	}
	return s.repo.ListOperations(ctx, limit)
}

func (s *Service) template(op, name string) (*template.Template, error) {
	if name == "" {
		return nil, structure.Errorf(structure.KindValidation, op, "", "missing or invalid template")
	}
	tmpl, ok := s.templates.Get(name)
	if !ok {
		return nil, structure.Errorf(structure.KindValidation, op, "", "unknown template %q", name)
	}
	return tmpl, nil
}

func (s *Service) record(ctx context.Context, opType, projectPath, targetPath string, opErr error) {
	op := &Operation{
		ID:          NewID(),
		Type:        opType,
		ProjectPath: cleanPath(projectPath),
		TargetPath:  targetPath,
		Status:      OpStatusSucceeded,
		CreatedAt:   s.now(),
	}
	if opErr != nil {
		op.Status = OpStatusFailed
		op.Error = opErr.Error()
	}

	if err := s.repo.CreateOperation(ctx, op); err != nil && s.logger != nil {
		logging.WithProject(s.logger, op.ProjectPath).Warn("failed to record operation", "type", opType, "error", err)
	}
}

func (s *Service) remember(ctx context.Context, projectPath, templateName string) {
	path := cleanPath(projectPath)
	now := s.now()
	project := &Project{
		ID:           NewID(),
		Name:         filepath.Base(path),
		Path:         path,
		Template:     templateName,
		CreatedAt:    now,
		LastOpenedAt: now,
	}
	if err := s.repo.UpsertProject(ctx, project); err != nil && s.logger != nil {
		logging.WithProject(s.logger, path).Warn("failed to update project registry", "error", err)
	}
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

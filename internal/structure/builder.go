package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shotdeck/shotdeck-agent/internal/template"
)

// CreateProjectResult is the payload of a successful CreateProject.
type CreateProjectResult struct {
	FinalPath    string
	Base         string
	UsedFallback bool
	// Warning is set when the project was redirected to the fallback base.
	Warning string
}

// CreateProject builds base/projectName with the template's top-level
// folders, the shots folder and every listed shot. Existing folders are left
// alone, so calling it again with the same arguments succeeds.
func (e *Engine) CreateProject(targetPath, projectName string, tmpl *template.Template, shots []string) (_ CreateProjectResult, err error) {
	const op = "createProject"
	defer e.logFailure(op, &err)

	if targetPath == "" || projectName == "" {
		return CreateProjectResult{}, newError(KindValidation, op, "", "missing required parameters: targetPath and projectName")
	}
	if tmpl == nil {
		return CreateProjectResult{}, newError(KindValidation, op, "", "missing or invalid template")
	}
	if err := template.ValidateName(projectName); err != nil {
		return CreateProjectResult{}, newError(KindValidation, op, projectName, "invalid project name: %v", err)
	}
	if err := tmpl.Validate(); err != nil {
		return CreateProjectResult{}, newError(KindValidation, op, "", "invalid template: %v", err)
	}
	for i, shot := range shots {
		if err := template.ValidateName(shot); err != nil {
			return CreateProjectResult{}, newError(KindValidation, op, shot, "invalid shot name at %d: %v", i, err)
		}
	}

	e.logger.Info("creating project", "target", targetPath, "name", projectName, "shots", len(shots))

	res, err := e.resolver.Resolve(targetPath)
	if err != nil {
		return CreateProjectResult{}, err
	}

	out := CreateProjectResult{Base: res.Base, UsedFallback: res.UsedFallback}
	if res.UsedFallback {
		out.Warning = fmt.Sprintf("cannot write to %s (%v); project created under %s instead", targetPath, res.Reason, res.Base)
	}

	projectRoot := filepath.Join(res.Base, projectName)
	if _, err := e.ensureDir(op, projectRoot, existOK); err != nil {
		return CreateProjectResult{}, err
	}
	for _, name := range tmpl.Root {
		if _, err := e.ensureDir(op, filepath.Join(projectRoot, name), existOK); err != nil {
			return CreateProjectResult{}, err
		}
	}

	shotsRoot := filepath.Join(projectRoot, ShotsDir)
	if _, err := e.ensureDir(op, shotsRoot, existOK); err != nil {
		return CreateProjectResult{}, err
	}
	for _, shot := range shots {
		if err := e.buildShot(op, filepath.Join(shotsRoot, shot), tmpl, existOK); err != nil {
			return CreateProjectResult{}, err
		}
	}

	out.FinalPath = projectRoot
	e.logger.Info("project structure created", "path", projectRoot, "used_fallback", res.UsedFallback)
	return out, nil
}

// AddShot creates one new shot, with the template's shot structure, in an
// existing project. A shot that already exists is a collision.
func (e *Engine) AddShot(projectPath, shotName string, tmpl *template.Template) (_ string, err error) {
	const op = "addShot"
	defer e.logFailure(op, &err)

	if projectPath == "" || shotName == "" {
		return "", newError(KindValidation, op, "", "missing required parameters: projectPath and shotName")
	}
	if tmpl == nil {
		return "", newError(KindValidation, op, "", "missing or invalid template")
	}
	if err := template.ValidateName(shotName); err != nil {
		return "", newError(KindValidation, op, shotName, "invalid shot name: %v", err)
	}
	if err := tmpl.Validate(); err != nil {
		return "", newError(KindValidation, op, "", "invalid template: %v", err)
	}
	if err := requireDir(op, projectPath, "project path"); err != nil {
		return "", err
	}

	shotsRoot := filepath.Join(projectPath, ShotsDir)
	if _, err := e.ensureDir(op, shotsRoot, existOK); err != nil {
		return "", err
	}

	shotPath := filepath.Join(shotsRoot, shotName)
	if err := e.buildShot(op, shotPath, tmpl, existFail); err != nil {
		return "", err
	}

	e.logger.Info("shot added", "project", projectPath, "shot", shotName)
	return shotPath, nil
}

// AddFolder creates projectPath/relativePath and any missing parents.
func (e *Engine) AddFolder(projectPath, relativePath string) (_ string, err error) {
	const op = "addFolder"
	defer e.logFailure(op, &err)

	if projectPath == "" || relativePath == "" {
		return "", newError(KindValidation, op, "", "missing projectPath or relativePath")
	}

	target, err := joinInside(op, projectPath, relativePath)
	if err != nil {
		return "", err
	}
	if target == filepath.Clean(projectPath) {
		return "", newError(KindValidation, op, relativePath, "relative path resolves to the project root: %q", relativePath)
	}

	if _, err := e.ensureDir(op, target, existOK); err != nil {
		return "", err
	}

	e.logger.Info("folder added", "project", projectPath, "path", target)
	return target, nil
}

// buildShot creates the shot folder under the given policy, then every
// subfolder of the template's shot structure idempotently.
func (e *Engine) buildShot(op, shotPath string, tmpl *template.Template, policy existsPolicy) error {
	if _, err := e.ensureDir(op, shotPath, policy); err != nil {
		return err
	}
	for _, sub := range tmpl.ShotStructure {
		if _, err := e.ensureDir(op, filepath.Join(shotPath, sub), existOK); err != nil {
			return err
		}
	}
	return nil
}

// requireDir fails with a not-found error unless path is an existing directory.
func requireDir(op, path, what string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return newError(KindNotFound, op, path, "%s does not exist: %s", what, path)
	}
	if err != nil {
		return ioError(op, path, err)
	}
	if !info.IsDir() {
		return newError(KindNotFound, op, path, "%s is not a directory: %s", what, path)
	}
	return nil
}

// joinInside joins a relative path onto root and rejects results that are
// absolute inputs or escape root.
func joinInside(op, root, rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", newError(KindValidation, op, rel, "path must be relative to the project: %q", rel)
	}

	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(cleanRoot, rel)

	r, err := filepath.Rel(cleanRoot, joined)
	if err != nil {
		return "", newError(KindValidation, op, rel, "invalid relative path %q: %v", rel, err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", newError(KindValidation, op, rel, "path escapes the project: %q", rel)
	}
	return joined, nil
}

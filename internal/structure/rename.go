package structure

import (
	"os"
	"path/filepath"

	"github.com/shotdeck/shotdeck-agent/internal/template"
)

// RenameFolder renames projectPath/oldRelativePath to newName in the same
// parent folder. The project root itself can never be renamed and an
// existing destination is never overwritten.
func (e *Engine) RenameFolder(projectPath, oldRelativePath, newName string) (_ string, err error) {
	const op = "renameFolder"
	defer e.logFailure(op, &err)

	if projectPath != "" && oldRelativePath != "" {
		if oldPath, err := joinInside(op, projectPath, oldRelativePath); err == nil && oldPath == filepath.Clean(projectPath) {
			return "", newError(KindValidation, op, oldPath, "cannot rename the project root: %s", oldPath)
		}
	}
	if projectPath == "" || oldRelativePath == "" || newName == "" {
		return "", newError(KindValidation, op, "", "missing projectPath, oldRelativePath or newName")
	}
	if err := template.ValidateName(newName); err != nil {
		return "", newError(KindValidation, op, newName, "invalid new name: %v", err)
	}

	oldPath, err := joinInside(op, projectPath, oldRelativePath)
	if err != nil {
		return "", err
	}
	newPath := filepath.Join(filepath.Dir(oldPath), newName)

	info, err := os.Lstat(oldPath)
	if os.IsNotExist(err) {
		return "", newError(KindNotFound, op, oldPath, "folder does not exist: %s", oldPath)
	}
	if err != nil {
		return "", ioError(op, oldPath, err)
	}
	if !info.IsDir() {
		return "", newError(KindValidation, op, oldPath, "not a folder: %s", oldPath)
	}

	if newPath == oldPath {
		return "", newError(KindCollision, op, newPath, "destination already exists: %s", newPath)
	}
	if _, err := os.Lstat(newPath); err == nil {
		return "", newError(KindCollision, op, newPath, "destination already exists: %s", newPath)
	} else if !os.IsNotExist(err) {
		return "", ioError(op, newPath, err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", ioError(op, oldPath, err)
	}

	e.logger.Info("folder renamed", "project", projectPath, "from", oldPath, "to", newPath)
	return newPath, nil
}

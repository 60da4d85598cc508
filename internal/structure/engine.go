// Package structure creates, extends, renames and reads project folder trees.
//
// A project is a root folder holding the template's top-level folders and a
// "shots" folder; every shot holds the template's shot structure. The
// filesystem is the only state: each call inspects the disk, acts, and
// returns. Nothing is rolled back on failure.
package structure

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/shotdeck/shotdeck-agent/internal/logging"
)

// ShotsDir is the fixed name of the folder holding shot folders.
const ShotsDir = "shots"

// Config configures an Engine.
type Config struct {
	// FallbackBase is where projects go when the requested base is not
	// writable, typically <home>/Projects.
	FallbackBase string
	Logger       *slog.Logger
}

// Engine performs project structure operations. It keeps no state between
// calls and does no locking of its own.
type Engine struct {
	resolver *Resolver
	logger   *slog.Logger
}

func New(cfg Config) *Engine {
	logger := logging.WithComponent(orDiscard(cfg.Logger), "structure")
	return &Engine{
		resolver: NewResolver(cfg.FallbackBase, logger),
		logger:   logger,
	}
}

// Resolver returns the engine's path resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

type existsPolicy int

const (
	// existOK makes an existing directory a no-op.
	existOK existsPolicy = iota
	// existFail makes an existing directory a collision.
	existFail
)

// ensureDir makes sure path is a directory. Whether an existing directory is
// success or a collision is decided by policy. An existing non-directory is
// always a collision.
func (e *Engine) ensureDir(op, path string, policy existsPolicy) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return false, newError(KindCollision, op, path, "path exists and is not a directory: %s", path)

	case err == nil && policy == existFail:
		return false, newError(KindCollision, op, path, "folder already exists: %s", path)

	case err == nil:
		e.logger.Debug("folder exists (ok)", "op", op, "path", path)
		return false, nil

	case os.IsNotExist(err):
		if policy == existFail {
			// Plain Mkdir so a concurrent creator turns into a collision.
			if err := os.Mkdir(path, dirPerm); err != nil {
				if os.IsExist(err) {
					return false, newError(KindCollision, op, path, "folder already exists: %s", path)
				}
				return false, ioError(op, path, err)
			}
		} else if err := os.MkdirAll(path, dirPerm); err != nil {
			return false, ioError(op, path, err)
		}
		e.logger.Debug("created folder", "op", op, "path", path)
		return true, nil

	default:
		return false, ioError(op, path, err)
	}
}

// logFailure logs the error an operation is about to return, if any. Every
// exported operation defers it so a failure is logged exactly once.
func (e *Engine) logFailure(op string, errp *error) {
	if *errp == nil {
		return
	}
	var se *Error
	path := ""
	if errors.As(*errp, &se) {
		path = se.Path
	}
	e.logger.Error("operation failed", "op", op, "kind", KindOf(*errp), "path", path, "error", *errp)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

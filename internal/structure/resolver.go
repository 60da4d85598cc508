package structure

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const dirPerm os.FileMode = 0755

// Resolution describes where a project will actually be written.
type Resolution struct {
	Requested    string
	Base         string
	UsedFallback bool
	// Reason is the probe failure that triggered the fallback.
	Reason error
}

// Resolver picks a writable base directory, falling back to a fixed
// location when the requested one cannot be created or written to.
type Resolver struct {
	fallbackBase string
	now          func() time.Time
	logger       *slog.Logger
}

// NewResolver returns a Resolver that falls back to fallbackBase.
func NewResolver(fallbackBase string, logger *slog.Logger) *Resolver {
	return &Resolver{
		fallbackBase: fallbackBase,
		now:          time.Now,
		logger:       orDiscard(logger),
	}
}

// FallbackBase returns the configured fallback directory.
func (r *Resolver) FallbackBase() string {
	return r.fallbackBase
}

// Resolve returns the directory writes for requested should go to.
func (r *Resolver) Resolve(requested string) (Resolution, error) {
	res := Resolution{Requested: requested, Base: requested}

	probeErr := r.probe(requested)
	if probeErr == nil {
		return res, nil
	}

	r.logger.Warn("target path not writable, falling back",
		"requested", requested,
		"fallback", r.fallbackBase,
		"error", probeErr,
	)

	if r.fallbackBase == "" {
		return res, newError(KindFallbackExhausted, "resolve", requested,
			"cannot write to %s and no fallback directory is configured: %v", requested, probeErr)
	}
	if err := os.MkdirAll(r.fallbackBase, dirPerm); err != nil {
		r.logger.Warn("fallback path failed", "fallback", r.fallbackBase, "error", err)
		return res, newError(KindFallbackExhausted, "resolve", r.fallbackBase,
			"cannot write to %s or fallback %s: %v", requested, r.fallbackBase, err)
	}

	res.Base = r.fallbackBase
	res.UsedFallback = true
	res.Reason = probeErr
	return res, nil
}

// probe creates base if needed and checks that a file can be written in it.
func (r *Resolver) probe(base string) error {
	if err := os.MkdirAll(base, dirPerm); err != nil {
		return err
	}

	marker := filepath.Join(base, fmt.Sprintf(".write_test_%d", r.now().UnixNano()))
	f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(marker)
		return err
	}
	return os.Remove(marker)
}

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/shotdeck/shotdeck-agent/internal/catalog"
)

const countTimeout = 2 * time.Second

type Tray struct {
	projectSvc catalog.ProjectService
	logger     *slog.Logger
	apiURL     string

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	ProjectService catalog.ProjectService
	Logger         *slog.Logger
	APIURL         string
	OnQuit         func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		projectSvc: cfg.ProjectService,
		logger:     cfg.Logger,
		apiURL:     cfg.APIURL,
		onQuit:     cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Shotdeck")
	systray.SetTooltip("Shotdeck Agent")

	t.mu.Lock()
	t.statusItem = systray.AddMenuItem("Listening on "+t.apiURL, "Local API address")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("Projects: 0", "Recently used projects")
	t.projectsItem.Disable()
	t.mu.Unlock()

	systray.AddSeparator()

	refreshItem := systray.AddMenuItem("Refresh", "Reload the project count")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Shotdeck Agent")

	t.refresh()

	go func() {
		for {
			select {
			case <-refreshItem.ClickedCh:
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				t.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	if t.projectSvc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), countTimeout)
	defer cancel()

	count, err := t.projectSvc.CountProjects(ctx)
	if err != nil {
		t.logger.Warn("failed to count projects", "error", err)
		return
	}
	t.UpdateProjectsCount(count)
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle(status)
	}
}

func (t *Tray) UpdateProjectsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.projectsItem != nil {
		t.projectsItem.SetTitle(fmt.Sprintf("Projects: %d", count))
	}
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

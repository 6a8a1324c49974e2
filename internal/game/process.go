package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-vgo/robotgo"
)

var ErrGameNotRunning = errors.New("game process not running")

// ProcessNames are the executables the game ships as, per storefront.
var ProcessNames = []string{"Fallout76.exe", "Project76.exe", "Project76_GamePass.exe"}

// WindowTitles are the captions the client window uses.
var WindowTitles = []string{"Fallout76", "Project76"}

// Process finds, starts and kills the game client.
type Process struct {
	path   string
	names  []string
	logger *slog.Logger
}

func NewProcess(path string, logger *slog.Logger) *Process {
	return &Process{path: path, names: ProcessNames, logger: logger}
}

func (p *Process) pids() []int {
	var out []int
	for _, name := range p.names {
		ids, err := robotgo.FindIds(name)
		if err != nil {
			continue
		}
		out = append(out, ids...)
		if len(ids) == 0 {
			// robotgo matches names without the extension on some platforms
			ids, _ = robotgo.FindIds(strings.TrimSuffix(name, filepath.Ext(name)))
			out = append(out, ids...)
		}
	}
	return out
}

// Running reports whether any known game executable is alive.
func (p *Process) Running() bool {
	return len(p.pids()) > 0
}

// Launch starts the game without waiting for it. The client outlives ctx.
func (p *Process) Launch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(p.path)
	cmd.Dir = filepath.Dir(p.path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", p.path, err)
	}
	p.logger.Info("Game launched", slog.String("path", p.path), slog.Int("pid", cmd.Process.Pid))

	// The launcher may exit right away after spawning the client.
	go cmd.Wait()

	return nil
}

// Kill terminates every running game process. Processes that survive
// robotgo are force killed with taskkill. Callers re-check Running after a
// grace period since the client can take a while to exit.
func (p *Process) Kill() error {
	pids := p.pids()
	if len(pids) == 0 {
		return ErrGameNotRunning
	}

	var errs []error
	for _, pid := range pids {
		if err := robotgo.Kill(pid); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}

	for _, name := range p.names {
		if out, err := exec.Command("taskkill", "/f", "/im", name).CombinedOutput(); err != nil && len(errs) > 0 {
			p.logger.Debug("taskkill failed", slog.String("image", name), slog.String("output", strings.TrimSpace(string(out))))
		}
	}
	if p.Running() {
		return errors.Join(errs...)
	}
	return nil
}

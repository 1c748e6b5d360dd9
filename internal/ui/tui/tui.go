// Package tui is the terminal front-end.  It owns the bubbletea program whose event loop drives the player
// controller, and exposes the same loop to the debug server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/mediabind/internal/bridge"
	"github.com/PizzaHomicide/mediabind/internal/config"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/models"
)

// dispatchTimeout bounds how long a request from outside the loop waits to be handled
const dispatchTimeout = 2 * time.Second

// App is a running terminal UI
type App struct {
	program *tea.Program
	model   models.AppModel
	player  *models.Player
	done    atomic.Bool
}

// New builds the player tree and the program.  source, when set, is played once mpv is ready.
func New(cfg *config.Config, rec bridge.Recorder, source string) (*App, error) {
	player, err := models.NewPlayer(cfg, rec)
	if err != nil {
		return nil, err
	}
	model := models.NewAppModel(cfg, player, source)
	return &App{
		program: tea.NewProgram(model),
		model:   model,
		player:  player,
	}, nil
}

// Run blocks until the user quits, then stops the engine
func (a *App) Run() error {
	_, err := a.program.Run()
	a.done.Store(true)

	a.model.Close()
	if cerr := a.player.Close(); cerr != nil {
		log.Warn("Error closing engine", "error", cerr)
	}
	return err
}

// Snapshot returns the player's media context
func (a *App) Snapshot() mediactx.Record {
	return a.player.Snapshot()
}

// Dispatch hands req to the event loop and waits for it to be handled.  It reports false when the UI has stopped,
// the loop did not get to it in time, or no controller claimed it.
func (a *App) Dispatch(req *events.Event) bool {
	if a.done.Load() {
		return false
	}
	reply := make(chan bool, 1)
	// Send blocks until the loop reads the message, or returns once the program has exited
	go a.program.Send(models.RequestMsg{Request: req, Reply: reply})

	select {
	case claimed := <-reply:
		return claimed
	case <-time.After(dispatchTimeout):
		log.Warn("Timed out dispatching request", "request", req.Type)
		return false
	}
}

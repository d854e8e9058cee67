package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/funnel/config"
	"github.com/nstehr/funnel/defense"
	"github.com/nstehr/funnel/ipc"
	"github.com/nstehr/funnel/journal"
	"github.com/nstehr/funnel/model"
)

// ErrNoHello is returned for game frames that arrive before the handshake.
var ErrNoHello = errors.New("game frame before hello")

// SimulatorFactory builds the per-turn simulator for a game state frame.
type SimulatorFactory func(cfg *model.Config, turn int) model.Simulator

// Agent owns the decision-making for a single engine session.
type Agent struct {
	Conn     *ipc.Connection
	Session  string
	settings config.Settings
	builds   map[string]*defense.Build
	journal  *journal.Journal
	newSim   SimulatorFactory

	ctrl *Controller
}

func New(conn *ipc.Connection, session string, settings config.Settings, builds map[string]*defense.Build, j *journal.Journal) *Agent {
	a := &Agent{
		Conn:     conn,
		Session:  session,
		settings: settings,
		builds:   builds,
		journal:  j,
	}
	a.newSim = func(cfg *model.Config, turn int) model.Simulator {
		return ipc.NewSimulator(a.Conn, cfg, turn)
	}
	return a
}

// Register installs the agent's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeGameState, a.HandleGameState)
	a.Conn.RegisterHandler(ipc.TypeActionFrame, a.HandleActionFrame)
}

// Controller returns the game controller, or nil before the handshake.
func (a *Agent) Controller() *Controller { return a.ctrl }

// HandleHello binds the engine's unit configuration and starts a fresh game.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.Player != 0 && hello.Player != 1 {
		return nil, fmt.Errorf("hello: invalid player %d", hello.Player)
	}

	build, ok := a.builds[a.settings.Build]
	if !ok {
		return nil, fmt.Errorf("hello: unknown build %q", a.settings.Build)
	}
	cfg := model.NewConfig(hello.Player, hello.UnitInformation, a.settings.Tunables())
	ctrl, err := NewController(cfg, ControllerOptions{
		Session:         a.Session,
		Build:           build,
		Doctrine:        a.settings.Doctrine,
		BreachThreshold: a.settings.Strategist.BreachThreshold,
		Journal:         a.journal,
	})
	if err != nil {
		return nil, fmt.Errorf("hello: %w", err)
	}
	a.ctrl = ctrl
	slog.Info("game started", "session", a.Session, "player", hello.Player, "build", build.Name, "doctrine", a.settings.Doctrine.Name)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.Session, Build: build.Name})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleGameState plays one turn and replies with its commands.
func (a *Agent) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.ctrl == nil {
		return nil, ErrNoHello
	}
	var gs model.GameState
	if err := env.Decode(&gs); err != nil {
		return nil, err
	}
	cfg := a.ctrl.Config()
	snap := model.NewSnapshot(gs, cfg)

	res := a.ctrl.PlayTurn(snap, a.newSim(cfg, gs.Turn))

	reply, err := ipc.NewEnvelope(ipc.TypeTurn, res.Message)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// HandleActionFrame records breaches streamed while a turn resolves. No reply.
func (a *Agent) HandleActionFrame(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.ctrl == nil {
		return nil, ErrNoHello
	}
	var frame ipc.ActionFrameMessage
	if err := env.Decode(&frame); err != nil {
		return nil, err
	}
	if len(frame.Breaches) > 0 {
		a.ctrl.RecordBreaches(frame.Turn, frame.Breaches)
	}
	return nil, nil
}

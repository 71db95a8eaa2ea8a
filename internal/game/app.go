package game

import (
	"time"

	"cubecraft/internal/profiling"

	"go.uber.org/zap"
)

// Window is the part of the platform window the loop needs.
type Window interface {
	ShouldClose() bool
	SwapBuffers()
}

type App struct {
	window  Window
	poll    func()
	session *Session
	log     *zap.Logger

	pacer    *Pacer
	lastTime time.Time
	// SlowFrame is the processing time above which a frame is logged.
	SlowFrame time.Duration
}

// NewApp builds the frame loop. poll pumps platform events and may be nil.
// pollRate caps how often the loop spins; the engine decides which
// iterations draw.
func NewApp(window Window, poll func(), s *Session, pollRate int, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if poll == nil {
		poll = func() {}
	}
	return &App{
		window:    window,
		poll:      poll,
		session:   s,
		log:       log,
		pacer:     NewPacer(pollRate),
		lastTime:  time.Now(),
		SlowFrame: 16 * time.Millisecond,
	}
}

func (a *App) Session() *Session { return a.session }

func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	startTick := time.Now()
	dt := startTick.Sub(a.lastTime).Seconds()
	a.lastTime = startTick

	a.poll()

	if a.session.Tick(dt) {
		a.window.SwapBuffers()
	}

	if d := time.Since(startTick); d > a.SlowFrame {
		a.log.Warn("slow frame", append([]zap.Field{zap.Duration("took", d)}, profiling.Fields(5)...)...)
	}

	a.pacer.Wait()
}

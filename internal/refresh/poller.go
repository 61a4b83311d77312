// Package refresh schedules background inbox reloads and persists the
// committed lists to the local snapshot cache. The poller only emits
// ticks; the reload itself is issued from the update loop so it goes
// through the inbox's load tokens like any other load.
package refresh

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the current state of the background refresh.
type State int

const (
	Idle State = iota
	Running
	Failed
)

// Status holds the refresh state shown in the header.
type Status struct {
	State    State
	LastSync time.Time
	Error    error
}

// TickMsg is a tea.Msg asking the app to reload the inbox.
type TickMsg struct {
	At time.Time
}

// Poller emits a TickMsg every interval until stopped.
type Poller struct {
	interval time.Duration
	tickCh   chan TickMsg
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	status   Status
}

// New creates a poller. A non-positive interval disables ticking.
func New(interval time.Duration) *Poller {
	return &Poller{
		interval: interval,
		tickCh:   make(chan TickMsg, 1),
		stopCh:   make(chan struct{}),
	}
}

// Enabled reports whether periodic refresh is configured.
func (p *Poller) Enabled() bool { return p.interval > 0 }

// Start launches the ticking goroutine and returns a command waiting for
// the first tick. It returns nil when disabled or already running.
func (p *Poller) Start() tea.Cmd {
	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop()

	return p.WaitForNext()
}

// Stop halts the ticking goroutine and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case at := <-ticker.C:
			select {
			case p.tickCh <- TickMsg{At: at}:
			default:
				// Previous tick not consumed yet; skip this one.
			}
		}
	}
}

// WaitForNext returns a command that blocks until the next tick or until
// the poller is stopped, in which case it yields nil.
func (p *Poller) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.tickCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}

// MarkRunning records that a reload has been issued.
func (p *Poller) MarkRunning() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = Running
}

// MarkDone records the outcome of the most recent reload.
func (p *Poller) MarkDone(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Error = err
	if err != nil {
		p.status.State = Failed
		return
	}
	p.status.State = Idle
	p.status.LastSync = time.Now()
}

// Status returns the current refresh status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

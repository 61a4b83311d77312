package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// NoticeDuration is how long a status bar notice stays visible.
const NoticeDuration = 4 * time.Second

// NoticeMsg asks the parent to show a transient status bar notice.
type NoticeMsg struct {
	Text  string
	Error bool
}

// Notify returns a command emitting a NoticeMsg.
func Notify(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, Error: isError}
	}
}

// Notice is the notice currently shown, with its expiry.
type Notice struct {
	NoticeMsg
	seq uint64
}

// NoticeExpiredMsg clears the notice with the same sequence number.
type NoticeExpiredMsg struct {
	seq uint64
}

// Notices keeps the latest notice. A newer notice replaces an older one
// and only the newest expiry timer clears the bar.
type Notices struct {
	current *Notice
	seq     uint64
}

// Show replaces the current notice and returns its expiry timer.
func (n *Notices) Show(msg NoticeMsg) tea.Cmd {
	n.seq++
	seq := n.seq
	n.current = &Notice{NoticeMsg: msg, seq: seq}
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return NoticeExpiredMsg{seq: seq}
	})
}

// Expire clears the notice if msg belongs to it.
func (n *Notices) Expire(msg NoticeExpiredMsg) {
	if n.current != nil && n.current.seq == msg.seq {
		n.current = nil
	}
}

// Current returns the visible notice, if any.
func (n *Notices) Current() (NoticeMsg, bool) {
	if n.current == nil {
		return NoticeMsg{}, false
	}
	return n.current.NoticeMsg, true
}

package models

import "fmt"

type State int

const (
	StatePending State = iota
	StatePreparing
	StateTransferring
	StateComplete
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StatePreparing:
		return "PREPARING"
	case StateTransferring:
		return "TRANSFERRING"
	case StateComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Channel identifies the transport that produced (or is producing) content.
// The numeric order is the order in which channels are tried.
type Channel int

const (
	ChannelNone Channel = iota
	ChannelLAN
	ChannelBluetooth
	ChannelRelay
)

func (c Channel) String() string {
	switch c {
	case ChannelNone:
		return "NONE"
	case ChannelLAN:
		return "LAN"
	case ChannelBluetooth:
		return "BLUETOOTH"
	case ChannelRelay:
		return "RELAY"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return ""
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailure:
		return "FAILURE"
	case OutcomeCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Progress is one event of a fetch or upload. Percent is meaningful only
// when PercentKnown is set; Outcome only when State is StateComplete.
type Progress struct {
	State        State
	Channel      Channel
	Percent      int
	PercentKnown bool
	Outcome      Outcome
}

// Terminal reports whether p is the last event of an attempt.
func (p Progress) Terminal() bool {
	return p.State == StateComplete
}

func (p Progress) String() string {
	switch {
	case p.State == StateComplete:
		return fmt.Sprintf("%s/%s %s", p.State, p.Channel, p.Outcome)
	case p.PercentKnown:
		return fmt.Sprintf("%s/%s %d%%", p.State, p.Channel, p.Percent)
	default:
		return fmt.Sprintf("%s/%s", p.State, p.Channel)
	}
}

// Percent returns round(100*done/total) clamped to [0,100]; ok is false when
// total is unknown.
func Percent(done, total int64) (pct int, ok bool) {
	if total <= 0 {
		return 0, false
	}
	if done >= total {
		return 100, true
	}
	if done <= 0 {
		return 0, true
	}
	return int((200*done + total) / (2 * total)), true
}

// Transferring builds a TRANSFERRING event for ch from byte counters.
func Transferring(ch Channel, done, total int64) Progress {
	pct, ok := Percent(done, total)
	return Progress{State: StateTransferring, Channel: ch, Percent: pct, PercentKnown: ok}
}

// ProgressFunc receives progress events; it must not block for long.
type ProgressFunc func(Progress)

// Discard is a ProgressFunc that drops every event.
func Discard(Progress) {}

package session

import "errors"

const (
	MinCPS     = 1
	MaxCPS     = 50
	DefaultCPS = 10
)

var (
	ErrInvalidRateFormat      = errors.New("invalid rate format")
	ErrUnknownButtonSelection = errors.New("unknown button selection")
)

// Button identifies which mouse button the click engine drives.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Config seeds a Controller with its initial session state.
type Config struct {
	CPS          int
	Button       Button
	StartRunning bool
}

// State is a read-only snapshot of the session, intended for UI display.
type State struct {
	Running    bool
	ClickCount uint64
	CPS        int
	Button     Button
}

// Clicker performs one synchronous click of the given button. Injection
// failures are best-effort; the engine logs them and keeps going.
type Clicker interface {
	Click(button Button) error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

package linuxinput

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

const (
	CodeBTNLeft  uint16 = uint16(evdev.BTN_LEFT)
	CodeBTNRight uint16 = uint16(evdev.BTN_RIGHT)
	CodeKEYF6    uint16 = uint16(evdev.KEY_F6)
)

// ButtonCode maps the session button selection onto its evdev key code.
func ButtonCode(button session.Button) uint16 {
	if button == session.ButtonRight {
		return CodeBTNRight
	}
	return CodeBTNLeft
}

func ParseCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("toggle code is empty")
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return uint16(code), nil
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown toggle %q: use names like KEY_F6/BTN_SIDE or numeric code", value)
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("toggle code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

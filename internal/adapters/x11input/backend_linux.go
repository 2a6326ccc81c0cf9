//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/adapters/linuxinput"
	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

// Backend injects clicks with XTest and watches a toggle hotkey grabbed on
// the root window.
type Backend struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	logger  session.Logger

	clickDown time.Duration

	mu             sync.RWMutex
	toggleCode     uint16
	grabbedKeys    []xproto.Keycode
	grabbedButtons []xproto.Button

	injectMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewBackend(cfg Config, logger session.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	clickDown := cfg.ClickDown
	if clickDown < 0 {
		clickDown = 0
	}

	b := &Backend{
		xu:        xu,
		conn:      conn,
		rootWin:   xu.RootWin(),
		logger:    logger,
		clickDown: clickDown,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	if err := b.grabToggle(cfg.ToggleCode); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// Click fakes a press/release of the selected pointer button via XTest.
func (b *Backend) Click(button session.Button) error {
	index := byte(xproto.ButtonIndex1)
	if button == session.ButtonRight {
		index = byte(xproto.ButtonIndex3)
	}

	b.injectMu.Lock()
	defer b.injectMu.Unlock()

	if err := b.fakeButton(xproto.ButtonPress, index); err != nil {
		return err
	}
	if b.clickDown > 0 {
		time.Sleep(b.clickDown)
	}
	if err := b.fakeButton(xproto.ButtonRelease, index); err != nil {
		return err
	}
	b.conn.Sync()
	return nil
}

func (b *Backend) fakeButton(eventType byte, index byte) error {
	return xtest.FakeInputChecked(
		b.conn,
		eventType,
		index,
		xproto.TimeCurrentTime,
		b.rootWin,
		0,
		0,
		0,
	).Check()
}

// Start begins delivering toggle hotkey presses. onToggle is invoked from
// the X11 event loop goroutine.
func (b *Backend) Start(onToggle func()) error {
	if onToggle == nil {
		return fmt.Errorf("onToggle is nil")
	}
	go b.eventLoop(onToggle)
	return nil
}

func (b *Backend) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)

		b.mu.Lock()
		b.ungrabAllLocked()
		if b.conn != nil {
			b.conn.Close()
		}
		b.mu.Unlock()

		<-b.doneCh
	})
}

func (b *Backend) eventLoop(onToggle func()) {
	defer close(b.doneCh)

	for {
		event, xerr := b.conn.WaitForEvent()
		if xerr != nil {
			select {
			case <-b.stopCh:
				return
			default:
			}
			b.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return
		}

		switch ev := event.(type) {
		case xproto.KeyPressEvent:
			if b.isGrabbedKey(ev.Detail) {
				onToggle()
			}
			_ = xproto.AllowEventsChecked(b.conn, xproto.AllowReplayKeyboard, xproto.TimeCurrentTime).Check()
		case xproto.ButtonPressEvent:
			if b.isGrabbedButton(ev.Detail) {
				onToggle()
			}
			_ = xproto.AllowEventsChecked(b.conn, xproto.AllowReplayPointer, xproto.TimeCurrentTime).Check()
		}
	}
}

func (b *Backend) isGrabbedKey(key xproto.Keycode) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, grabbed := range b.grabbedKeys {
		if grabbed == key {
			return true
		}
	}
	return false
}

func (b *Backend) isGrabbedButton(button xproto.Button) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, grabbed := range b.grabbedButtons {
		if grabbed == button {
			return true
		}
	}
	return false
}

func (b *Backend) grabToggle(code uint16) error {
	keys, buttons, err := b.resolveBinding(code)
	if err != nil {
		return fmt.Errorf("toggle binding: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.ungrabAllLocked()
	if err := b.grabAllLocked(keys, buttons); err != nil {
		b.ungrabAllLocked()
		return err
	}
	b.toggleCode = code
	return nil
}

func (b *Backend) grabAllLocked(keys []xproto.Keycode, buttons []xproto.Button) error {
	for _, key := range keys {
		if err := xproto.GrabKeyChecked(
			b.conn,
			false,
			b.rootWin,
			xproto.ModMaskAny,
			key,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			return err
		}
		b.grabbedKeys = append(b.grabbedKeys, key)
	}

	for _, button := range buttons {
		if err := xproto.GrabButtonChecked(
			b.conn,
			false,
			b.rootWin,
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
			xproto.WindowNone,
			xproto.CursorNone,
			byte(button),
			xproto.ModMaskAny,
		).Check(); err != nil {
			return err
		}
		b.grabbedButtons = append(b.grabbedButtons, button)
	}
	return nil
}

func (b *Backend) ungrabAllLocked() {
	for _, key := range b.grabbedKeys {
		xproto.UngrabKey(b.conn, key, b.rootWin, xproto.ModMaskAny)
	}
	for _, button := range b.grabbedButtons {
		xproto.UngrabButton(b.conn, byte(button), b.rootWin, xproto.ModMaskAny)
	}
	b.grabbedKeys = nil
	b.grabbedButtons = nil
}

func (b *Backend) resolveBinding(code uint16) ([]xproto.Keycode, []xproto.Button, error) {
	if button, ok := codeToXButton(code); ok {
		return nil, []xproto.Button{button}, nil
	}

	keyName, ok := linuxCodeToXKeyString(code)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported X11 key code %s", linuxinput.FormatCodeName(code))
	}

	keycodes := keybind.StrToKeycodes(b.xu, keyName)
	if len(keycodes) == 0 {
		return nil, nil, fmt.Errorf("failed to resolve X11 key %q", keyName)
	}

	uniq := make(map[xproto.Keycode]struct{}, len(keycodes))
	for _, keycode := range keycodes {
		uniq[keycode] = struct{}{}
	}
	result := make([]xproto.Keycode, 0, len(uniq))
	for key := range uniq {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil, nil
}

func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "x11-global",
			Name:      "X11 Global Input",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}

func codeToXButton(code uint16) (xproto.Button, bool) {
	switch linuxinput.FormatCodeName(code) {
	case "BTN_MIDDLE":
		return xproto.Button(xproto.ButtonIndex2), true
	case "BTN_SIDE", "BTN_BACK":
		return xproto.Button(8), true
	case "BTN_EXTRA", "BTN_FORWARD":
		return xproto.Button(9), true
	default:
		return 0, false
	}
}

func linuxCodeToXKeyString(code uint16) (string, bool) {
	name := linuxinput.FormatCodeName(code)
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	token := strings.TrimPrefix(name, "KEY_")

	switch token {
	case "ESC":
		return "Escape", true
	case "ENTER":
		return "Return", true
	case "TAB":
		return "Tab", true
	case "SPACE":
		return "space", true
	case "BACKSPACE":
		return "BackSpace", true
	case "CAPSLOCK":
		return "Caps_Lock", true
	case "PAGEUP":
		return "Page_Up", true
	case "PAGEDOWN":
		return "Page_Down", true
	case "INSERT":
		return "Insert", true
	case "DELETE":
		return "Delete", true
	case "HOME":
		return "Home", true
	case "END":
		return "End", true
	case "UP":
		return "Up", true
	case "DOWN":
		return "Down", true
	case "LEFT":
		return "Left", true
	case "RIGHT":
		return "Right", true
	case "MENU":
		return "Menu", true
	case "PAUSE":
		return "Pause", true
	}

	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z' {
		return strings.ToLower(token), true
	}
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		return token, true
	}
	if strings.HasPrefix(token, "F") && len(token) > 1 && isDigits(token[1:]) {
		return token, true
	}
	return "", false
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

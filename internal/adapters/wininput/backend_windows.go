//go:build windows

package wininput

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmSysKeyDown  = 0x0104
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204
	wmMButtonDown = 0x0207
	wmXButtonDown = 0x020B

	xButton1 = 0x0001
	xButton2 = 0x0002

	llmhfInjected        = 0x00000001
	llkhfInjected        = 0x00000010
	llkhfLowerILInjected = 0x00000002

	inputMouse            = 0
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
)

var (
	user32 = syscall.NewLazyDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procSendInput           = user32.NewProc("SendInput")

	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procGetCurrentThreadID = kernel32.NewProc("GetCurrentThreadId")

	mouseHookCallback    = syscall.NewCallback(mouseLLCallback)
	keyboardHookCallback = syscall.NewCallback(keyboardLLCallback)

	activeBackend atomic.Pointer[Backend]
)

type point struct {
	X int32
	Y int32
}

type mouseLLHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keyboardLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type message struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type uint32
	Mi   mouseInput
}

// Backend injects clicks with SendInput and watches the toggle hotkey via
// global low-level keyboard and mouse hooks.
type Backend struct {
	toggleCode uint16
	clickDown  time.Duration
	logger     session.Logger
	onToggle   atomic.Pointer[func()]

	stopOnce sync.Once
	stopCh   chan struct{}

	threadID atomic.Uint32
	loopMu   sync.Mutex
	loopDone chan struct{}
}

func NewBackend(cfg Config, logger session.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	clickDown := cfg.ClickDown
	if clickDown < 0 {
		clickDown = 0
	}
	return &Backend{
		toggleCode: cfg.ToggleCode,
		clickDown:  clickDown,
		logger:     logger,
		stopCh:     make(chan struct{}),
		loopDone:   closedSignalChan(),
	}, nil
}

// Click sends a press/release pair for the selected button.
func (b *Backend) Click(button session.Button) error {
	down, up := uint32(mouseeventfLeftDown), uint32(mouseeventfLeftUp)
	if button == session.ButtonRight {
		down, up = mouseeventfRightDown, mouseeventfRightUp
	}

	if err := sendMouseFlags(down); err != nil {
		return err
	}
	if b.clickDown > 0 {
		time.Sleep(b.clickDown)
	}
	return sendMouseFlags(up)
}

func sendMouseFlags(flags uint32) error {
	in := input{
		Type: inputMouse,
		Mi:   mouseInput{DwFlags: flags},
	}
	sent, _, callErr := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if sent != 1 {
		if callErr != nil && callErr != syscall.Errno(0) {
			return callErr
		}
		return fmt.Errorf("SendInput sent %d of 1 inputs", sent)
	}
	return nil
}

// Start installs the global hooks. onToggle is invoked from the hook
// message loop thread.
func (b *Backend) Start(onToggle func()) error {
	if onToggle == nil {
		return fmt.Errorf("onToggle is nil")
	}
	if !activeBackend.CompareAndSwap(nil, b) {
		return fmt.Errorf("windows input backend is already active")
	}
	b.onToggle.Store(&onToggle)

	b.loopMu.Lock()
	b.loopDone = make(chan struct{})
	b.loopMu.Unlock()

	ready := make(chan error, 1)
	go b.hookLoop(ready)

	if err := <-ready; err != nil {
		b.Stop()
		return err
	}
	return nil
}

func (b *Backend) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		threadID := b.threadID.Load()
		if threadID != 0 {
			_, _, _ = procPostThreadMessageW.Call(uintptr(threadID), uintptr(wmQuit), 0, 0)
		}

		b.loopMu.Lock()
		done := b.loopDone
		b.loopMu.Unlock()
		if done != nil {
			<-done
		}

		activeBackend.CompareAndSwap(b, nil)
	})
}

func (b *Backend) hookLoop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		b.loopMu.Lock()
		done := b.loopDone
		b.loopMu.Unlock()
		if done != nil {
			close(done)
		}
	}()
	defer activeBackend.CompareAndSwap(b, nil)

	threadID, _, _ := procGetCurrentThreadID.Call()
	b.threadID.Store(uint32(threadID))

	mouseHook, _, mouseErr := procSetWindowsHookExW.Call(uintptr(whMouseLL), mouseHookCallback, 0, 0)
	if mouseHook == 0 {
		ready <- fmt.Errorf("failed to install mouse hook: %w", mouseErr)
		return
	}
	defer func() {
		_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
	}()

	keyboardHook, _, keyboardErr := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), keyboardHookCallback, 0, 0)
	if keyboardHook == 0 {
		ready <- fmt.Errorf("failed to install keyboard hook: %w", keyboardErr)
		return
	}
	defer func() {
		_, _, _ = procUnhookWindowsHookEx.Call(keyboardHook)
	}()

	ready <- nil

	var msg message
	for {
		ret, _, callErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			b.logger.Warn("Windows message loop failed", "err", callErr)
			return
		case 0:
			return
		default:
			_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
		}
	}
}

func mouseLLCallback(code int, wParam uintptr, lParam uintptr) uintptr {
	if code >= 0 {
		if b := activeBackend.Load(); b != nil {
			b.handleMouseHook(wParam, lParam)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

func keyboardLLCallback(code int, wParam uintptr, lParam uintptr) uintptr {
	if code >= 0 {
		if b := activeBackend.Load(); b != nil {
			b.handleKeyboardHook(wParam, lParam)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

// handleMouseHook fires the toggle for physical presses of mouse-button
// hotkeys. Injected events are skipped so our own clicks never toggle the
// session.
func (b *Backend) handleMouseHook(wParam uintptr, lParam uintptr) {
	if lParam == 0 {
		return
	}

	event := (*mouseLLHookStruct)(unsafe.Pointer(lParam))
	if event.Flags&llmhfInjected != 0 {
		return
	}

	var code uint16
	switch uint32(wParam) {
	case wmLButtonDown:
		code = CodeBTNLeft
	case wmRButtonDown:
		code = CodeBTNRight
	case wmMButtonDown:
		code = CodeBTNMiddle
	case wmXButtonDown:
		code = xButtonCode(event.MouseData)
	default:
		return
	}

	if code != 0 && code == b.toggleCode {
		b.fireToggle()
	}
}

func (b *Backend) handleKeyboardHook(wParam uintptr, lParam uintptr) {
	if lParam == 0 {
		return
	}

	event := (*keyboardLLHookStruct)(unsafe.Pointer(lParam))
	if event.Flags&llkhfInjected != 0 || event.Flags&llkhfLowerILInjected != 0 {
		return
	}

	switch uint32(wParam) {
	case wmKeyDown, wmSysKeyDown:
	default:
		return
	}

	code, ok := CodeFromVK(event.VkCode)
	if !ok {
		return
	}
	if code == b.toggleCode {
		b.fireToggle()
	}
}

func (b *Backend) fireToggle() {
	if fn := b.onToggle.Load(); fn != nil {
		(*fn)()
	}
}

func xButtonCode(mouseData uint32) uint16 {
	switch uint16(mouseData >> 16) {
	case xButton1:
		return CodeBTNSide
	case xButton2:
		return CodeBTNExtra
	default:
		return 0
	}
}

func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "global",
			Name:      "Windows Global Input",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}

func closedSignalChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingClicker struct {
	mu     sync.Mutex
	clicks []Button
	err    error
}

func (r *recordingClicker) Click(button Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clicks = append(r.clicks, button)
	return r.err
}

func (r *recordingClicker) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks)
}

func (r *recordingClicker) lastButton() (Button, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.clicks) == 0 {
		return 0, false
	}
	return r.clicks[len(r.clicks)-1], true
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func testController(t *testing.T, cfg Config) (*Controller, *recordingClicker) {
	t.Helper()
	clicker := &recordingClicker{}
	controller, err := NewController(cfg, clicker, noopLogger{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	t.Cleanup(controller.Stop)
	return controller, clicker
}

func waitForClicks(t *testing.T, controller *Controller, want uint64, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for controller.ClickCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("click count %d did not reach %d within %v", controller.ClickCount(), want, timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewControllerRequiresCollaborators(t *testing.T) {
	if _, err := NewController(Config{}, nil, noopLogger{}); err == nil {
		t.Fatalf("expected error for nil clicker")
	}
	if _, err := NewController(Config{}, &recordingClicker{}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestInitialState(t *testing.T) {
	controller, _ := testController(t, Config{})

	state := controller.Snapshot()
	if state.Running {
		t.Fatalf("expected idle initial state")
	}
	if state.ClickCount != 0 {
		t.Fatalf("initial click count = %d, want 0", state.ClickCount)
	}
	if state.CPS != DefaultCPS {
		t.Fatalf("initial cps = %d, want %d", state.CPS, DefaultCPS)
	}
	if state.Button != ButtonLeft {
		t.Fatalf("initial button = %v, want Left", state.Button)
	}
}

func TestToggleAlternatesState(t *testing.T) {
	controller, _ := testController(t, Config{CPS: MaxCPS})

	controller.Toggle()
	if !controller.Running() {
		t.Fatalf("expected running after first toggle")
	}

	controller.Toggle()
	if controller.Running() {
		t.Fatalf("expected idle after second toggle")
	}

	for i := 1; i <= 5; i++ {
		controller.Toggle()
		expected := i%2 == 1
		if controller.Running() != expected {
			t.Fatalf("after %d toggles running=%v, want %v", i, controller.Running(), expected)
		}
	}
}

func TestStartSpawnsLiveEngine(t *testing.T) {
	controller, clicker := testController(t, Config{CPS: MaxCPS})

	controller.Start()
	if !controller.Running() {
		t.Fatalf("expected running after Start")
	}

	waitForClicks(t, controller, 3, time.Second)
	if clicker.count() == 0 {
		t.Fatalf("expected clicker to receive clicks")
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	controller, _ := testController(t, Config{CPS: MaxCPS})

	controller.Start()
	controller.Start()
	waitForClicks(t, controller, 2, time.Second)

	// A second loop would keep clicking past this single Stop.
	controller.Stop()
	count := controller.ClickCount()
	time.Sleep(100 * time.Millisecond)
	if got := controller.ClickCount(); got != count {
		t.Fatalf("click count advanced from %d to %d after Stop", count, got)
	}
}

func TestStopHaltsClickingWithinInterval(t *testing.T) {
	controller, _ := testController(t, Config{CPS: MaxCPS})

	controller.Start()
	waitForClicks(t, controller, 3, time.Second)

	controller.Stop()
	if controller.Running() {
		t.Fatalf("expected idle after Stop")
	}
	count := controller.ClickCount()
	time.Sleep(100 * time.Millisecond)
	if got := controller.ClickCount(); got != count {
		t.Fatalf("click count advanced from %d to %d after Stop", count, got)
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	controller, _ := testController(t, Config{})
	controller.Stop()
	if controller.Running() {
		t.Fatalf("expected idle state")
	}
}

func TestClickCountPersistsAcrossSessions(t *testing.T) {
	controller, _ := testController(t, Config{CPS: MaxCPS})

	controller.Start()
	waitForClicks(t, controller, 2, time.Second)
	controller.Stop()
	count := controller.ClickCount()

	controller.Start()
	waitForClicks(t, controller, count+2, time.Second)
	controller.Stop()

	if got := controller.ClickCount(); got < count {
		t.Fatalf("click count reset from %d to %d across sessions", count, got)
	}
}

func TestClickOnceIncrementsCounter(t *testing.T) {
	for _, clicks := range []int{5, 100} {
		t.Run(fmt.Sprintf("%d-clicks", clicks), func(t *testing.T) {
			controller, clicker := testController(t, Config{})
			for i := 0; i < clicks; i++ {
				if err := controller.clickOnce(); err != nil {
					t.Fatalf("clickOnce() error = %v", err)
				}
			}
			if got := controller.ClickCount(); got != uint64(clicks) {
				t.Fatalf("click count = %d, want %d", got, clicks)
			}
			if got := clicker.count(); got != clicks {
				t.Fatalf("clicker received %d clicks, want %d", got, clicks)
			}
		})
	}
}

func TestSetRateUpdatesCPS(t *testing.T) {
	controller, _ := testController(t, Config{})

	tests := []struct {
		raw      string
		expected int
	}{
		{raw: "25.0", expected: 25},
		{raw: "25.7", expected: 25},
		{raw: "1.0", expected: 1},
		{raw: "50.0", expected: 50},
	}
	for _, tc := range tests {
		if err := controller.SetRate(tc.raw); err != nil {
			t.Fatalf("SetRate(%q) error = %v", tc.raw, err)
		}
		if got := controller.CPS(); got != tc.expected {
			t.Fatalf("after SetRate(%q) cps = %d, want %d", tc.raw, got, tc.expected)
		}
	}
}

func TestSetRateKeepsPreviousOnMalformedInput(t *testing.T) {
	controller, _ := testController(t, Config{CPS: 25})

	err := controller.SetRate("not-a-number")
	if !errors.Is(err, ErrInvalidRateFormat) {
		t.Fatalf("SetRate error = %v, want ErrInvalidRateFormat", err)
	}
	if got := controller.CPS(); got != 25 {
		t.Fatalf("cps = %d after malformed input, want 25", got)
	}
}

func TestSetButtonSelections(t *testing.T) {
	controller, _ := testController(t, Config{})

	if err := controller.SetButton("Right"); err != nil {
		t.Fatalf("SetButton(Right) error = %v", err)
	}
	if controller.Button() != ButtonRight {
		t.Fatalf("button = %v, want Right", controller.Button())
	}

	if err := controller.SetButton("Left"); err != nil {
		t.Fatalf("SetButton(Left) error = %v", err)
	}
	if controller.Button() != ButtonLeft {
		t.Fatalf("button = %v, want Left", controller.Button())
	}
}

func TestSetButtonKeepsPreviousOnUnknownSelection(t *testing.T) {
	controller, _ := testController(t, Config{Button: ButtonRight})

	err := controller.SetButton("Middle")
	if !errors.Is(err, ErrUnknownButtonSelection) {
		t.Fatalf("SetButton error = %v, want ErrUnknownButtonSelection", err)
	}
	if controller.Button() != ButtonRight {
		t.Fatalf("button = %v after unknown selection, want Right", controller.Button())
	}
}

func TestEngineClicksSelectedButton(t *testing.T) {
	controller, clicker := testController(t, Config{CPS: MaxCPS, Button: ButtonRight})

	controller.Start()
	waitForClicks(t, controller, 2, time.Second)
	controller.Stop()

	button, ok := clicker.lastButton()
	if !ok {
		t.Fatalf("expected recorded clicks")
	}
	if button != ButtonRight {
		t.Fatalf("clicked button = %v, want Right", button)
	}
}

func TestLiveRateChangeAppliesWithoutRestart(t *testing.T) {
	controller, _ := testController(t, Config{CPS: MinCPS})

	controller.Start()
	if err := controller.SetRate("50.0"); err != nil {
		t.Fatalf("SetRate() error = %v", err)
	}

	// One pending 1s sleep may elapse first; after that the loop runs at
	// 20ms per click.
	waitForClicks(t, controller, 10, 3*time.Second)
	controller.Stop()
}

func TestClickErrorsDoNotStopEngine(t *testing.T) {
	clicker := &recordingClicker{err: errors.New("injection failed")}
	controller, err := NewController(Config{CPS: MaxCPS}, clicker, noopLogger{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	t.Cleanup(controller.Stop)

	controller.Start()
	waitForClicks(t, controller, 3, time.Second)
	if !controller.Running() {
		t.Fatalf("expected engine to keep running through click errors")
	}
}

func TestStartRunningConfigSpawnsEngine(t *testing.T) {
	clicker := &recordingClicker{}
	controller, err := NewController(Config{CPS: MaxCPS, StartRunning: true}, clicker, noopLogger{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	t.Cleanup(controller.Stop)

	if !controller.Running() {
		t.Fatalf("expected running state from StartRunning config")
	}
	waitForClicks(t, controller, 1, time.Second)
}

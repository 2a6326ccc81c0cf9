package main

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

type clickerTheme struct {
	base fyne.Theme
}

func newClickerTheme() fyne.Theme {
	return &clickerTheme{base: theme.DarkTheme()}
}

func (t *clickerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0d, G: 0x10, B: 0x14, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x12, G: 0x16, B: 0x1c, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1d, G: 0x23, B: 0x2c, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x16, G: 0x1a, B: 0x20, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x13, G: 0x18, B: 0x1f, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x2b, G: 0x33, B: 0x40, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x66, G: 0xb8, B: 0xff, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x7a, G: 0xc2, B: 0xff, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0x7a, G: 0xc2, B: 0xff, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0x7a, G: 0xc2, B: 0xff, A: 0x40}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x66, G: 0xb8, B: 0xff, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf2, G: 0xf4, B: 0xf8, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xa9, G: 0xb3, B: 0xc2, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *clickerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *clickerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *clickerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 8
	case theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

func runUI(baseCfg config) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newClickerTheme())

	window := fApp.NewWindow("Auto-Clicker")
	window.Resize(fyne.NewSize(460, 420))
	window.SetFixedSize(true)
	window.CenterOnScreen()

	cfg := baseCfg
	settingsLoadWarning := ""

	stored, err := loadUISettings()
	if err != nil {
		settingsLoadWarning = fmt.Sprintf("Failed to load saved settings: %v", err)
	} else if stored != nil {
		if stored.CPS >= session.MinCPS && stored.CPS <= session.MaxCPS {
			cfg.cps = stored.CPS
		}
		if button, parseErr := parseButtonSelection(stored.Button); parseErr == nil {
			cfg.button = button
		}
		if value := strings.TrimSpace(stored.Toggle); value != "" {
			if code, parseErr := parseToggleCode(value); parseErr == nil {
				cfg.toggleCode = code
				cfg.toggleRaw = value
			} else {
				settingsLoadWarning = fmt.Sprintf("Saved toggle is invalid (%s); using default.", value)
			}
		}
	}

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 120))
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}

	logger := newSlogLogger(cfg.logLevel, appendLogLine)
	backend, err := newBackendFromConfig(cfg, logger)
	if err != nil {
		if isPermissionError(err) {
			return fmt.Errorf("%s", permissionDeniedHint())
		}
		return err
	}
	runtime, err := newAppRuntime(cfg, backend, logger)
	if err != nil {
		backend.Stop()
		return err
	}
	controller := runtime.controller

	errorText := canvas.NewText("", nil)
	errorText.Color = theme.Color(theme.ColorNameError)
	if settingsLoadWarning != "" {
		errorText.Text = settingsLoadWarning
		appendLogLine("WARNING " + settingsLoadWarning)
	}
	showError := func(message string) {
		errorText.Text = message
		errorText.Refresh()
		if message != "" {
			appendLogLine("ERROR " + message)
		}
	}

	cpsValue := widget.NewLabel(fmt.Sprintf("%d CPS", cfg.cps))
	cpsValue.Alignment = fyne.TextAlignTrailing
	cpsValue.TextStyle = fyne.TextStyle{Bold: true}

	persistUISettings := func() {
		settings := uiSettings{
			CPS:    controller.CPS(),
			Button: controller.Button().String(),
			Toggle: strings.TrimSpace(cfg.toggleRaw),
		}
		if err := saveUISettings(settings); err != nil {
			showError(fmt.Sprintf("Failed to save settings: %v", err))
		}
	}

	cpsSlider := widget.NewSlider(session.MinCPS, session.MaxCPS)
	cpsSlider.Step = 1
	cpsSlider.SetValue(float64(cfg.cps))
	cpsSlider.OnChanged = func(v float64) {
		// The slider reports its position as a decimal numeral; the
		// controller owns parsing and clamping.
		raw := strconv.FormatFloat(v, 'f', 2, 64)
		if err := controller.SetRate(raw); err != nil {
			showError(err.Error())
			return
		}
		showError("")
		cpsValue.SetText(fmt.Sprintf("%d CPS", controller.CPS()))
		persistUISettings()
	}

	buttonSelect := widget.NewSelect([]string{"Left", "Right"}, func(selection string) {
		if err := controller.SetButton(selection); err != nil {
			showError(err.Error())
			return
		}
		showError("")
		persistUISettings()
	})
	buttonSelect.SetSelected(cfg.button.String())

	hotkeyLabel := widget.NewLabel("Hotkey: " + formatCodeName(cfg.toggleCode))

	countLabel := widget.NewLabel("Clicks: 0")
	countLabel.TextStyle = fyne.TextStyle{Bold: true}

	toggleBtn := widget.NewButton("Start", controller.Toggle)
	toggleBtn.Importance = widget.HighImportance

	refreshStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-refreshStop:
				return
			case <-ticker.C:
				state := controller.Snapshot()
				fyne.Do(func() {
					countLabel.SetText(fmt.Sprintf("Clicks: %d", state.ClickCount))
					if state.Running {
						toggleBtn.SetText("Stop")
					} else {
						toggleBtn.SetText("Start")
					}
				})
			}
		}
	}()

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			close(refreshStop)
			runtime.Shutdown()
		})
	}

	requestQuit := func() {
		fyne.Do(func() {
			persistUISettings()
			cleanup()
			if currentApp := fyne.CurrentApp(); currentApp != nil {
				currentApp.Quit()
				return
			}
			window.SetCloseIntercept(nil)
			window.Close()
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		requestQuit()
	}()

	window.SetCloseIntercept(func() {
		persistUISettings()
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	})

	titleText := canvas.NewText("AUTO-CLICKER", color.NRGBA{R: 0x66, G: 0xb8, B: 0xff, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 28

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0x66, G: 0xb8, B: 0xff, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	rateHead := container.NewBorder(nil, nil, widget.NewLabel("Rate"), cpsValue, nil)
	rateCard := widget.NewCard("Rate", "", container.NewVBox(rateHead, cpsSlider))
	buttonCard := widget.NewCard("Button", "", container.NewVBox(buttonSelect, hotkeyLabel))
	controlsRow := container.NewGridWithColumns(2, rateCard, buttonCard)

	mainContent := container.NewVBox(
		titleText,
		accentLine,
		controlsRow,
		countLabel,
		errorText,
		toggleBtn,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.72)
		rootContent = split
	}

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/quailyard/ctxmenu/internal/app"
	"github.com/quailyard/ctxmenu/internal/config"
	"github.com/quailyard/ctxmenu/internal/logging"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	appCfg := runtimeCfg.App
	if w, h, _, ok := detectTTY(); ok {
		// Flags win; the terminal only fills in unset dimensions.
		if appCfg.Width == 0 {
			appCfg.Width = w
		}
		if appCfg.Height == 0 {
			appCfg.Height = h
		}
	}

	logging.Trace("app.start", startupTracePayload(runtimeCfg))

	if err := app.Run(appCfg); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]any {
	payload := map[string]any{
		"argv":   cfg.Args,
		"flags":  cfg.Flags,
		"config": cfg,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	if w, h, source, ok := detectTTY(); ok {
		payload["tty"] = map[string]any{"source": source, "width": w, "height": h}
	}
	return payload
}

// detectTTY reports the size of the first standard stream attached to a
// terminal.
func detectTTY() (width, height int, source string, ok bool) {
	streams := []struct {
		name string
		f    *os.File
	}{
		{"stdout", os.Stdout},
		{"stderr", os.Stderr},
		{"stdin", os.Stdin},
	}
	for _, s := range streams {
		fd := int(s.f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		if w, h, err := term.GetSize(fd); err == nil {
			return w, h, s.name, true
		}
	}
	return 0, 0, "", false
}

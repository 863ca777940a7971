package config

import "testing"

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Width != 0 || cfg.App.Height != 0 {
		t.Fatalf("default dimensions = %dx%d, want 0x0", cfg.App.Width, cfg.App.Height)
	}
	if cfg.App.Trigger != "contextmenu" {
		t.Fatalf("default trigger = %q", cfg.App.Trigger)
	}
	if cfg.Logging.Trace {
		t.Fatalf("trace enabled by default")
	}
}

func TestLoadArgsFlagsOverrideEnv(t *testing.T) {
	env := []string{"CTXMENU_WIDTH=80", "CTXMENU_TRIGGER=hover", "CTXMENU_TRACE=true"}
	cfg, err := LoadArgs([]string{"--width", "120"}, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Width != 120 {
		t.Fatalf("width = %d, want flag value 120", cfg.App.Width)
	}
	if cfg.App.Trigger != "hover" {
		t.Fatalf("trigger = %q, want env value", cfg.App.Trigger)
	}
	if !cfg.Logging.Trace {
		t.Fatalf("trace env not honoured")
	}
}

func TestLoadArgsRejectsNegativeDimensions(t *testing.T) {
	if _, err := LoadArgs([]string{"--width", "-1"}, nil); err == nil {
		t.Fatalf("negative width accepted")
	}
	if _, err := LoadArgs([]string{"--height", "-5"}, nil); err == nil {
		t.Fatalf("negative height accepted")
	}
}

func TestValidateTrigger(t *testing.T) {
	cfg, err := LoadArgs([]string{"--trigger", "click"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("valid trigger rejected: %v", err)
	}
	cfg.App.Trigger = "wave"
	if err := Validate(cfg); err == nil {
		t.Fatalf("unknown trigger accepted")
	}
}

func TestLoadArgsIgnoresMalformedEnv(t *testing.T) {
	env := []string{"", "NOEQUALS", "CTXMENU_WIDTH=notanumber"}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Width != 0 {
		t.Fatalf("malformed env width = %d, want fallback 0", cfg.App.Width)
	}
}

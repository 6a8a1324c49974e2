package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fo76bot.yaml")
	writeFile(t, path, `
gamePath: C:\Games\Fallout76\Fallout76.exe
perception:
  confidence: 0.8
action:
  spiral:
    step: 12
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Perception.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want override 0.8", cfg.Perception.Confidence)
	}
	if cfg.Action.Spiral.Step != 12 {
		t.Errorf("Spiral.Step = %d, want override 12", cfg.Action.Spiral.Step)
	}
	if cfg.Perception.MotionTolerance != 15 {
		t.Errorf("MotionTolerance = %d, want default 15", cfg.Perception.MotionTolerance)
	}
	if cfg.Action.Spiral.MaxIterations != 50 {
		t.Errorf("Spiral.MaxIterations = %d, want default 50", cfg.Action.Spiral.MaxIterations)
	}
	if cfg.Action.Spiral.MetaStart != 2 {
		t.Errorf("Spiral.MetaStart = %d, want default 2", cfg.Action.Spiral.MetaStart)
	}
	if cfg.Decision.BadEventRule != DefaultBadEventRule {
		t.Errorf("BadEventRule = %q, want default", cfg.Decision.BadEventRule)
	}
	if cfg.Server.Port != 8087 {
		t.Errorf("Server.Port = %d, want 8087", cfg.Server.Port)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	t.Setenv("FO76BOT_DISCORD_TOKEN", "env-token")
	t.Setenv("FO76BOT_TELEGRAM_CHAT_ID", "42")
	t.Setenv("NGROK_AUTHTOKEN", "ngrok-token")

	cfg := &BotCfg{}
	cfg.Discord.Token = "file-token"
	if err := applyEnv(cfg); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if cfg.Discord.Token != "env-token" {
		t.Errorf("Discord.Token = %q, want env-token", cfg.Discord.Token)
	}
	if cfg.Telegram.ChatID != 42 {
		t.Errorf("Telegram.ChatID = %d, want 42", cfg.Telegram.ChatID)
	}
	if cfg.Ngrok.Authtoken != "ngrok-token" {
		t.Errorf("Ngrok.Authtoken = %q, want ngrok-token", cfg.Ngrok.Authtoken)
	}
}

func TestApplyEnvInvalidChatID(t *testing.T) {
	t.Setenv("FO76BOT_TELEGRAM_CHAT_ID", "not-a-number")
	if err := applyEnv(&BotCfg{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSanitizeDiscordConfig(t *testing.T) {
	tests := []struct {
		name        string
		useWebhook  bool
		webhookURL  string
		token       string
		channelID   string
		wantEnabled bool
	}{
		{"webhook without url", true, "", "", "", false},
		{"webhook with url", true, "https://discord.test/hook", "", "", true},
		{"bot without token", false, "", "", "123", false},
		{"bot without channel", false, "", "tok", "", false},
		{"bot complete", false, "", "tok", "123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &BotCfg{}
			cfg.Discord.Enabled = true
			cfg.Discord.UseWebhook = tt.useWebhook
			cfg.Discord.WebhookURL = tt.webhookURL
			cfg.Discord.Token = tt.token
			cfg.Discord.ChannelID = tt.channelID

			sanitizeDiscordConfig(cfg)
			if cfg.Discord.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Discord.Enabled, tt.wantEnabled)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "Fallout76.exe")
	writeFile(t, exe, "")

	cfg := &BotCfg{GamePath: exe, IconsPath: dir}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.GamePath = filepath.Join(dir, "missing.exe")
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing game executable")
	}
}

func TestCreateFromTemplateAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config", "template", "fo76bot.yaml"), "name: from-template\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if Bot.Name != "from-template" {
		t.Errorf("Name = %q, want from-template", Bot.Name)
	}
	if _, err := os.Stat(filepath.Join(dir, "config", "fo76bot.yaml")); err != nil {
		t.Errorf("config file not created from template: %v", err)
	}

	if err := SaveDisplay(RequiredDisplay); err != nil {
		t.Fatalf("SaveDisplay() error = %v", err)
	}
	reloaded, err := LoadFrom(filepath.Join(dir, "config", "fo76bot.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Display.Equal(RequiredDisplay) {
		t.Errorf("Display = %+v, want %+v", reloaded.Display, RequiredDisplay)
	}
}

func TestRewriteDisplaySection(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantChanged bool
		wantLines   []string
	}{
		{
			name:        "already correct",
			in:          "[Display]\niSize H=800\niSize W=1280\niLocation X=0\niLocation Y=0\nbFull Screen=0\nbBorderless=1\n",
			wantChanged: false,
		},
		{
			name:        "wrong values replaced",
			in:          "[General]\nfoo=1\n[Display]\niSize H=1080\niSize W=1920\niLocation X=0\niLocation Y=0\nbFull Screen=1\nbBorderless=0\n[Audio]\nbar=2\n",
			wantChanged: true,
			wantLines:   []string{"iSize H=800", "iSize W=1280", "bFull Screen=0", "bBorderless=1", "[Audio]", "bar=2", "foo=1"},
		},
		{
			name:        "missing keys appended inside section",
			in:          "[Display]\niSize H=800\n[Audio]\nbar=2\n",
			wantChanged: true,
			wantLines:   []string{"iSize W=1280", "bBorderless=1"},
		},
		{
			name:        "missing section created",
			in:          "[General]\nfoo=1\n",
			wantChanged: true,
			wantLines:   []string{"[Display]", "iSize H=800", "foo=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed := rewriteDisplaySection(tt.in, RequiredDisplay)
			if changed != tt.wantChanged {
				t.Fatalf("changed = %v, want %v", changed, tt.wantChanged)
			}
			for _, l := range tt.wantLines {
				if !strings.Contains(out, l+"\n") {
					t.Errorf("output missing line %q:\n%s", l, out)
				}
			}
		})
	}
}

func TestRewriteDisplaySectionKeepsKeysInsideSection(t *testing.T) {
	out, _ := rewriteDisplaySection("[Display]\niSize H=800\n[Audio]\nbar=2\n", RequiredDisplay)
	audio := strings.Index(out, "[Audio]")
	borderless := strings.Index(out, "bBorderless=1")
	if borderless < 0 || audio < 0 || borderless > audio {
		t.Errorf("appended key landed outside [Display]:\n%s", out)
	}
}

func TestEnsureDisplayPrefsPreservesCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Fallout76Prefs.ini")
	writeFile(t, path, "[Display]\r\niSize H=1080\r\n")

	changed, err := EnsureDisplayPrefs(path, RequiredDisplay)
	if err != nil || !changed {
		t.Fatalf("EnsureDisplayPrefs() = %v, %v; want true, nil", changed, err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "iSize H=800\r\n") {
		t.Errorf("CRLF not preserved: %q", raw)
	}

	changed, err = EnsureDisplayPrefs(path, RequiredDisplay)
	if err != nil || changed {
		t.Errorf("second EnsureDisplayPrefs() = %v, %v; want false, nil", changed, err)
	}
}

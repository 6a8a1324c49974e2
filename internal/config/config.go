package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

var (
	cfgMux  sync.RWMutex
	Bot     *BotCfg
	Version = "dev"

	ErrInvalidPath = errors.New("invalid path")
)

const (
	configDir   = "config"
	configFile  = "fo76bot.yaml"
	templateDir = "template"

	DefaultBadEventRule = "bad > 1 && event > 0"
)

type DisplayCfg struct {
	Height     int  `yaml:"height"`
	Width      int  `yaml:"width"`
	LocationX  int  `yaml:"locationX"`
	LocationY  int  `yaml:"locationY"`
	FullScreen bool `yaml:"fullScreen"`
	Borderless bool `yaml:"borderless"`
}

// RequiredDisplay is the only window geometry the screen coordinates are valid for.
var RequiredDisplay = DisplayCfg{Height: 800, Width: 1280, Borderless: true}

type PerceptionCfg struct {
	Confidence      float64 `yaml:"confidence"`
	MotionTolerance int     `yaml:"motionTolerance"`
	NudgeCount      int     `yaml:"nudgeCount"`
	NudgeStep       int     `yaml:"nudgeStep"`
	NudgeDelayMs    int     `yaml:"nudgeDelayMs"`
	MotionCancel    bool    `yaml:"motionCancel"`
}

type SpiralCfg struct {
	OriginX       int `yaml:"originX"`
	OriginY       int `yaml:"originY"`
	Step          int `yaml:"step"`
	MetaStart     int `yaml:"metaStart"`
	GrowthBase    int `yaml:"growthBase"`
	MaxIterations int `yaml:"maxIterations"`
}

type ActionCfg struct {
	MapAttempts        int       `yaml:"mapAttempts"`
	JoinAttempts       int       `yaml:"joinAttempts"`
	LeaveAttempts      int       `yaml:"leaveAttempts"`
	LeavePolls         int       `yaml:"leavePolls"`
	EventAttempts      int       `yaml:"eventAttempts"`
	PopupPolls         int       `yaml:"popupPolls"`
	LoadChecks         int       `yaml:"loadChecks"`
	LoadWaitSeconds    int       `yaml:"loadWaitSeconds"`
	LoadingWaitSeconds int       `yaml:"loadingWaitSeconds"`
	IntroWaitSeconds   int       `yaml:"introWaitSeconds"`
	NudgeWaitSeconds   int       `yaml:"nudgeWaitSeconds"`
	EventWaitSeconds   int       `yaml:"eventWaitSeconds"`
	Spiral             SpiralCfg `yaml:"spiral"`
}

type DecisionCfg struct {
	BadEventRule string `yaml:"badEventRule"`
}

type SupervisorCfg struct {
	PollIntervalMs      int `yaml:"pollIntervalMs"`
	RestartPauseSeconds int `yaml:"restartPauseSeconds"`
	LaunchChecks        int `yaml:"launchChecks"`
	LaunchWaitSeconds   int `yaml:"launchWaitSeconds"`
	FocusAttempts       int `yaml:"focusAttempts"`
	FocusWaitSeconds    int `yaml:"focusWaitSeconds"`
	KillGraceSeconds    int `yaml:"killGraceSeconds"`
	KillAttempts        int `yaml:"killAttempts"`
}

type HealthCfg struct {
	Enabled          bool `yaml:"enabled"`
	FailureThreshold int  `yaml:"failureThreshold"`
	SustainedSeconds int  `yaml:"sustainedSeconds"`
}

type BotCfg struct {
	Debug struct {
		Log         bool `yaml:"log"`
		Screenshots bool `yaml:"screenshots"`
	} `yaml:"debug"`
	Name             string        `yaml:"name"`
	LogSaveDirectory string        `yaml:"logSaveDirectory"`
	GamePath         string        `yaml:"gamePath"`
	PrefsPath        string        `yaml:"prefsPath"`
	TessdataPath     string        `yaml:"tessdataPath"`
	IconsPath        string        `yaml:"iconsPath"`
	Display          DisplayCfg    `yaml:"display"`
	Perception       PerceptionCfg `yaml:"perception"`
	Action           ActionCfg     `yaml:"action"`
	Decision         DecisionCfg   `yaml:"decision"`
	Supervisor       SupervisorCfg `yaml:"supervisor"`
	Health           HealthCfg     `yaml:"health"`
	Server           struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Discord struct {
		Enabled                bool     `yaml:"enabled"`
		EnableRestartMessages  bool     `yaml:"enableRestartMessages"`
		EnableFailureMessages  bool     `yaml:"enableFailureMessages"`
		EnableDecisionMessages bool     `yaml:"enableDecisionMessages"`
		BotAdmins              []string `yaml:"botAdmins"`
		ChannelID              string   `yaml:"channelId"`
		Token                  string   `yaml:"token"`
		UseWebhook             bool     `yaml:"useWebhook"`
		WebhookURL             string   `yaml:"webhookUrl"`
	} `yaml:"discord"`
	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
	Ngrok struct {
		Enabled       bool   `yaml:"enabled"`
		SendURL       bool   `yaml:"sendUrl"`
		Authtoken     string `yaml:"authtoken"`
		Region        string `yaml:"region"`
		Domain        string `yaml:"domain"`
		BasicAuthUser string `yaml:"basicAuthUser"`
		BasicAuthPass string `yaml:"basicAuthPass"`
	} `yaml:"ngrok"`
}

// ApplyDefaults fills every zero tunable with its calibrated default.
func (c *BotCfg) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "fo76bot"
	}
	if c.LogSaveDirectory == "" {
		c.LogSaveDirectory = "logs"
	}
	if c.IconsPath == "" {
		c.IconsPath = "assets/icons"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8087
	}

	p := &c.Perception
	if p.Confidence == 0 {
		p.Confidence = 0.9
	}
	if p.MotionTolerance == 0 {
		p.MotionTolerance = 15
	}
	if p.NudgeCount == 0 {
		p.NudgeCount = 30
	}
	if p.NudgeStep == 0 {
		p.NudgeStep = 10
	}
	if p.NudgeDelayMs == 0 {
		p.NudgeDelayMs = 50
	}

	a := &c.Action
	setDefault(&a.MapAttempts, 4)
	setDefault(&a.JoinAttempts, 3)
	setDefault(&a.LeaveAttempts, 2)
	setDefault(&a.LeavePolls, 5)
	setDefault(&a.EventAttempts, 3)
	setDefault(&a.PopupPolls, 3)
	setDefault(&a.LoadChecks, 12)
	setDefault(&a.LoadWaitSeconds, 10)
	setDefault(&a.LoadingWaitSeconds, 10)
	setDefault(&a.IntroWaitSeconds, 5)
	setDefault(&a.NudgeWaitSeconds, 5)
	setDefault(&a.EventWaitSeconds, 10)
	setDefault(&a.Spiral.OriginX, 640)
	setDefault(&a.Spiral.OriginY, 400)
	setDefault(&a.Spiral.Step, 10)
	setDefault(&a.Spiral.MetaStart, 2)
	setDefault(&a.Spiral.GrowthBase, 5)
	setDefault(&a.Spiral.MaxIterations, 50)

	if strings.TrimSpace(c.Decision.BadEventRule) == "" {
		c.Decision.BadEventRule = DefaultBadEventRule
	}

	s := &c.Supervisor
	setDefault(&s.PollIntervalMs, 1000)
	setDefault(&s.RestartPauseSeconds, 5)
	setDefault(&s.LaunchChecks, 6)
	setDefault(&s.LaunchWaitSeconds, 10)
	setDefault(&s.FocusAttempts, 10)
	setDefault(&s.FocusWaitSeconds, 5)
	setDefault(&s.KillGraceSeconds, 2)
	setDefault(&s.KillAttempts, 5)

	setDefault(&c.Health.FailureThreshold, 20)
	setDefault(&c.Health.SustainedSeconds, 600)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Load reads config/fo76bot.yaml into Bot, creating it from the template on first run.
func Load() error {
	cfgMux.Lock()
	defer cfgMux.Unlock()

	if _, err := os.Getwd(); err != nil {
		return fmt.Errorf("error getting current working directory: %w", err)
	}

	path := getAbsPath(filepath.Join(configDir, configFile))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = CreateFromTemplate(); err != nil {
			return err
		}
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		return err
	}
	if err = applyEnv(cfg); err != nil {
		return err
	}
	sanitizeDiscordConfig(cfg)
	sanitizeTelegramConfig(cfg)

	Bot = cfg
	return nil
}

// LoadFrom decodes a config file and applies defaults. The global Bot is untouched.
func LoadFrom(path string) (*BotCfg, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", filepath.Base(path), err)
	}
	defer r.Close()

	cfg := &BotCfg{}
	d := yaml.NewDecoder(r)
	if err = d.Decode(cfg); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// Current returns a copy of the loaded config.
func Current() BotCfg {
	cfgMux.RLock()
	defer cfgMux.RUnlock()
	if Bot == nil {
		cfg := BotCfg{}
		cfg.ApplyDefaults()
		return cfg
	}
	return *Bot
}

// CreateFromTemplate copies config/template into config.
func CreateFromTemplate() error {
	src := getAbsPath(filepath.Join(configDir, templateDir))
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return fmt.Errorf("config template %s not found: %w", src, ErrInvalidPath)
	}

	if err := cp.Copy(src, getAbsPath(configDir)); err != nil {
		return fmt.Errorf("error copying template: %w", err)
	}

	return nil
}

// Validate checks the paths the bot cannot run without.
func (c *BotCfg) Validate() error {
	if c.GamePath == "" {
		return fmt.Errorf("gamePath is empty: %w", ErrInvalidPath)
	}
	if _, err := os.Stat(c.GamePath); err != nil {
		return fmt.Errorf("gamePath %q: %w", c.GamePath, ErrInvalidPath)
	}
	if c.IconsPath != "" {
		if st, err := os.Stat(c.IconsPath); err != nil || !st.IsDir() {
			return fmt.Errorf("iconsPath %q: %w", c.IconsPath, ErrInvalidPath)
		}
	}
	return nil
}

func ValidateAndSaveConfig(cfg BotCfg) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	sanitizeDiscordConfig(&cfg)

	if err := SaveTo(getAbsPath(filepath.Join(configDir, configFile)), &cfg); err != nil {
		return err
	}

	return Load()
}

// SaveTo writes cfg as yaml without reloading.
func SaveTo(path string, cfg *BotCfg) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	text, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	if err = os.WriteFile(path, text, 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}

// SaveDisplay records the display geometry in the loaded config and persists it.
func SaveDisplay(d DisplayCfg) error {
	cfgMux.Lock()
	defer cfgMux.Unlock()
	if Bot == nil {
		return errors.New("config not loaded")
	}
	Bot.Display = d

	return SaveTo(getAbsPath(filepath.Join(configDir, configFile)), Bot)
}

func sanitizeDiscordConfig(cfg *BotCfg) {
	if !cfg.Discord.Enabled {
		return
	}
	webhookURL := strings.TrimSpace(cfg.Discord.WebhookURL)
	token := strings.TrimSpace(cfg.Discord.Token)
	channelID := strings.TrimSpace(cfg.Discord.ChannelID)

	if (cfg.Discord.UseWebhook && webhookURL == "") || (!cfg.Discord.UseWebhook && (token == "" || channelID == "")) {
		cfg.Discord.Enabled = false
	}
}

func sanitizeTelegramConfig(cfg *BotCfg) {
	if cfg.Telegram.Enabled && (strings.TrimSpace(cfg.Telegram.Token) == "" || cfg.Telegram.ChatID == 0) {
		cfg.Telegram.Enabled = false
	}
}

func getAbsPath(relPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return relPath
	}
	return filepath.Join(cwd, relPath)
}

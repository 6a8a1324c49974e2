package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"time"

	sloggger "github.com/fo76bot/fo76bot/cmd/fo76bot/log"
	"github.com/fo76bot/fo76bot/internal/action"
	"github.com/fo76bot/fo76bot/internal/bot"
	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/decision"
	"github.com/fo76bot/fo76bot/internal/event"
	"github.com/fo76bot/fo76bot/internal/game"
	"github.com/fo76bot/fo76bot/internal/health"
	"github.com/fo76bot/fo76bot/internal/perception"
	"github.com/fo76bot/fo76bot/internal/remote/discord"
	ngrokremote "github.com/fo76bot/fo76bot/internal/remote/ngrok"
	"github.com/fo76bot/fo76bot/internal/remote/telegram"
	"github.com/fo76bot/fo76bot/internal/server"
	"github.com/fo76bot/fo76bot/internal/ui"
	"github.com/fo76bot/fo76bot/internal/utils"
	"github.com/fo76bot/fo76bot/internal/vision"
	"golang.org/x/sync/errgroup"
)

var (
	buildID   string
	buildTime string
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				err = fmt.Errorf("panic recovered: %v", r)
				logger.Error(fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace))
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func main() {
	err := config.Load()
	if err != nil {
		utils.ShowDialog("Error loading configuration", err.Error())
		log.Fatalf("Error loading configuration: %s", err.Error())
		return
	}
	cfg := config.Current()
	if err = cfg.Validate(); err != nil {
		utils.ShowDialog("Invalid configuration", err.Error())
		log.Fatalf("Invalid configuration: %s", err.Error())
		return
	}

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory)
	if err != nil {
		log.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error detected, fo76bot will close with the following error: %v\n Stacktrace: %s", r, debug.Stack())
			logger.Error(err.Error())
			sloggger.FlushAndClose()
			utils.ShowDialog("fo76bot error", fmt.Sprintf("fo76bot will close due to an unexpected error, please check the latest log file for more info!\n %s", err.Error()))
		}
	}()

	logger.Info("Starting fo76bot", slog.String("version", config.Version), slog.String("build", buildID), slog.String("buildTime", buildTime))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// Coordinates are physical pixels only when the process is DPI aware
	game.SetDPIAware()

	eventListener := event.NewListener(logger)

	window := game.NewWindow(logger, game.WindowTitles...)
	hid := game.NewHID(window, logger)
	screen := game.NewScreen(window)
	process := game.NewProcess(cfg.GamePath, logger)

	ocr, err := vision.NewTesseract(cfg.TessdataPath)
	if err != nil {
		logger.Error("Error starting OCR", slog.Any("error", err))
		utils.ShowDialog("Error starting OCR", err.Error())
		return
	}
	defer ocr.Close()

	matcher := vision.NewMatcher(screen, ui.TextRegion(), logger)
	defer matcher.Close()

	p := cfg.Perception
	textReader := perception.NewTextReader(screen, hid, vision.NewTextFilter(), ocr, perception.TextReaderOptions{
		Park:       ui.IdleCursor(),
		Tolerance:  p.MotionTolerance,
		NudgeCount: p.NudgeCount,
		NudgeStep:  p.NudgeStep,
		NudgeDelay: time.Duration(p.NudgeDelayMs) * time.Millisecond,
	}, utils.Sleep)

	registry := perception.NewRegistry(cfg.IconsPath, p.Confidence)
	aggregator := perception.NewAggregator(registry, matcher, textReader, ui.TextRegion(), p.MotionCancel, logger)

	engine, err := decision.NewEngine(cfg.Decision.BadEventRule, logger)
	if err != nil {
		logger.Error("Invalid decision rule", slog.Any("error", err))
		utils.ShowDialog("Invalid decision rule", err.Error())
		return
	}

	frames := vision.NewFrameSaver(screen, ui.TextRegion(), filepath.Join(cfg.LogSaveDirectory, "screenshots"), logger)

	handlers := action.New(aggregator, hid, cfg.Action, logger, utils.Sleep)
	if cfg.Debug.Screenshots {
		handlers.SetDebugCapture(frames.Save)
	}

	monitor := health.NewFailureMonitor(logger, cfg.Health.FailureThreshold, time.Duration(cfg.Health.SustainedSeconds)*time.Second)
	if !cfg.Health.Enabled {
		monitor.Disable()
	}

	b := bot.NewBot(cfg.Name, aggregator, engine, handlers, monitor, frames, logger)
	supervisor := bot.NewSupervisor(cfg.Name, b, process, window, cfg.Supervisor, logger, utils.Sleep)
	if cfg.PrefsPath != "" {
		supervisor.SetDisplayFixer(func() (bool, error) {
			changed, err := config.EnsureDisplayPrefs(cfg.PrefsPath, config.RequiredDisplay)
			if err != nil || !changed {
				return changed, err
			}
			if err = config.SaveDisplay(config.RequiredDisplay); err != nil {
				logger.Warn("Couldn't record display settings in config", slog.Any("error", err))
			}
			return true, nil
		})
	} else {
		logger.Warn("prefsPath not set, game display settings won't be checked")
	}

	srv := server.New(logger, supervisor)

	if cfg.Ngrok.Enabled {
		if cfg.Ngrok.Authtoken == "" {
			logger.Warn("ngrok enabled but no authtoken set; skipping tunnel start")
		} else {
			opts := ngrokremote.Options{
				LocalAddr:     fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
				Authtoken:     cfg.Ngrok.Authtoken,
				Region:        cfg.Ngrok.Region,
				Domain:        cfg.Ngrok.Domain,
				BasicAuthUser: cfg.Ngrok.BasicAuthUser,
				BasicAuthPass: cfg.Ngrok.BasicAuthPass,
			}
			g.Go(wrapWithRecover(logger, func() error {
				err := ngrokremote.Serve(ctx, opts, logger, func(url string) {
					if cfg.Ngrok.SendURL {
						event.Send(event.NgrokTunnel(url))
					}
				})
				if err != nil {
					logger.Error("ngrok tunnel failed to start", slog.Any("error", err))
				}
				return nil
			}))
		}
	}

	// Discord Bot initialization
	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(
			cfg.Discord.Token,
			cfg.Discord.ChannelID,
			supervisor,
			cfg.Discord.UseWebhook,
			cfg.Discord.WebhookURL,
		)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(discordBot.Handle)
			if !cfg.Discord.UseWebhook {
				g.Go(wrapWithRecover(logger, func() error {
					return discordBot.Start(ctx)
				}))
			}
		}
	}

	// Telegram Bot initialization
	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, supervisor, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(telegramBot.Handle)
			g.Go(wrapWithRecover(logger, func() error {
				defer telegramBot.Close()
				return telegramBot.Start(ctx)
			}))
		}
	}

	g.Go(wrapWithRecover(logger, func() error {
		return srv.Listen(ctx, cfg.Server.Port)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		return supervisor.Start(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-ctx.Done()
		logger.Info("fo76bot shutting down...")
		if err := srv.Stop(); err != nil {
			logger.Error("error stopping local server", slog.Any("error", err))
		}
		return nil
	}))

	err = g.Wait()
	if err != nil {
		logger.Error("Error running fo76bot", slog.Any("error", err))
		sloggger.FlushLog()
		utils.ShowDialog("fo76bot stopped", err.Error())
		return
	}

	sloggger.FlushAndClose()
}

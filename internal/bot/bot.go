package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/iconidentify/tubegrab/internal/config"
)

// App wraps the Telegram bot lifecycle: construction, handler registration,
// long polling and shutdown.
type App struct {
	bot    *tele.Bot
	logger *slog.Logger
}

// NewApp creates the Telegram bot and registers all handlers.
func NewApp(cfg config.BotConfig, handlers *Handlers, logger *slog.Logger) (*App, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
	})
	if err != nil {
		return nil, err
	}

	handlers.attach(b)
	handlers.Register(b)

	return &App{bot: b, logger: logger}, nil
}

// Bot exposes the underlying telebot instance.
func (a *App) Bot() *tele.Bot {
	return a.bot
}

// Start begins long polling. Blocks until Stop is called.
func (a *App) Start() {
	a.logger.Info("bot polling started")
	a.bot.Start()
}

// Stop terminates long polling.
func (a *App) Stop() {
	a.bot.Stop()
	a.logger.Info("bot polling stopped")
}

// Package bot implements the Telegram transport: the reply-keyboard
// menu, the conversation handlers, and broadcast message delivery
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/sig-0/exchbot/broadcast"
	"github.com/sig-0/exchbot/convert"
	"github.com/sig-0/exchbot/refresh"
	"github.com/sig-0/exchbot/storage"
)

const (
	pollingTimeout = 10 * time.Second

	// Hard bound on a single handler's storage / refresh work
	handlerTimeout = 30 * time.Second
)

var errMissingToken = errors.New("missing bot token")

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Bot is the Telegram-facing assistant
type Bot struct {
	client     *tb.Bot
	store      storage.Storage
	engine     *convert.Engine
	refresher  *refresh.Refresher
	dispatcher *broadcast.Dispatcher
	states     *stateTracker
	logger     *slog.Logger
	menu       *tb.ReplyMarkup

	baseCtx context.Context
}

// Option is a Bot configuration callback
type Option func(b *Bot)

// WithLogger specifies the logger for the bot
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = l
	}
}

// New creates a new Telegram bot on top of the given storage
// and refresher
func New(
	token string,
	store storage.Storage,
	refresher *refresh.Refresher,
	opts ...Option,
) (*Bot, error) {
	if token == "" {
		return nil, errMissingToken
	}

	client, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: pollingTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create telegram client: %w", err)
	}

	b := &Bot{
		client:    client,
		store:     store,
		engine:    convert.NewEngine(store),
		refresher: refresher,
		states:    newStateTracker(),
		logger:    noopLogger,
		baseCtx:   context.Background(),
	}

	for _, opt := range opts {
		opt(b)
	}

	// The bot delivers its own broadcasts
	b.dispatcher = broadcast.NewDispatcher(b, broadcast.WithLogger(b.logger))

	b.setupMenu()
	b.registerHandlers()

	return b, nil
}

// setupMenu configures the reply keyboard layout
func (b *Bot) setupMenu() {
	b.menu = &tb.ReplyMarkup{ResizeReplyKeyboard: true}

	b.menu.Reply(
		b.menu.Row(b.menu.Text(btnRates), b.menu.Text(btnCalculator)),
		b.menu.Row(b.menu.Text(btnAddAd), b.menu.Text(btnListAds)),
		b.menu.Row(b.menu.Text(btnRefresh), b.menu.Text(btnChat)),
	)
}

// registerHandlers registers all menu and text handlers
func (b *Bot) registerHandlers() {
	b.client.Handle("/start", b.StartHandle)
	b.client.Handle(btnRates, b.RatesHandle)
	b.client.Handle(btnCalculator, b.CalculatorHandle)
	b.client.Handle(btnAddAd, b.AddAdHandle)
	b.client.Handle(btnListAds, b.ListAdsHandle)
	b.client.Handle(btnRefresh, b.RefreshHandle)
	b.client.Handle(btnChat, b.ChatHandle)
	b.client.Handle(tb.OnText, b.TextHandle)
}

// Start starts the bot's long-polling loop [BLOCKING]
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctx

	go func() {
		<-ctx.Done()

		b.logger.Info("bot to be shutdown")
		b.client.Stop()
	}()

	b.logger.Info("bot started")
	b.client.Start()

	return nil
}

// Send delivers a single message to a single recipient.
// Satisfies the broadcast Sender
func (b *Bot) Send(_ context.Context, userID int64, message string) error {
	if _, err := b.client.Send(tb.ChatID(userID), message); err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}

	return nil
}

// handlerCtx derives the bounded context for a single handler run
func (b *Bot) handlerCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.baseCtx, handlerTimeout)
}

// reply sends a response to the message sender, logging delivery errors
func (b *Bot) reply(m *tb.Message, text string, options ...any) {
	if _, err := b.client.Send(m.Sender, text, options...); err != nil {
		b.logger.Error(
			"unable to send reply",
			"recipient", m.Sender.ID,
			"err", err,
		)
	}
}

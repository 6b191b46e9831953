package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/sig-0/exchbot/convert"
	"github.com/sig-0/exchbot/refresh"
	"github.com/sig-0/exchbot/storage/types"
)

// Menu button labels
const (
	btnRates      = "📈 Курсы"
	btnCalculator = "🧮 Калькулятор"
	btnAddAd      = "📝 Добавить объявление"
	btnListAds    = "📋 Объявления"
	btnRefresh    = "🔄 Обновить курсы"
	btnChat       = "💬 Чат"
)

// User-facing responses
const (
	msgWelcome       = "Привет! Это бот для обмена и курсов."
	msgNoRates       = "Курсы ещё не установлены."
	msgCalcPrompt    = "Введи в формате:\nMosca USDT 1000"
	msgAdPrompt      = "Введи текст объявления"
	msgAdSaved       = "Объявление сохранено"
	msgNoAds         = "Пусто."
	msgChatPrompt    = "Введи сообщение, оно будет разослано всем."
	msgNoPermission  = "У вас нет прав."
	msgNoPlatform    = "Нет данных."
	msgBadCurrency   = "Неверная валюта."
	msgBadAmount     = "Неверная сумма."
	msgInternalError = "Что-то пошло не так, попробуй ещё раз."
)

// StartHandle registers the sender and shows the menu.
// Registration is idempotent; returning users just get the greeting
func (b *Bot) StartHandle(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	if err := b.store.RegisterUser(ctx, m.Sender.ID); err != nil {
		b.logger.Error(
			"unable to register user",
			"user", m.Sender.ID,
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	b.reply(m, msgWelcome, b.menu)
}

// RatesHandle renders all stored quotes
func (b *Bot) RatesHandle(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	quotes, err := b.store.ListQuotes(ctx)
	if err != nil {
		b.logger.Error(
			"unable to fetch quotes",
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	if len(quotes) == 0 {
		b.reply(m, msgNoRates)

		return
	}

	b.reply(m, formatQuotes(quotes))
}

// CalculatorHandle prompts the conversion query format
func (b *Bot) CalculatorHandle(m *tb.Message) {
	b.states.set(m.Sender.ID, stateIdle)

	b.reply(m, msgCalcPrompt)
}

// AddAdHandle moves the sender into the awaiting-ad state
func (b *Bot) AddAdHandle(m *tb.Message) {
	b.states.set(m.Sender.ID, stateAwaitingAd)

	b.reply(m, msgAdPrompt)
}

// ListAdsHandle renders all stored ads in insertion order
func (b *Bot) ListAdsHandle(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	ads, err := b.store.ListAds(ctx)
	if err != nil {
		b.logger.Error(
			"unable to fetch ads",
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	if len(ads) == 0 {
		b.reply(m, msgNoAds)

		return
	}

	b.reply(m, formatAds(ads))
}

// RefreshHandle runs a refresh cycle on behalf of the sender.
// Only the configured operator passes the gate
func (b *Bot) RefreshHandle(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	report, err := b.refresher.Refresh(ctx, m.Sender.ID)
	if err != nil {
		if errors.Is(err, refresh.ErrPermissionDenied) {
			b.reply(m, msgNoPermission)

			return
		}

		b.logger.Error(
			"unable to refresh rates",
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	b.reply(m, formatRefreshReport(report))
}

// ChatHandle moves the sender into the awaiting-broadcast state
func (b *Bot) ChatHandle(m *tb.Message) {
	b.states.set(m.Sender.ID, stateAwaitingBroadcast)

	b.reply(m, msgChatPrompt)
}

// TextHandle resolves free-text messages: a pending ad or broadcast
// submission first, a conversion query otherwise
func (b *Bot) TextHandle(m *tb.Message) {
	switch b.states.resolve(m.Sender.ID) {
	case stateAwaitingAd:
		b.saveAd(m)
	case stateAwaitingBroadcast:
		b.broadcastMessage(m)
	default:
		b.answerConversion(m)
	}
}

// saveAd stores the message text as a classified ad
func (b *Bot) saveAd(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	if _, err := b.store.AppendAd(ctx, m.Text); err != nil {
		b.logger.Error(
			"unable to save ad",
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	b.reply(m, msgAdSaved)
}

// broadcastMessage fans the message text out to all registered users
func (b *Bot) broadcastMessage(m *tb.Message) {
	ctx, cancel := b.handlerCtx()
	defer cancel()

	users, err := b.store.ListUsers(ctx)
	if err != nil {
		b.logger.Error(
			"unable to fetch users",
			"err", err,
		)

		b.reply(m, msgInternalError)

		return
	}

	message := fmt.Sprintf("%s: %s", m.Sender.FirstName, m.Text)

	report := b.dispatcher.Dispatch(ctx, message, users)

	b.reply(
		m,
		fmt.Sprintf(
			"Доставлено: %d, не доставлено: %d",
			report.Delivered,
			report.Failed,
		),
	)
}

// answerConversion parses the message as a "<Platform> <CUR> <amount>"
// query and replies with the converted value
func (b *Bot) answerConversion(m *tb.Message) {
	query, ok := parseConversionQuery(m.Text)
	if !ok {
		return // not a conversion query, nothing to do
	}

	amount, err := strconv.ParseFloat(query.amount, 64)
	if err != nil {
		// Caller-side input error, not an engine failure
		b.reply(m, msgBadAmount)

		return
	}

	ctx, cancel := b.handlerCtx()
	defer cancel()

	result, err := b.engine.Convert(ctx, query.platform, query.symbol, amount)

	switch {
	case errors.Is(err, convert.ErrUnknownPlatform):
		b.reply(m, msgNoPlatform)
	case errors.Is(err, convert.ErrUnsupportedCurrency):
		b.reply(m, msgBadCurrency)
	case err != nil:
		b.logger.Error(
			"unable to convert",
			"err", err,
		)

		b.reply(m, msgInternalError)
	default:
		b.reply(
			m,
			fmt.Sprintf(
				"%s %s = %s₽",
				formatRate(result.Amount),
				result.Symbol,
				result.FormatValue(),
			),
		)
	}
}

// conversionQuery is a parsed calculator request
type conversionQuery struct {
	platform string
	symbol   string
	amount   string
}

// parseConversionQuery splits "<Platform> <CUR> <amount>" input
func parseConversionQuery(text string) (conversionQuery, bool) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 3 {
		return conversionQuery{}, false
	}

	return conversionQuery{
		platform: parts[0],
		symbol:   parts[1],
		amount:   parts[2],
	}, true
}

// formatQuotes renders the stored quotes as a rate board
func formatQuotes(quotes []*types.Quote) string {
	var sb strings.Builder

	sb.WriteString("Текущие курсы:\n")

	for _, q := range quotes {
		sb.WriteString(
			fmt.Sprintf(
				"\n%s:\nUSDT: %s₽\nBTC: %s₽\n",
				q.Platform,
				formatRate(q.USDT),
				formatRate(q.BTC),
			),
		)
	}

	return sb.String()
}

// formatRate renders a rate without exponent notation
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatAds renders the stored ads as a numbered listing
func formatAds(ads []*types.Ad) string {
	var sb strings.Builder

	sb.WriteString("Объявления:\n")

	for i, ad := range ads {
		sb.WriteString(
			fmt.Sprintf("%d. %s\n", i+1, ad.Content),
		)
	}

	return sb.String()
}

// formatRefreshReport renders the refresh cycle outcome for
// the operator, calling out degraded and unsaved platforms
func formatRefreshReport(report *refresh.Report) string {
	var sb strings.Builder

	sb.WriteString("Курсы успешно обновлены!")

	if len(report.Degraded) > 0 {
		sb.WriteString(
			fmt.Sprintf(
				"\nБез данных (источник недоступен): %s",
				strings.Join(report.Degraded, ", "),
			),
		)
	}

	if len(report.Failed) > 0 {
		sb.WriteString(
			fmt.Sprintf(
				"\nНе сохранено: %s",
				strings.Join(report.Failed, ", "),
			),
		)
	}

	return sb.String()
}

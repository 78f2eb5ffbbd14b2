package selection

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/filters"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const promoAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newPromoCode случайный код из заглавных латинских букв и цифр.
func newPromoCode() string {
	var b strings.Builder
	b.Grow(models.PromoCodeLength)
	for range models.PromoCodeLength {
		b.WriteByte(promoAlphabet[rand.IntN(len(promoAlphabet))])
	}
	return b.String()
}

func (h *Handler) showPrizes(ctx context.Context, userID, chatID int64, msgID int) {
	l := zerolog.Ctx(ctx)

	_, err := h.repo.GetUserPrize(ctx, userID)
	switch {
	case err == nil:
		h.edit(chatID, msgID, textPrizeTaken, nil)
		return
	case !errors.Is(err, database.ErrNotFound):
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to check user prize")
		h.edit(chatID, msgID, textPrizeError, nil)
		return
	}

	prizes, err := h.repo.ListPrizes(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list prizes")
		h.edit(chatID, msgID, textPrizeError, nil)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(prizes)+1)
	for _, p := range prizes {
		rows = append(rows, bot.DataRow(p.Name, bot.DataID(bot.ActionPrize, p.ID)))
	}
	rows = append(rows, bot.URLRow(textContactManager, h.cfg.Selection.WhatsAppLink))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.edit(chatID, msgID, textChoosePrize, &kb)
}

// choosePrize выдает приз. Повторный выбор отклоняется базой.
func (h *Handler) choosePrize(ctx context.Context, from *tgbotapi.User, chatID int64, msgID int, prizeID int64) {
	l := zerolog.Ctx(ctx)

	prizes, err := h.repo.ListPrizes(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list prizes")
		h.edit(chatID, msgID, textPrizeError, nil)
		return
	}
	var prize *models.Prize
	for i := range prizes {
		if prizes[i].ID == prizeID {
			prize = &prizes[i]
			break
		}
	}
	if prize == nil {
		h.edit(chatID, msgID, textPrizeUnavailable, nil)
		return
	}

	user, err := h.repo.GetUser(ctx, from.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.edit(chatID, msgID, textRegisterFirst, nil)
			return
		}
		l.Error().Err(err).Int64("user_id", from.ID).Msg("failed to get user")
		h.edit(chatID, msgID, textPrizeError, nil)
		return
	}

	won, err := h.repo.AssignPrize(ctx, from.ID, prize.ID, newPromoCode())
	if err != nil {
		if errors.Is(err, database.ErrPrizeAlreadyAssigned) {
			h.edit(chatID, msgID, textPrizeTaken, nil)
			return
		}
		l.Error().Err(err).Int64("user_id", from.ID).Msg("failed to assign prize")
		h.edit(chatID, msgID, textPrizeError, nil)
		return
	}
	l.Info().Int64("user_id", from.ID).Int64("prize_id", prize.ID).Msg("prize assigned")

	prefs, err := h.repo.LatestPreferences(ctx, from.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		l.Warn().Err(err).Int64("user_id", from.ID).Msg("failed to load preferences")
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		bot.URLRow(textViewAll, filters.BuildURL(h.cfg.Catalog.BaseURL, prefs)),
	)
	name := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, user.DisplayName())
	h.editMarkdown(chatID, msgID, fmt.Sprintf(textPrizeWon, name, won.PrizeName, won.PromoCode), &kb)
	h.sendMainMenu(chatID, textNextAction)
}

func (h *Handler) showMyPrizes(ctx context.Context, userID, chatID int64, msgID int) {
	l := zerolog.Ctx(ctx)

	if _, err := h.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.edit(chatID, msgID, textRegisterFirst, nil)
			return
		}
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
		h.edit(chatID, msgID, textMyPrizesError, nil)
		return
	}

	prizes, err := h.repo.ListUserPrizes(ctx, userID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to list user prizes")
		h.edit(chatID, msgID, textMyPrizesError, nil)
		return
	}
	if len(prizes) == 0 {
		h.edit(chatID, msgID, textNoPrizes, nil)
		return
	}

	var b strings.Builder
	b.WriteString("🎁 *Ваши призы:*\n\n")
	for _, p := range prizes {
		fmt.Fprintf(&b, textPrizeItem, p.PrizeName, p.PromoCode, p.WonAt.In(h.loc).Format("02.01.2006"))
	}
	h.editMarkdown(chatID, msgID, strings.TrimRight(b.String(), "\n"), nil)
}

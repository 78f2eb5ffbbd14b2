package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Источники просмотра каталога.
const (
	sourceAll       = "all"
	sourceFavorites = "favorites"
)

func (h *Handler) browseAll(ctx context.Context, msg *tgbotapi.Message) {
	ads, err := h.repo.ListAds(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list ads")
		h.reply(msg.Chat.ID, textAdsError)
		return
	}
	if len(ads) == 0 {
		h.reply(msg.Chat.ID, textNoAds)
		return
	}
	h.startBrowse(ctx, msg.From.ID, msg.Chat.ID, sourceAll, ads)
}

func (h *Handler) browseFavorites(ctx context.Context, msg *tgbotapi.Message) {
	ads, err := h.repo.ListFavoriteAds(ctx, msg.From.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to list favorites")
		h.reply(msg.Chat.ID, textFavoritesError)
		return
	}
	if len(ads) == 0 {
		h.reply(msg.Chat.ID, textNoFavorites)
		return
	}
	h.startBrowse(ctx, msg.From.ID, msg.Chat.ID, sourceFavorites, ads)
}

func (h *Handler) startBrowse(ctx context.Context, userID, chatID int64, source string, ads []*models.Ad) {
	browse := &models.BrowseState{Source: source, AdIDs: make([]int64, 0, len(ads))}
	for _, ad := range ads {
		browse.AdIDs = append(browse.AdIDs, ad.ID)
	}
	if err := h.sessions.SetBrowse(ctx, userID, browse); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to save browse state")
		h.reply(chatID, bot.ErrorMessage(err))
		return
	}

	ad := ads[0]
	kb := h.cardKeyboard(ctx, userID, ad, browse)
	var err error
	if len(ad.Photos) > 0 {
		_, err = h.tg.SendPhoto(chatID, ad.Photos[0], ad.Caption(), &kb)
	} else {
		_, err = h.tg.SendWithInlineKeyboard(chatID, ad.Caption(), kb)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("ad_id", ad.ID).Msg("failed to send ad card")
	}
}

// cardKeyboard кнопки карточки. Навигация показывается только на текущей карточке курсора.
func (h *Handler) cardKeyboard(ctx context.Context, userID int64, ad *models.Ad, browse *models.BrowseState) tgbotapi.InlineKeyboardMarkup {
	fav, err := h.repo.IsFavorite(ctx, userID, ad.ID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("ad_id", ad.ID).Msg("failed to check favorite")
	}
	favButton := tgbotapi.NewInlineKeyboardButtonData(btnAddFavorite, bot.DataID(bot.ActionAddFavorite, ad.ID))
	if fav {
		favButton = tgbotapi.NewInlineKeyboardButtonData(btnRemoveFavorite, bot.DataID(bot.ActionRemoveFavorite, ad.ID))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnBuy, bot.DataID(bot.ActionBuy, ad.ID)),
			tgbotapi.NewInlineKeyboardButtonData(btnDiscount, bot.DataID(bot.ActionDiscount, ad.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnDescription, bot.DataID(bot.ActionDescription, ad.ID)),
			tgbotapi.NewInlineKeyboardButtonData(btnInspection, bot.DataID(bot.ActionInspection, ad.ID)),
			tgbotapi.NewInlineKeyboardButtonData(btnThickness, bot.DataID(bot.ActionThickness, ad.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(favButton),
		bot.DataRow(btnShowPhotos, bot.DataID(bot.ActionShowPhotos, ad.ID)),
	}

	if current, ok := browse.Current(); ok && current == ad.ID {
		var nav []tgbotapi.InlineKeyboardButton
		if browse.HasPrev() {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnPrev, bot.Data(bot.ActionPrevAd)))
		}
		if browse.HasNext() {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnNext, bot.Data(bot.ActionNextAd)))
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// editCard перерисовывает карточку в сообщении, на кнопку которого нажали.
func (h *Handler) editCard(ctx context.Context, cb *tgbotapi.CallbackQuery, ad *models.Ad, browse *models.BrowseState) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	kb := h.cardKeyboard(ctx, cb.From.ID, ad, browse)

	var err error
	if len(ad.Photos) > 0 {
		err = h.tg.EditPhoto(chatID, msgID, ad.Photos[0], ad.Caption(), &kb)
	} else {
		_, err = h.tg.EditMessage(chatID, msgID, ad.Caption(), &kb)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("ad_id", ad.ID).Msg("failed to edit ad card")
	}
}

func (h *Handler) navigate(ctx context.Context, cb *tgbotapi.CallbackQuery, forward bool) {
	l := zerolog.Ctx(ctx)
	userID := cb.From.ID

	state, err := h.sessions.Get(ctx, userID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to load session")
		h.alert(cb, textGenericError)
		return
	}
	browse := state.Browse
	if _, ok := browse.Current(); !ok {
		h.answer(cb, textNothingToShow)
		return
	}

	switch {
	case forward && browse.HasNext():
		browse.Index++
	case !forward && browse.HasPrev():
		browse.Index--
	default:
		h.answer(cb, textNoMoreAds)
		return
	}
	if err := h.sessions.SetBrowse(ctx, userID, browse); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to save browse state")
		h.alert(cb, textGenericError)
		return
	}

	id, _ := browse.Current()
	ad, ok := h.loadAd(ctx, cb, id)
	if !ok {
		return
	}
	h.editCard(ctx, cb, ad, browse)
	h.answer(cb, "")
}

// loadAd загружает объявление; при ошибке сам отвечает на нажатие.
func (h *Handler) loadAd(ctx context.Context, cb *tgbotapi.CallbackQuery, id int64) (*models.Ad, bool) {
	ad, err := h.repo.GetAd(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		h.answer(cb, textAdNotFound)
		return nil, false
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("ad_id", id).Msg("failed to get ad")
		h.alert(cb, textAdLoadError)
		return nil, false
	}
	return ad, true
}

func (h *Handler) toggleFavorite(ctx context.Context, cb *tgbotapi.CallbackQuery, adID int64, add bool) {
	l := zerolog.Ctx(ctx)
	userID := cb.From.ID

	ad, ok := h.loadAd(ctx, cb, adID)
	if !ok {
		return
	}

	if add {
		if err := h.repo.AddFavorite(ctx, userID, adID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Int64("ad_id", adID).Msg("failed to add favorite")
			h.alert(cb, textFavoriteAddError)
			return
		}
	} else {
		if err := h.repo.RemoveFavorite(ctx, userID, adID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Int64("ad_id", adID).Msg("failed to remove favorite")
			h.alert(cb, textFavoriteDelError)
			return
		}
	}

	var browse *models.BrowseState
	if state, err := h.sessions.Get(ctx, userID); err == nil {
		browse = state.Browse
	}
	h.editCard(ctx, cb, ad, browse)

	if add {
		h.answer(cb, textFavoriteAdded)
	} else {
		h.answer(cb, textFavoriteRemoved)
	}
}

// showDetails отправляет описание или альбом фото объявления.
func (h *Handler) showDetails(ctx context.Context, cb *tgbotapi.CallbackQuery, action bot.Action) {
	ad, ok := h.loadAd(ctx, cb, action.ID)
	if !ok {
		return
	}
	chatID := cb.Message.Chat.ID

	switch action.Kind {
	case bot.ActionDescription:
		text := ad.Description
		if text == "" {
			text = textNoDescription
		}
		h.reply(chatID, text)
		h.answer(cb, "")
	case bot.ActionShowPhotos:
		h.sendAlbum(ctx, cb, ad.Photos, fmt.Sprintf(textAllPhotos, ad.Title), textNoExtraPhotos)
	case bot.ActionInspection:
		h.sendAlbum(ctx, cb, ad.InspectionPhotos, fmt.Sprintf(textInspection, ad.Title), textNoInspection)
	case bot.ActionThickness:
		h.sendAlbum(ctx, cb, ad.ThicknessPhotos, fmt.Sprintf(textThickness, ad.Title), textNoThickness)
	}
}

func (h *Handler) sendAlbum(ctx context.Context, cb *tgbotapi.CallbackQuery, photos []string, caption, empty string) {
	if len(photos) == 0 {
		h.answer(cb, empty)
		return
	}
	if err := h.tg.SendMediaGroup(cb.Message.Chat.ID, photos, caption); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("photos", len(photos)).Msg("failed to send album")
		h.alert(cb, textPhotosSendError)
		return
	}
	h.answer(cb, "")
}

// requestBuy передает менеджерам контакт пользователя и название автомобиля.
func (h *Handler) requestBuy(ctx context.Context, cb *tgbotapi.CallbackQuery, adID int64) {
	ad, ok := h.loadAd(ctx, cb, adID)
	if !ok {
		return
	}
	user := h.findUser(ctx, cb.From.ID)
	text := fmt.Sprintf(textBuyRequest, orNotSpecified(user.Name), orNotSpecified(user.Phone), orNotSpecified(user.City), ad.Title)
	h.notifyManagers(ctx, "buy", text, nil)

	h.reply(cb.Message.Chat.ID, textRequestSent)
	h.answer(cb, "")
	zerolog.Ctx(ctx).Info().Int64("user_id", cb.From.ID).Int64("ad_id", adID).Msg("buy request sent")
}

func (h *Handler) requestDiscount(ctx context.Context, cb *tgbotapi.CallbackQuery, adID int64) {
	ad, ok := h.loadAd(ctx, cb, adID)
	if !ok {
		return
	}
	h.startWizard(ctx, cb.From.ID, cb.Message.Chat.ID, wizard.KindDiscount, map[string]string{
		wizard.FieldAdID:     strconv.FormatInt(ad.ID, 10),
		wizard.FieldMinPrice: strconv.FormatInt(ad.MinDiscountPrice(), 10),
	})
	h.answer(cb, "")
}

func (h *Handler) completeDiscount(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	adID, _ := res.State.Int64Field(wizard.FieldAdID)
	price, _ := res.State.Int64Field(wizard.FieldDesiredPrice)

	ad, err := h.repo.GetAd(ctx, adID)
	if err != nil {
		l.Error().Err(err).Int64("ad_id", adID).Msg("failed to get ad for discount")
		if errors.Is(err, database.ErrNotFound) {
			// объявление удалили, пока шел мастер
			h.sendMainMenu(msg.Chat.ID, msg.From.ID, textAdNotFound)
			return completionAbort
		}
		h.reply(msg.Chat.ID, textAdLoadError)
		return completionRetry
	}

	user := h.findUser(ctx, msg.From.ID)
	text := fmt.Sprintf(textDiscountRequest,
		orNotSpecified(user.Name), orNotSpecified(user.Phone), orNotSpecified(user.City), ad.Title, price)
	h.notifyManagers(ctx, "discount", text, nil)

	h.sendMainMenu(msg.Chat.ID, msg.From.ID, res.Done)
	l.Info().Int64("user_id", msg.From.ID).Int64("ad_id", adID).Int64("price", price).Msg("discount request sent")
	return completionDone
}

// findUser возвращает сохраненного пользователя или пустую запись.
func (h *Handler) findUser(ctx context.Context, userID int64) *models.User {
	user, err := h.repo.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("failed to get user")
		}
		return &models.User{ID: userID}
	}
	return user
}

// notifyManagers рассылает заявку всем менеджерам и возвращает число доставленных.
func (h *Handler) notifyManagers(ctx context.Context, kind, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	delivered := 0
	for _, managerID := range h.users.ManagerIDs() {
		var err error
		if kb != nil {
			_, err = h.tg.SendWithInlineKeyboard(managerID, text, *kb)
		} else {
			err = h.tg.SendText(managerID, text)
		}
		h.metrics.Notification(kind, err)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("manager_id", managerID).Str("kind", kind).Msg("failed to notify manager")
			continue
		}
		delivered++
	}
	return delivered
}

func orNotSpecified(v string) string {
	if v == "" {
		return textNotSpecified
	}
	return v
}

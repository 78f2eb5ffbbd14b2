package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction данные кнопки не соответствуют ни одному действию.
var ErrUnknownAction = errors.New("unknown action")

// ActionKind закрытый набор действий, которые кодируются в данных inline-кнопок.
type ActionKind int

const (
	ActionUnknown ActionKind = iota

	// бот подбора
	ActionSelectCar
	ActionMyPrizes
	ActionSelectPrize
	ActionPrize
	ActionAdminBroadcast
	ActionAdminStats
	ActionAdminExportMenu
	ActionAdminExport

	// бот продаж
	ActionApprove
	ActionReject
	ActionBuy
	ActionDiscount
	ActionDescription
	ActionInspection
	ActionThickness
	ActionAddFavorite
	ActionRemoveFavorite
	ActionShowPhotos
	ActionPrevAd
	ActionNextAd
	ActionDeleteSubscription
	ActionReply
	ActionEditAd
	ActionDeleteAd
)

type argKind int

const (
	argNone argKind = iota
	argID
	argWord
)

type actionSpec struct {
	kind   ActionKind
	prefix string
	arg    argKind
}

var actionSpecs = []actionSpec{
	{ActionSelectCar, "menu:select_car", argNone},
	{ActionMyPrizes, "menu:my_prizes", argNone},
	{ActionSelectPrize, "user:select_prize", argNone},
	{ActionPrize, "user:prize:", argID},
	{ActionAdminBroadcast, "admin:broadcast", argNone},
	{ActionAdminStats, "admin:stats", argNone},
	{ActionAdminExportMenu, "admin:export_contacts", argNone},
	{ActionAdminExport, "admin:export:", argWord},

	{ActionApprove, "approve_", argID},
	{ActionReject, "reject_", argID},
	{ActionBuy, "buy_", argID},
	{ActionDiscount, "discount_", argID},
	{ActionDescription, "description_", argID},
	{ActionInspection, "inspection_", argID},
	{ActionThickness, "thickness_", argID},
	{ActionAddFavorite, "add_fav_", argID},
	{ActionRemoveFavorite, "remove_fav_", argID},
	{ActionShowPhotos, "show_photos_", argID},
	{ActionPrevAd, "prev_ad", argNone},
	{ActionNextAd, "next_ad", argNone},
	{ActionDeleteSubscription, "del_sub_", argID},
	{ActionReply, "reply_", argID},
	{ActionEditAd, "edit_", argID},
	{ActionDeleteAd, "delete_", argID},
}

var specByKind = func() map[ActionKind]actionSpec {
	m := make(map[ActionKind]actionSpec, len(actionSpecs))
	for _, s := range actionSpecs {
		m[s.kind] = s
	}
	return m
}()

// Action разобранные данные кнопки.
type Action struct {
	Kind ActionKind
	// ID аргумент действий вида prefix_<id>.
	ID int64
	// Arg строковый аргумент, например период выгрузки.
	Arg string
}

// DecodeAction разбирает данные кнопки один раз на входе.
func DecodeAction(data string) (Action, error) {
	for _, s := range actionSpecs {
		switch s.arg {
		case argNone:
			if data == s.prefix {
				return Action{Kind: s.kind}, nil
			}
		case argID:
			rest, ok := strings.CutPrefix(data, s.prefix)
			if !ok {
				continue
			}
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil || id <= 0 {
				return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
			}
			return Action{Kind: s.kind, ID: id}, nil
		case argWord:
			rest, ok := strings.CutPrefix(data, s.prefix)
			if !ok {
				continue
			}
			if rest == "" || strings.ContainsAny(rest, ": ") {
				return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
			}
			return Action{Kind: s.kind, Arg: rest}, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

// Encode собирает данные кнопки; DecodeAction(a.Encode()) возвращает a.
func (a Action) Encode() string {
	s, ok := specByKind[a.Kind]
	if !ok {
		return ""
	}
	switch s.arg {
	case argID:
		return s.prefix + strconv.FormatInt(a.ID, 10)
	case argWord:
		return s.prefix + a.Arg
	}
	return s.prefix
}

// Data сокращение для кнопок без аргумента.
func Data(kind ActionKind) string {
	return Action{Kind: kind}.Encode()
}

// DataID сокращение для кнопок с числовым аргументом.
func DataID(kind ActionKind, id int64) string {
	return Action{Kind: kind, ID: id}.Encode()
}

// Package catalog подбирает подписчиков под новое объявление и рассылает им уведомления.
package catalog

import (
	"sort"
	"strings"

	"asterbot/internal/models"
)

// Matches проверяет объявление против критериев подписки.
// Все условия объединяются через И; незаданная граница не ограничивает.
func Matches(ad *models.Ad, sub *models.Subscription) bool {
	if ad == nil || sub == nil {
		return false
	}
	if sub.Model != "" && !strings.Contains(strings.ToLower(ad.Model), strings.ToLower(sub.Model)) {
		return false
	}
	if sub.PriceMin != nil && ad.Price < *sub.PriceMin {
		return false
	}
	if sub.PriceMax != nil && ad.Price > *sub.PriceMax {
		return false
	}
	if sub.YearMin != nil && ad.Year < *sub.YearMin {
		return false
	}
	if sub.YearMax != nil && ad.Year > *sub.YearMax {
		return false
	}
	return true
}

// MatchSubscribers возвращает отсортированный список уникальных пользователей,
// у которых хотя бы одна подписка подходит под объявление.
func MatchSubscribers(ad *models.Ad, subs []*models.Subscription) []int64 {
	seen := make(map[int64]struct{})
	for _, sub := range subs {
		if Matches(ad, sub) {
			seen[sub.UserID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

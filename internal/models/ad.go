package models

import (
	"fmt"
	"time"
)

// Ad объявление о продаже автомобиля.
type Ad struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Model            string    `json:"model"`
	Year             int       `json:"year"`
	Price            int64     `json:"price"`
	Description      string    `json:"description"`
	Photos           []string  `json:"photos"`
	InspectionPhotos []string  `json:"inspection_photos"`
	ThicknessPhotos  []string  `json:"thickness_photos"`
	CreatedAt        time.Time `json:"created_at"`
}

// Caption подпись карточки объявления.
func (a *Ad) Caption() string {
	return fmt.Sprintf("%s\nМодель: %s\nГод выпуска: %d\nЦена: %d KZT", a.Title, a.Model, a.Year, a.Price)
}

// MinDiscountPrice минимальная цена, которую можно запросить (80% от цены).
func (a *Ad) MinDiscountPrice() int64 {
	return a.Price * 8 / 10
}

// Subscription критерии подписки на новые объявления. nil означает "без ограничения".
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Model     string    `json:"model,omitempty"`
	PriceMin  *int64    `json:"price_min,omitempty"`
	PriceMax  *int64    `json:"price_max,omitempty"`
	YearMin   *int      `json:"year_min,omitempty"`
	YearMax   *int      `json:"year_max,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Describe текст карточки подписки в списке "Мои подписки".
func (s *Subscription) Describe() string {
	model := s.Model
	if model == "" {
		model = "Любая"
	}
	return fmt.Sprintf("Модель: %s\nЦена: от %s до %s\nГод: от %s до %s",
		model,
		boundOr(s.PriceMin, "0"), boundOr(s.PriceMax, "∞"),
		intBoundOr(s.YearMin, "0"), intBoundOr(s.YearMax, "∞"),
	)
}

func boundOr(v *int64, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *v)
}

func intBoundOr(v *int, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *v)
}

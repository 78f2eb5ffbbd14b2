package models

import "time"

type Prize struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserPrize выданный пользователю приз акции.
type UserPrize struct {
	UserID    int64     `json:"user_id"`
	PrizeID   int64     `json:"prize_id"`
	PrizeName string    `json:"prize_name"`
	PromoCode string    `json:"promo_code"`
	WonAt     time.Time `json:"won_at"`
}

// DefaultPrizes фиксированный список призов акции "Щедрая пятница".
var DefaultPrizes = []Prize{
	{ID: 1, Name: "Сертификат на полугодовую мойку авто (24 мойки)"},
	{ID: 2, Name: "Сертификат на бесплатный эвакуатор годовой"},
	{ID: 3, Name: "Сертификат на 3 замены масла"},
	{ID: 4, Name: "Годовой сертификат на тех помощь на дороге 24/7"},
	{ID: 5, Name: "Сертификат на секретный приз"},
}

func PrizeByID(id int64) (Prize, bool) {
	for _, p := range DefaultPrizes {
		if p.ID == id {
			return p, true
		}
	}
	return Prize{}, false
}

package wizard

import (
	"fmt"
	"strconv"

	"asterbot/internal/models"
)

// ToContact собирает контакт из завершенного мастера контактов.
func ToContact(st *models.WizardState) models.Contact {
	return models.Contact{
		Name:  st.Field(FieldName),
		Phone: st.Field(FieldPhone),
		City:  st.Field(FieldCity),
	}
}

// ToAd собирает объявление из завершенного мастера объявления.
func ToAd(st *models.WizardState) (*models.Ad, error) {
	year, err := strconv.Atoi(st.Field(FieldYear))
	if err != nil {
		return nil, fmt.Errorf("failed to parse year: %w", err)
	}
	price, ok := st.Int64Field(FieldPrice)
	if !ok {
		return nil, fmt.Errorf("%w: price is missing", ErrInvalidState)
	}

	return &models.Ad{
		Title:            st.Field(FieldTitle),
		Model:            st.Field(FieldModel),
		Year:             year,
		Price:            price,
		Description:      st.Field(FieldDescription),
		Photos:           st.Media[FieldPhotos],
		InspectionPhotos: st.Media[FieldInspectionPhotos],
		ThicknessPhotos:  st.Media[FieldThicknessPhotos],
	}, nil
}

// ToSubscription собирает подписку; пропущенные границы остаются nil.
func ToSubscription(st *models.WizardState, userID int64) *models.Subscription {
	sub := &models.Subscription{UserID: userID, Model: st.Field(FieldModel)}
	if v, ok := st.Int64Field(FieldPriceMin); ok {
		sub.PriceMin = &v
	}
	if v, ok := st.Int64Field(FieldPriceMax); ok {
		sub.PriceMax = &v
	}
	if v, ok := st.Int64Field(FieldYearMin); ok {
		y := int(v)
		sub.YearMin = &y
	}
	if v, ok := st.Int64Field(FieldYearMax); ok {
		y := int(v)
		sub.YearMax = &y
	}
	return sub
}

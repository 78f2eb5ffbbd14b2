package wizard

import (
	"testing"
	"time"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine() *Machine {
	m := New()
	m.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return m
}

// feed прогоняет тексты через мастер и возвращает последний результат.
func feed(t *testing.T, m *Machine, st *models.WizardState, inputs ...Input) Result {
	t.Helper()
	var res Result
	for _, in := range inputs {
		var err error
		res, err = m.Advance(st, in)
		require.NoError(t, err)
		st = res.State
	}
	return res
}

func text(s string) Input { return Input{Text: s} }

func TestStart(t *testing.T) {
	m := newTestMachine()

	t.Run("Unknown", func(t *testing.T) {
		_, _, err := m.Start("nope", nil)
		assert.ErrorIs(t, err, ErrUnknownWizard)
	})

	t.Run("FirstPrompt", func(t *testing.T) {
		st, prompt, err := m.Start(KindSalesContact, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Step)
		assert.Equal(t, "Пожалуйста, введите ваше имя:", prompt)
	})

	t.Run("SkipFilled", func(t *testing.T) {
		st, prompt, err := m.Start(KindSelectionContact, map[string]string{FieldPhone: "7701"})
		require.NoError(t, err)
		assert.Equal(t, 1, st.Step)
		assert.Equal(t, "Как к вам обращаться?", prompt)
	})

	t.Run("AllFilled", func(t *testing.T) {
		_, _, err := m.Start(KindSelectionContact, map[string]string{FieldPhone: "1", FieldName: "a", FieldCity: "b"})
		assert.ErrorIs(t, err, ErrNothingToCollect)
	})
}

func TestSelectionContact(t *testing.T) {
	m := newTestMachine()
	st, _, err := m.Start(KindSelectionContact, nil)
	require.NoError(t, err)

	t.Run("PhoneWithoutDigits", func(t *testing.T) {
		res, err := m.Advance(st, text("нет"))
		require.NoError(t, err)
		assert.Equal(t, Reprompt, res.Outcome)
		assert.Equal(t, 0, res.State.Step)
	})

	res, err := m.Advance(st, text("+7 (701) 123-45-67"))
	require.NoError(t, err)
	assert.Equal(t, Next, res.Outcome)
	assert.Equal(t, FieldPhone, res.Field)
	assert.Equal(t, "77011234567", res.Value)
	assert.Equal(t, []string{"Спасибо!", "Как к вам обращаться?"}, res.Messages)

	res = feed(t, m, res.State, text("Айгерим"))
	assert.Equal(t, []string{"Приятно познакомиться, Айгерим!", "Пожалуйста, укажите ваш город."}, res.Messages)

	res = feed(t, m, res.State, text("Almaty"))
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, []string{"Спасибо! Ваш город: Almaty"}, res.Messages)
	assert.Equal(t, models.Contact{Name: "Айгерим", Phone: "77011234567", City: "Almaty"}, ToContact(res.State))
}

func TestSalesContact_ContactPayload(t *testing.T) {
	m := newTestMachine()
	st, _, _ := m.Start(KindSalesContact, nil)

	res := feed(t, m, st, text("Данияр"), Input{ContactPhone: "+77010000000"}, text("Астана"))
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, "Спасибо! Вы можете пользоваться ботом.", res.Done)
	assert.Equal(t, "+77010000000", res.State.Field(FieldPhone))
}

func TestCancelFromAnyStep(t *testing.T) {
	m := newTestMachine()

	for _, kind := range []string{KindSalesContact, KindAd, KindSubscription, KindDiscount, KindSupport} {
		t.Run(kind, func(t *testing.T) {
			st, _, err := m.Start(kind, map[string]string{FieldMinPrice: "100"})
			require.NoError(t, err)

			res, err := m.Advance(st, text("Отмена"))
			require.NoError(t, err)
			assert.Equal(t, Cancelled, res.Outcome)
			assert.Nil(t, res.State)
			assert.Equal(t, []string{CancelText}, res.Messages)
		})
	}

	t.Run("AfterSeveralFields", func(t *testing.T) {
		st, _, _ := m.Start(KindAd, nil)
		res := feed(t, m, st, text("Toyota Camry"), text("Camry"), text("2020"))
		require.Equal(t, 3, res.State.Step)

		res, err := m.Advance(res.State, text("/cancel"))
		require.NoError(t, err)
		assert.Equal(t, Cancelled, res.Outcome)
		assert.Nil(t, res.State)
	})
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	m := newTestMachine()
	st, _, _ := m.Start(KindSalesContact, nil)

	_, err := m.Advance(st, text("Имя"))
	require.NoError(t, err)
	assert.Equal(t, 0, st.Step)
	assert.Empty(t, st.Field(FieldName))
}

func TestAdWizard(t *testing.T) {
	m := newTestMachine()
	st, _, _ := m.Start(KindAd, nil)
	res := feed(t, m, st, text("Toyota Camry"), text("Camry 2020"))

	t.Run("EmptyText", func(t *testing.T) {
		r, _ := m.Advance(st, text("   "))
		assert.Equal(t, Reprompt, r.Outcome)
	})

	t.Run("YearNotNumber", func(t *testing.T) {
		r, _ := m.Advance(res.State, text("двадцатый"))
		assert.Equal(t, Reprompt, r.Outcome)
		assert.Equal(t, []string{"Пожалуйста, введите числовое значение для года."}, r.Messages)
	})

	t.Run("YearOutOfRange", func(t *testing.T) {
		r, _ := m.Advance(res.State, text("2026"))
		assert.Equal(t, Reprompt, r.Outcome)
		assert.Equal(t, []string{"Пожалуйста, введите год выпуска между 1900 и 2025:"}, r.Messages)

		r, _ = m.Advance(res.State, text("1899"))
		assert.Equal(t, Reprompt, r.Outcome)
	})

	res = feed(t, m, res.State, text("2025"))
	assert.Equal(t, Next, res.Outcome)

	t.Run("PriceNotPositive", func(t *testing.T) {
		r, _ := m.Advance(res.State, text("0"))
		assert.Equal(t, Reprompt, r.Outcome)
		assert.Equal(t, []string{"Цена должна быть положительным числом. Пожалуйста, введите цену:"}, r.Messages)
	})

	res = feed(t, m, res.State, text("12000000"), text("Один владелец"))

	t.Run("DoneWithoutPhotos", func(t *testing.T) {
		r, _ := m.Advance(res.State, text("/done"))
		assert.Equal(t, Reprompt, r.Outcome)
		assert.Equal(t, res.State.Step, r.State.Step)
	})

	res = feed(t, m, res.State, Input{PhotoID: "p1"})
	assert.Equal(t, Collected, res.Outcome)
	res = feed(t, m, res.State, Input{PhotoID: "p2"}, text("/done"))
	assert.Equal(t, Next, res.Outcome)

	res = feed(t, m, res.State, Input{PhotoID: "i1"}, text("/done"), Input{PhotoID: "t1"}, text("/done"))
	require.Equal(t, Completed, res.Outcome)
	assert.Equal(t, "Объявление сохранено.", res.Done)

	ad, err := ToAd(res.State)
	require.NoError(t, err)
	assert.Equal(t, "Toyota Camry", ad.Title)
	assert.Equal(t, "Camry 2020", ad.Model)
	assert.Equal(t, 2025, ad.Year)
	assert.Equal(t, int64(12000000), ad.Price)
	assert.Equal(t, []string{"p1", "p2"}, ad.Photos)
	assert.Equal(t, []string{"i1"}, ad.InspectionPhotos)
	assert.Equal(t, []string{"t1"}, ad.ThicknessPhotos)
}

func TestSubscriptionWizard(t *testing.T) {
	m := newTestMachine()

	t.Run("SkipsBecomeNil", func(t *testing.T) {
		st, _, _ := m.Start(KindSubscription, nil)
		res := feed(t, m, st, text("-"), text("0"), text("15000000"), text("0"), text("0"))
		require.Equal(t, Completed, res.Outcome)

		sub := ToSubscription(res.State, 9)
		assert.Equal(t, int64(9), sub.UserID)
		assert.Empty(t, sub.Model)
		assert.Nil(t, sub.PriceMin)
		require.NotNil(t, sub.PriceMax)
		assert.Equal(t, int64(15000000), *sub.PriceMax)
		assert.Nil(t, sub.YearMin)
		assert.Nil(t, sub.YearMax)
	})

	t.Run("NotANumber", func(t *testing.T) {
		st, _, _ := m.Start(KindSubscription, nil)
		res := feed(t, m, st, text("camry"), text("дорого"))
		assert.Equal(t, Reprompt, res.Outcome)
		assert.Equal(t, []string{"Пожалуйста, введите число."}, res.Messages)
	})

	t.Run("YearMaxBelowMin", func(t *testing.T) {
		st, _, _ := m.Start(KindSubscription, nil)
		res := feed(t, m, st, text("camry"), text("0"), text("0"), text("2020"), text("2018"))
		assert.Equal(t, Reprompt, res.Outcome)
		assert.Equal(t, []string{"Максимальный год не может быть меньше минимального. Попробуйте снова."}, res.Messages)

		res = feed(t, m, res.State, text("2022"))
		require.Equal(t, Completed, res.Outcome)
		sub := ToSubscription(res.State, 1)
		assert.Equal(t, "camry", sub.Model)
		assert.Equal(t, 2020, *sub.YearMin)
		assert.Equal(t, 2022, *sub.YearMax)
	})
}

func TestDiscountWizard(t *testing.T) {
	m := newTestMachine()
	st, prompt, err := m.Start(KindDiscount, map[string]string{FieldAdID: "5", FieldMinPrice: "8000000"})
	require.NoError(t, err)
	assert.Equal(t, "Введите желаемую цену или 'Отмена' для отмены:", prompt)

	res := feed(t, m, st, text("7999999"))
	assert.Equal(t, Reprompt, res.Outcome)
	assert.Equal(t, []string{"Цена не может быть ниже 8000000 KZT. Пожалуйста, введите корректную цену:"}, res.Messages)

	res = feed(t, m, res.State, text("abc"))
	assert.Equal(t, []string{"Пожалуйста, введите числовое значение для цены."}, res.Messages)

	res = feed(t, m, res.State, text("8000000"))
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, "8000000", res.Value)
	assert.Equal(t, "5", res.State.Field(FieldAdID))
}

func TestDiscountWizard_NotPositive(t *testing.T) {
	m := newTestMachine()
	st, _, err := m.Start(KindDiscount, map[string]string{FieldAdID: "5", FieldMinPrice: "8000000"})
	require.NoError(t, err)

	for _, in := range []string{"0", "-100"} {
		res := feed(t, m, st, text(in))
		assert.Equal(t, Reprompt, res.Outcome)
		require.Len(t, res.Messages, 1)
		assert.Equal(t, "Цена должна быть положительным числом. Пожалуйста, введите цену:", res.Messages[0])
		assert.NotContains(t, res.Messages[0], "%!")
	}
}

func TestPrompt(t *testing.T) {
	m := newTestMachine()
	st, _, err := m.Start(KindSubscription, nil)
	require.NoError(t, err)
	res := feed(t, m, st, text("Camry"))

	prompt, err := m.Prompt(res.State)
	require.NoError(t, err)
	assert.Equal(t, res.Messages[len(res.Messages)-1], prompt)

	_, err = m.Prompt(&models.WizardState{Kind: KindAd, Step: 42})
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = m.Prompt(nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAttachmentSteps(t *testing.T) {
	m := newTestMachine()

	t.Run("PaymentRejectsText", func(t *testing.T) {
		st, _, _ := m.Start(KindPayment, nil)
		res := feed(t, m, st, text("вот чек"))
		assert.Equal(t, Reprompt, res.Outcome)
		assert.Equal(t, []string{"Неправильный формат чека."}, res.Messages)
	})

	t.Run("PaymentDocument", func(t *testing.T) {
		st, _, _ := m.Start(KindPayment, nil)
		res := feed(t, m, st, Input{DocumentID: "doc-1"})
		assert.Equal(t, Completed, res.Outcome)
		assert.Equal(t, "doc-1", res.Value)
		assert.Equal(t, MessageDocument, AttachmentKind(res.State, FieldCheque))
	})

	t.Run("SupportPhoto", func(t *testing.T) {
		st, _, _ := m.Start(KindSupport, nil)
		res := feed(t, m, st, Input{PhotoID: "ph"})
		assert.Equal(t, Completed, res.Outcome)
		assert.Equal(t, MessagePhoto, AttachmentKind(res.State, FieldMessage))
	})

	t.Run("BroadcastText", func(t *testing.T) {
		st, _, _ := m.Start(KindBroadcast, nil)
		res := feed(t, m, st, text("Скидки!"))
		assert.Equal(t, Completed, res.Outcome)
		assert.Equal(t, MessageText, AttachmentKind(res.State, FieldMessage))
		assert.Equal(t, "Скидки!", res.Value)
	})
}

func TestIsCancel(t *testing.T) {
	assert.True(t, IsCancel("отмена"))
	assert.True(t, IsCancel(" ОТМЕНА "))
	assert.True(t, IsCancel("/cancel"))
	assert.False(t, IsCancel("отменить"))
}

func TestAdvanceInvalidState(t *testing.T) {
	m := newTestMachine()
	_, err := m.Advance(nil, text("x"))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = m.Advance(&models.WizardState{Kind: KindAd, Step: 42}, text("x"))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = m.Advance(&models.WizardState{Kind: "ghost"}, text("x"))
	assert.ErrorIs(t, err, ErrUnknownWizard)
}

package wizard

// Виды мастеров.
const (
	KindSelectionContact = "selection_contact"
	KindSalesContact     = "sales_contact"
	KindPayment          = "payment"
	KindAd               = "ad"
	KindSubscription     = "subscription"
	KindDiscount         = "discount"
	KindBroadcast        = "broadcast"
	KindMailing          = "mailing"
	KindSupport          = "support"
	KindSupportReply     = "support_reply"
)

// Имена полей, которые читают обработчики завершения.
const (
	FieldName             = "name"
	FieldPhone            = "phone"
	FieldCity             = "city"
	FieldCheque           = "cheque"
	FieldTitle            = "title"
	FieldModel            = "model"
	FieldYear             = "year"
	FieldPrice            = "price"
	FieldDescription      = "description"
	FieldPhotos           = "photos"
	FieldInspectionPhotos = "inspection_photos"
	FieldThicknessPhotos  = "thickness_photos"
	FieldPriceMin         = "price_min"
	FieldPriceMax         = "price_max"
	FieldYearMin          = "year_min"
	FieldYearMax          = "year_max"
	FieldDesiredPrice     = "desired_price"
	FieldMinPrice         = "min_price"
	FieldAdID             = "ad_id"
	FieldMessage          = "message"
	FieldReplyTo          = "reply_to"
)

// Суффикс поля с типом вложения для шагов ExpectMessage и ExpectFile.
const kindSuffix = "_kind"

// Типы вложений.
const (
	MessageText     = "text"
	MessagePhoto    = "photo"
	MessageDocument = "document"
)

const (
	textCancelled     = "Действие отменено."
	textPhotoAdded    = "Фото добавлено. Загрузите следующее или отправьте /done, если закончите."
	textEnterNumber   = "Пожалуйста, введите число."
	textPriceNotInt   = "Пожалуйста, введите числовое значение для цены."
	textPricePositive = "Цена должна быть положительным числом. Пожалуйста, введите цену:"
	textMessageFormat = "Пожалуйста, отправьте текст, фото или файл."
)

func builtin() map[string]*Definition {
	defs := []*Definition{
		{
			Kind: KindSelectionContact,
			Steps: []Step{
				{
					Field:   FieldPhone,
					Expect:  ExpectPhoneDigits,
					Prompt:  "Пожалуйста, поделитесь своим номером телефона или введите его для завершения регистрации:",
					Invalid: "Пожалуйста, отправьте ваш номер телефона или воспользуйтесь кнопкой ниже.",
					Ack:     "Спасибо!",
				},
				{
					Field:   FieldName,
					Expect:  ExpectText,
					Prompt:  "Как к вам обращаться?",
					Invalid: "Как к вам обращаться?",
					Ack:     "Приятно познакомиться, %s!",
				},
				{
					Field:   FieldCity,
					Expect:  ExpectText,
					Prompt:  "Пожалуйста, укажите ваш город.",
					Invalid: "Пожалуйста, укажите ваш город.",
					Ack:     "Спасибо! Ваш город: %s",
				},
			},
			SkipFilled: true,
		},
		{
			Kind: KindSalesContact,
			Steps: []Step{
				{
					Field:   FieldName,
					Expect:  ExpectText,
					Prompt:  "Пожалуйста, введите ваше имя:",
					Invalid: "Имя не может быть пустым. Пожалуйста, введите ваше имя:",
				},
				{
					Field:   FieldPhone,
					Expect:  ExpectPhone,
					Prompt:  "Пожалуйста, введите ваш номер телефона:",
					Invalid: "Номер телефона не может быть пустым. Пожалуйста, введите ваш номер телефона:",
				},
				{
					Field:   FieldCity,
					Expect:  ExpectText,
					Prompt:  "Пожалуйста, введите ваш город:",
					Invalid: "Город не может быть пустым. Пожалуйста, введите ваш город:",
				},
			},
			Done: "Спасибо! Вы можете пользоваться ботом.",
		},
		{
			Kind: KindPayment,
			Steps: []Step{
				{
					Field:   FieldCheque,
					Expect:  ExpectFile,
					Prompt:  "Пожалуйста, отправьте чек одним сообщением (фото или файл).",
					Invalid: "Неправильный формат чека.",
				},
			},
			Done: "Ваш чек отправлен на проверку. Ожидайте подтверждения.",
		},
		{
			Kind: KindAd,
			Steps: []Step{
				{
					Field:   FieldTitle,
					Expect:  ExpectText,
					Prompt:  "Введите название автомобиля:",
					Invalid: "Название автомобиля не может быть пустым. Пожалуйста, введите название:",
				},
				{
					Field:   FieldModel,
					Expect:  ExpectText,
					Prompt:  "Введите модель автомобиля:",
					Invalid: "Модель автомобиля не может быть пустой. Пожалуйста, введите модель:",
				},
				{
					Field:      FieldYear,
					Expect:     ExpectYear,
					Prompt:     "Введите год выпуска:",
					Invalid:    "Пожалуйста, введите числовое значение для года.",
					OutOfRange: "Пожалуйста, введите год выпуска между %d и %d:",
				},
				{
					Field:   FieldPrice,
					Expect:  ExpectPrice,
					Prompt:  "Введите цену:",
					Invalid: textPriceNotInt,
				},
				{
					Field:   FieldDescription,
					Expect:  ExpectText,
					Prompt:  "Введите полное описание:",
					Invalid: "Описание не может быть пустым. Пожалуйста, введите описание:",
				},
				{
					Field:   FieldPhotos,
					Expect:  ExpectPhotos,
					Prompt:  "Загрузите фото автомобиля (по одному). Когда закончите, отправьте команду /done",
					Invalid: "Пожалуйста, загрузите хотя бы одно фото автомобиля или отмените действие командой 'Отмена'.",
				},
				{
					Field:   FieldInspectionPhotos,
					Expect:  ExpectPhotos,
					Prompt:  "Загрузите акт осмотра (фото). Когда закончите, отправьте команду /done",
					Invalid: "Пожалуйста, загрузите хотя бы одно фото акта осмотра или отмените действие командой 'Отмена'.",
				},
				{
					Field:   FieldThicknessPhotos,
					Expect:  ExpectPhotos,
					Prompt:  "Загрузите фото толщиномера (по одному). Когда закончите, отправьте команду /done",
					Invalid: "Пожалуйста, загрузите хотя бы одно фото толщиномера или отмените действие командой 'Отмена'.",
				},
			},
			Done: "Объявление сохранено.",
		},
		{
			Kind: KindSubscription,
			Steps: []Step{
				{
					Field:  FieldModel,
					Expect: ExpectOptionalText,
					Prompt: "Введите модель автомобиля или '-' для пропуска:",
				},
				{
					Field:   FieldPriceMin,
					Expect:  ExpectOptionalInt,
					Prompt:  "Введите минимальную цену или отправьте 0 для пропуска:",
					Invalid: textEnterNumber,
				},
				{
					Field:   FieldPriceMax,
					Expect:  ExpectOptionalInt,
					Prompt:  "Введите максимальную цену или отправьте 0 для пропуска:",
					Invalid: textEnterNumber,
				},
				{
					Field:   FieldYearMin,
					Expect:  ExpectOptionalInt,
					Prompt:  "Введите минимальный год выпуска или отправьте 0 для пропуска:",
					Invalid: textEnterNumber,
				},
				{
					Field:      FieldYearMax,
					Expect:     ExpectOptionalInt,
					Prompt:     "Введите максимальный год выпуска или отправьте 0 для пропуска:",
					Invalid:    textEnterNumber,
					OutOfRange: "Максимальный год не может быть меньше минимального. Попробуйте снова.",
					NotBelow:   FieldYearMin,
				},
			},
			Done: "Подписка создана.",
		},
		{
			Kind: KindDiscount,
			Steps: []Step{
				{
					Field:      FieldDesiredPrice,
					Expect:     ExpectPrice,
					Prompt:     "Введите желаемую цену или 'Отмена' для отмены:",
					Invalid:    textPriceNotInt,
					OutOfRange: "Цена не может быть ниже %d KZT. Пожалуйста, введите корректную цену:",
					NotBelow:   FieldMinPrice,
				},
			},
			Done: "Ваш запрос на скидку отправлен менеджеру. Ожидайте обратной связи.",
		},
		{
			Kind: KindBroadcast,
			Steps: []Step{
				{
					Field:   FieldMessage,
					Expect:  ExpectMessage,
					Prompt:  "✉️ Отправьте сообщение для рассылки (текст, фото или документ):",
					Invalid: textMessageFormat,
				},
			},
		},
		{
			Kind: KindMailing,
			Steps: []Step{
				{
					Field:   FieldMessage,
					Expect:  ExpectText,
					Prompt:  "Пожалуйста, введите сообщение для рассылки:",
					Invalid: "Сообщение не может быть пустым. Пожалуйста, введите сообщение для рассылки:",
				},
			},
		},
		{
			Kind: KindSupport,
			Steps: []Step{
				{
					Field:   FieldMessage,
					Expect:  ExpectMessage,
					Prompt:  "Вы можете задать свой вопрос, и менеджер скоро свяжется с вами. Напишите ваше сообщение или 'Отмена' для отмены:",
					Invalid: textMessageFormat,
				},
			},
			Done: "Ваше сообщение отправлено менеджеру. Ожидайте ответа.",
		},
		{
			Kind: KindSupportReply,
			Steps: []Step{
				{
					Field:   FieldMessage,
					Expect:  ExpectText,
					Prompt:  "Введите сообщение для пользователя:",
					Invalid: "Введите сообщение для пользователя:",
				},
			},
		},
	}

	out := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		out[d.Kind] = d
	}
	return out
}

package selection

const (
	textChooseAction     = "Пожалуйста, выберите действие:"
	textMenu             = "Выберите действие:"
	textNextAction       = "Пожалуйста, выберите дальнейшее действие:"
	textContactManager   = "📞 Связаться с менеджером"
	textShareContact     = "📱 Поделиться контактом"
	textWelcomeNew       = "Здравствуйте! Рады видеть вас. Пожалуйста, поделитесь своим номером телефона или введите его для регистрации:"
	textWelcomeBack      = "С возвращением, %s! Чем могу помочь?"
	textCancelled        = "Понял, если у вас возникнут вопросы, обращайтесь! 😊"
	textTryAgain         = "⚠️ Произошла ошибка. Попробуйте снова."
	textGenericError     = "⚠️ Произошла ошибка. Пожалуйста, попробуйте позже."
	textPromoOffer       = "У нас сейчас проходит акция 'Щедрая пятница'! Хотите принять участие и выбрать приз?"
	textJoinPromo        = "🎁 Участвовать в акции"
	textViewAll          = "🔗 Посмотреть все варианты"
	textLink             = "%s, вот ссылка на автомобили по вашим параметрам:"
	textIdleNudge        = "Можем ли мы помочь с подбором автомобиля? Или хотите связаться с менеджером?"
	textContinueSelect   = "🔍 Продолжить подбор"
	textPrizeTaken       = "🎁 Вы уже выбрали приз и получили свой подарок."
	textChoosePrize      = "Пожалуйста, выберите один из доступных призов:"
	textPrizeUnavailable = "⚠️ Выбранный приз недоступен. Пожалуйста, выберите другой приз."
	textPrizeError       = "⚠️ Произошла ошибка при выборе приза. Пожалуйста, попробуйте снова."
	textRegisterFirst    = "Пожалуйста, сначала зарегистрируйтесь с помощью команды /start."
	textMyPrizesError    = "⚠️ Произошла ошибка при получении ваших призов."
	textNoPrizes         = "🎁 У вас пока нет призов."
	textNoAdminAccess    = "🔒 У вас нет доступа к админ-командам."
	textAdminPanel       = "🔧 *Админ-панель:*"
	textStatsError       = "⚠️ Произошла ошибка при получении статистики."
	textExportPeriod     = "📂 Выберите период для экспорта контактов:"
	textExportBadPeriod  = "❌ Некорректный период для экспорта."
	textExportDone       = "📂 Экспорт контактов выполнен успешно."
	textExportError      = "⚠️ Произошла ошибка при экспорте контактов."
	textUsersListError   = "⚠️ Произошла ошибка при получении списка пользователей."
	textBroadcastStarted = "⏳ Рассылка запущена."
	textBroadcastDone    = "📬 *Рассылка завершена.*\n✅ Отправлено: %d\n❌ Не удалось отправить: %d"
)

const textPrizeWon = "🎉 Поздравляем, %s! Вы выбрали приз: *%s* 🎁\n" +
	"📄 Ваш промокод: `%s`\n\n" +
	"📝 Сохраните этот промокод для активации приза.\n\n" +
	"*Приз активируется только при покупке в нашем автосалоне.*\n" +
	"*Приз действителен до окончания акции.*"

const textPrizeItem = "- *%s*\n" +
	"  📄 Промокод: `%s`\n" +
	"  🗓 Выигран: %s\n" +
	"  🔗 _Приз активируется только при покупке в нашем автосалоне._\n" +
	"  🕒 _Приз действителен до окончания акции._\n\n"

const textStats = "📊 *Статистика бота:*\n\n" +
	"• Всего пользователей: %d\n" +
	"• Новых пользователей сегодня: %d\n" +
	"• Сообщений отправлено: %d\n" +
	"• Ссылок отправлено: %d"

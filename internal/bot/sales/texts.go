package sales

// Кнопки главного меню и админ-панели.
const (
	btnPaid          = "Я оплатил"
	btnAllAds        = "Список всех объявлений"
	btnFavorites     = "Избранные объявления"
	btnSubscriptions = "Подписки"
	btnSupport       = "Поддержка"
	btnAdminPanel    = "Админ Панель"

	btnCreateSubscription = "Создать подписку"
	btnMySubscriptions    = "Мои подписки"
	btnCancel             = "Отмена"

	btnAddAd      = "Добавить объявление"
	btnManageAds  = "Управление объявлениями"
	btnStats      = "Статистика"
	btnMailing    = "Рассылка"
	btnExport     = "Экспорт контактов"
	btnToggleOpen = "Открыть/Закрыть Бот"
)

const (
	textGenericError   = "Произошла ошибка. Пожалуйста, попробуйте позже."
	textBotClosed      = "Бот в данный момент закрыт для новых пользователей. Пожалуйста, попробуйте позже."
	textBotClosedAlert = "Бот в данный момент закрыт для новых пользователей."
	textChooseAction   = "Выберите действие:"
	textNoAccess       = "У вас нет доступа. Пожалуйста, оплатите доступ."
	textCancelled      = "Действие отменено."

	textAlreadyApproved  = "Ваш доступ уже подтвержден. Вы можете пользоваться ботом."
	textApprovedNeedInfo = "Ваш доступ подтвержден. Пожалуйста, предоставьте вашу контактную информацию."
	textWelcome          = "Добро пожаловать! Пожалуйста, предоставьте вашу контактную информацию."
	textStatusForbidden  = "Ваш статус не позволяет использовать бота. Свяжитесь с администратором."
	textPendingApproval  = "Ваш запрос уже отправлен на одобрение. Ожидайте подтверждения администратора."
	textContactSaveError = "Произошла ошибка при сохранении контактной информации. Пожалуйста, попробуйте позже."
	textChequeSaveError  = "Произошла ошибка при сохранении чека. Пожалуйста, попробуйте позже."
	textNewApplication   = "Новая заявка от %s"
	textAccessRejected   = "Ваш доступ отклонен. Обратитесь к администратору."
	textNoRights         = "У вас нет прав."
	textUserApproved     = "Пользователь подтвержден."
	textUserRejected     = "Пользователь отклонен."
	textApproveError     = "Произошла ошибка при подтверждении пользователя."
	textRejectError      = "Произошла ошибка при отклонении пользователя."
	textUserNotFound     = "Пользователь не найден."
	btnApprove           = "Подтвердить"
	btnReject            = "Отклонить"
)

const (
	textAdsError         = "Произошла ошибка при получении объявлений. Пожалуйста, попробуйте позже."
	textNoAds            = "Нет доступных объявлений."
	textFavoritesError   = "Произошла ошибка при получении избранных объявлений. Пожалуйста, попробуйте позже."
	textNoFavorites      = "У вас нет избранных объявлений."
	textNoMoreAds        = "Больше объявлений нет."
	textNothingToShow    = "Нет объявлений для отображения."
	textAdNotFound       = "Объявление не найдено."
	textAdLoadError      = "Произошла ошибка при получении объявления."
	textFavoriteAdded    = "Добавлено в избранное."
	textFavoriteRemoved  = "Удалено из избранного."
	textFavoriteAddError = "Произошла ошибка при добавлении в избранное."
	textFavoriteDelError = "Произошла ошибка при удалении из избранного."
	textAllPhotos        = "Все фото объявления: %s"
	textNoExtraPhotos    = "Нет дополнительных фотографий."
	textPhotosSendError  = "Произошла ошибка при отправке фотографий."
	textNoDescription    = "Описание отсутствует."
	textInspection       = "Акт осмотра: %s"
	textNoInspection     = "Нет фотографий акта осмотра."
	textThickness        = "Фото толщиномера: %s"
	textNoThickness      = "Нет фотографий толщиномера."
	textRequestSent      = "Ваш запрос отправлен менеджеру. Ожидайте обратной связи."
	textNotSpecified     = "Не указано"

	textBuyRequest      = "Новый запрос от пользователя:\n\nИмя: %s\nТелефон: %s\nГород: %s\nАвтомобиль: %s\nЗапрос: Купить"
	textDiscountRequest = "Новый запрос на скидку от пользователя:\n\nИмя: %s\nТелефон: %s\nГород: %s\n" +
		"Автомобиль: %s\nЖелаемая цена: %d KZT"

	btnBuy            = "Купить"
	btnDiscount       = "Запросить скидку"
	btnDescription    = "Полное описание"
	btnInspection     = "Акт осмотра"
	btnThickness      = "Толщиномер"
	btnAddFavorite    = "Добавить в избранное 🤍"
	btnRemoveFavorite = "Убрать из избранного ❤️"
	btnShowPhotos     = "Показать все фото"
	btnPrev           = "« Предыдущее"
	btnNext           = "Следующее »"
)

const (
	textSubscriptionsError  = "Произошла ошибка при получении подписок. Пожалуйста, попробуйте позже."
	textNoSubscriptions     = "У вас нет активных подписок."
	textSubscriptionDeleted = "Подписка удалена."
	textSubscriptionMissing = "Подписка не найдена."
	textSubscriptionDelErr  = "Произошла ошибка при удалении подписки."
	textSubscriptionSaveErr = "Произошла ошибка при сохранении подписки. Пожалуйста, попробуйте позже."
	btnDelete               = "Удалить"
)

const (
	textSupportFrom      = "Сообщение от пользователя %s:"
	textSupportReplyHint = "Ответьте, используя кнопку ниже."
	textSupportError     = "Произошла ошибка при отправке сообщения. Пожалуйста, попробуйте позже."
	textManagerAnswer    = "Ответ от менеджера:\n%s"
	textReplyDelivered   = "Сообщение отправлено пользователю."
	textReplyFailed      = "Не удалось отправить сообщение пользователю."
	btnReply             = "Ответить"
)

const (
	textAdminPanel       = "Панель администратора"
	textAdminNoAccess    = "У вас нет доступа."
	textAdSaveError      = "Произошла ошибка при сохранении объявления. Пожалуйста, попробуйте позже."
	textAdDeleted        = "Объявление удалено."
	textAdDeleteError    = "Произошла ошибка при удалении объявления."
	textEditNotReady     = "Редактирование пока не реализовано."
	textAdListItem       = "%d. %s"
	btnEdit              = "Редактировать"
	textStats            = "Всего пользователей: %d\nАктивных пользователей: %d\nКоличество объявлений: %d"
	textStatsError       = "Произошла ошибка при получении статистики. Пожалуйста, попробуйте позже."
	textNoMailingUsers   = "Нет одобренных пользователей для рассылки."
	textMailingStarted   = "Рассылка запущена."
	textMailingDone      = "Рассылка завершена.\nУспешно отправлено: %d/%d"
	textUsersListError   = "Произошла ошибка при получении списка пользователей. Пожалуйста, попробуйте позже."
	textNoUsersToExport  = "Нет зарегистрированных пользователей."
	textContactsError    = "Произошла ошибка при получении контактов. Пожалуйста, попробуйте позже."
	textExportSendError  = "Произошла ошибка при отправке файла. Пожалуйста, попробуйте позже."
	textBotOpened        = "Бот теперь открыт для новых пользователей."
	textBotClosedByAdmin = "Бот теперь закрыт для новых пользователей."
	textToggleError      = "Произошла ошибка при изменении состояния бота. Пожалуйста, попробуйте позже."
)

package bot

import (
	"errors"

	"asterbot/internal/dialogue"
)

const (
	TextRateLimited   = "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного."
	TextUnknownAction = "❓ Неизвестная команда."
)

// ErrorMessage короткий текст для пользователя; текст внутренней ошибки не показывается.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, dialogue.ErrBackendUnavailable) {
		return "⚠️ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
	}

	return "⚠️ Произошла ошибка. Пожалуйста, попробуйте позже."
}

// Package dialogue ведет диалог подбора автомобиля через языковую модель
// и извлекает из ответов набор фильтров.
package dialogue

import (
	"context"
	"errors"
	"fmt"

	"asterbot/internal/filters"
	"asterbot/internal/llm"
	"asterbot/internal/models"

	"github.com/rs/zerolog"
)

// ErrBackendUnavailable вызов модели не удался; буфер диалога не изменен.
var ErrBackendUnavailable = errors.New("generative backend unavailable")

// Результаты хода, используются для метрик.
const (
	ResultContinue  = "continue"
	ResultMalformed = "malformed"
	ResultRejected  = "rejected"
	ResultExtracted = "extracted"
)

// DefaultHistoryLimit сколько последних реплик уходит в запрос к модели.
const DefaultHistoryLimit = 30

type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Recorder сохраняет успешно извлеченные фильтры.
type Recorder interface {
	SaveUserRequest(ctx context.Context, userID int64, preferences filters.Set) error
}

type Engine struct {
	backend      Completer
	recorder     Recorder
	systemPrompt string
	historyLimit int
	logger       *zerolog.Logger
}

func NewEngine(backend Completer, recorder Recorder, logger *zerolog.Logger) *Engine {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Engine{
		backend:      backend,
		recorder:     recorder,
		systemPrompt: SystemPrompt,
		historyLimit: DefaultHistoryLimit,
		logger:       logger,
	}
}

// Outcome результат одного хода диалога.
type Outcome struct {
	// Reply ответ модели; показывается пользователю, если Filters == nil.
	Reply string
	// Buffer новое состояние буфера; nil после успешного извлечения.
	Buffer  []models.DialogueMessage
	Filters filters.Set
	Result  string
}

// Done сообщает, завершился ли диалог извлечением фильтров.
func (o Outcome) Done() bool {
	return o.Filters != nil
}

// Turn выполняет ход: добавляет реплику пользователя, вызывает модель и пытается извлечь фильтры.
// При ошибке модели или сохранения возвращается исходный буфер без изменений.
func (e *Engine) Turn(ctx context.Context, userID int64, buffer []models.DialogueMessage, utterance string) (Outcome, error) {
	log := e.logger.With().Int64("user_id", userID).Logger()

	next := make([]models.DialogueMessage, len(buffer), len(buffer)+2)
	copy(next, buffer)
	next = append(next, models.DialogueMessage{Role: models.RoleUser, Content: utterance})

	reply, err := e.backend.Complete(ctx, e.prompt(next))
	if err != nil {
		return Outcome{Buffer: buffer}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	next = append(next, models.DialogueMessage{Role: models.RoleAssistant, Content: reply})

	raw, err := Extract(reply)
	if err != nil {
		if errors.Is(err, ErrNoMarker) {
			return Outcome{Reply: reply, Buffer: next, Result: ResultContinue}, nil
		}
		log.Warn().Err(err).Str("reply", reply).Msg("failed to parse filters block")
		return Outcome{Reply: reply, Buffer: next, Result: ResultMalformed}, nil
	}

	set, rejected, err := filters.Normalize(raw)
	for _, r := range rejected {
		log.Warn().Str("key", r.Key).Interface("value", r.Value).Str("reason", r.Reason).Msg("filter value dropped")
	}
	if err != nil {
		log.Warn().Err(err).Interface("raw", raw).Msg("filters rejected by normalizer")
		return Outcome{Reply: reply, Buffer: next, Result: ResultRejected}, nil
	}

	if e.recorder != nil {
		if err := e.recorder.SaveUserRequest(ctx, userID, set); err != nil {
			return Outcome{Buffer: buffer}, fmt.Errorf("failed to record extracted filters: %w", err)
		}
	}

	log.Info().Interface("filters", set).Msg("filters extracted")
	return Outcome{Reply: reply, Filters: set, Result: ResultExtracted}, nil
}

func (e *Engine) prompt(history []models.DialogueMessage) []llm.Message {
	if e.historyLimit > 0 && len(history) > e.historyLimit {
		history = history[len(history)-e.historyLimit:]
	}
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: e.systemPrompt})
	for _, m := range history {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

package dialogue

import (
	"context"
	"errors"
	"testing"

	"asterbot/internal/filters"
	"asterbot/internal/llm"
	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) SaveUserRequest(ctx context.Context, userID int64, preferences filters.Set) error {
	args := m.Called(ctx, userID, preferences)
	return args.Error(0)
}

func history() []models.DialogueMessage {
	return []models.DialogueMessage{
		{Role: models.RoleUser, Content: "Хочу машину"},
		{Role: models.RoleAssistant, Content: "Какую марку?"},
	}
}

func TestEngine_Turn(t *testing.T) {
	ctx := context.Background()

	t.Run("NoMarkerKeepsDialogueOpen", func(t *testing.T) {
		backend := new(mockCompleter)
		recorder := new(mockRecorder)
		engine := NewEngine(backend, recorder, nil)

		backend.On("Complete", ctx, mock.MatchedBy(func(msgs []llm.Message) bool {
			return len(msgs) == 4 && msgs[0].Role == llm.RoleSystem && msgs[3].Content == "BMW"
		})).Return("Какой бюджет?", nil).Once()

		out, err := engine.Turn(ctx, 1, history(), "BMW")
		require.NoError(t, err)
		assert.False(t, out.Done())
		assert.Nil(t, out.Filters)
		assert.Equal(t, "Какой бюджет?", out.Reply)
		assert.Equal(t, ResultContinue, out.Result)
		require.Len(t, out.Buffer, 4)
		assert.Equal(t, models.RoleAssistant, out.Buffer[3].Role)
		recorder.AssertNotCalled(t, "SaveUserRequest", mock.Anything, mock.Anything, mock.Anything)
		backend.AssertExpectations(t)
	})

	t.Run("MalformedBehavesLikeNoMarker", func(t *testing.T) {
		backend := new(mockCompleter)
		recorder := new(mockRecorder)
		engine := NewEngine(backend, recorder, nil)

		backend.On("Complete", ctx, mock.Anything).Return("Фильтры: {brand: bmw", nil).Once()

		out, err := engine.Turn(ctx, 1, history(), "BMW")
		require.NoError(t, err)
		assert.False(t, out.Done())
		assert.Equal(t, ResultMalformed, out.Result)
		assert.Len(t, out.Buffer, 4)
		assert.Equal(t, "Фильтры: {brand: bmw", out.Reply)
		recorder.AssertNotCalled(t, "SaveUserRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NormalizerRejectionBehavesLikeNoMarker", func(t *testing.T) {
		backend := new(mockCompleter)
		engine := NewEngine(backend, nil, nil)

		backend.On("Complete", ctx, mock.Anything).Return("Фильтры: {\"priceTo\": \"недорого\"}", nil).Once()

		out, err := engine.Turn(ctx, 1, nil, "недорого")
		require.NoError(t, err)
		assert.False(t, out.Done())
		assert.Equal(t, ResultRejected, out.Result)
		assert.Len(t, out.Buffer, 2)
	})

	t.Run("ExtractedClearsBufferAfterRecording", func(t *testing.T) {
		backend := new(mockCompleter)
		recorder := new(mockRecorder)
		engine := NewEngine(backend, recorder, nil)

		reply := "Отлично!\nФильтры:\n```json\n{\"price_max\": 6, \"body_type\": \"седан\", \"brand\": \"bmw\", \"color\": \"black\"}\n```"
		backend.On("Complete", ctx, mock.Anything).Return(reply, nil).Once()

		want := filters.Set{filters.KeyPriceTo: int64(6000000), filters.KeyBodyType: "sedan", filters.KeyBrand: "bmw"}
		recorder.On("SaveUserRequest", ctx, int64(7), want).Return(nil).Once()

		out, err := engine.Turn(ctx, 7, history(), "до 6 миллионов, седан")
		require.NoError(t, err)
		assert.True(t, out.Done())
		assert.Equal(t, want, out.Filters)
		assert.Nil(t, out.Buffer)
		assert.Equal(t, ResultExtracted, out.Result)
		recorder.AssertExpectations(t)
	})

	t.Run("BackendErrorLeavesBufferUntouched", func(t *testing.T) {
		backend := new(mockCompleter)
		engine := NewEngine(backend, nil, nil)
		buf := history()

		backend.On("Complete", ctx, mock.Anything).Return("", errors.New("quota exceeded")).Once()

		out, err := engine.Turn(ctx, 1, buf, "BMW")
		assert.ErrorIs(t, err, ErrBackendUnavailable)
		assert.Equal(t, buf, out.Buffer)
		assert.Len(t, buf, 2)
	})

	t.Run("RecordErrorLeavesBufferUntouched", func(t *testing.T) {
		backend := new(mockCompleter)
		recorder := new(mockRecorder)
		engine := NewEngine(backend, recorder, nil)
		buf := history()

		backend.On("Complete", ctx, mock.Anything).Return("Фильтры: {\"brand\": \"kia\"}", nil).Once()
		recorder.On("SaveUserRequest", ctx, int64(1), mock.Anything).Return(errors.New("db down")).Once()

		out, err := engine.Turn(ctx, 1, buf, "kia")
		assert.Error(t, err)
		assert.False(t, out.Done())
		assert.Equal(t, buf, out.Buffer)
	})
}

func TestEngine_PromptIsBounded(t *testing.T) {
	engine := NewEngine(nil, nil, nil)
	engine.historyLimit = 3

	var long []models.DialogueMessage
	for i := 0; i < 10; i++ {
		long = append(long, models.DialogueMessage{Role: models.RoleUser, Content: "m"})
	}
	msgs := engine.prompt(long)
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
}

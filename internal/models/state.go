package models

import (
	"strconv"
	"time"
)

// SessionKind вариант состояния пользователя.
type SessionKind string

const (
	SessionIdle     SessionKind = "idle"
	SessionDialogue SessionKind = "dialogue"
	SessionWizard   SessionKind = "wizard"
)

// Роли сообщений диалога подбора.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type DialogueMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WizardState курсор линейного мастера: вид, номер шага и собранные поля.
type WizardState struct {
	Kind   string              `json:"kind"`
	Step   int                 `json:"step"`
	Fields map[string]string   `json:"fields,omitempty"`
	Media  map[string][]string `json:"media,omitempty"`
}

// Field возвращает собранное значение или пустую строку.
func (w *WizardState) Field(key string) string {
	if w == nil || w.Fields == nil {
		return ""
	}
	return w.Fields[key]
}

// Int64Field разбирает числовое поле; отсутствующее или пустое поле дает ok=false.
func (w *WizardState) Int64Field(key string) (int64, bool) {
	raw := w.Field(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (w *WizardState) SetField(key, value string) {
	if w.Fields == nil {
		w.Fields = make(map[string]string)
	}
	w.Fields[key] = value
}

func (w *WizardState) AddMedia(key, fileID string) {
	if w.Media == nil {
		w.Media = make(map[string][]string)
	}
	w.Media[key] = append(w.Media[key], fileID)
}

// BrowseState курсор просмотра каталога (бот продаж).
type BrowseState struct {
	Source string  `json:"source"` // all | favorites
	AdIDs  []int64 `json:"ad_ids"`
	Index  int     `json:"index"`
}

// Current возвращает ID текущего объявления.
func (b *BrowseState) Current() (int64, bool) {
	if b == nil || b.Index < 0 || b.Index >= len(b.AdIDs) {
		return 0, false
	}
	return b.AdIDs[b.Index], true
}

func (b *BrowseState) HasPrev() bool { return b != nil && b.Index > 0 }
func (b *BrowseState) HasNext() bool { return b != nil && b.Index < len(b.AdIDs)-1 }

// UserState состояние пользователя: ровно один из вариантов idle, dialogue или wizard.
// Browse хранится независимо от варианта.
type UserState struct {
	UserID    int64             `json:"user_id"`
	Kind      SessionKind       `json:"kind"`
	Dialogue  []DialogueMessage `json:"dialogue,omitempty"`
	Wizard    *WizardState      `json:"wizard,omitempty"`
	Browse    *BrowseState      `json:"browse,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewIdleState(userID int64) *UserState {
	return &UserState{UserID: userID, Kind: SessionIdle}
}

func (s *UserState) IsIdle() bool {
	return s == nil || s.Kind == "" || s.Kind == SessionIdle
}

func (s *UserState) InDialogue() bool {
	return s != nil && s.Kind == SessionDialogue
}

// InWizard сообщает, активен ли мастер указанного вида; пустой kind означает любой.
func (s *UserState) InWizard(kind string) bool {
	if s == nil || s.Kind != SessionWizard || s.Wizard == nil {
		return false
	}
	return kind == "" || s.Wizard.Kind == kind
}

// Clone возвращает глубокую копию состояния.
func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Dialogue != nil {
		out.Dialogue = append([]DialogueMessage(nil), s.Dialogue...)
	}
	if s.Wizard != nil {
		w := *s.Wizard
		if s.Wizard.Fields != nil {
			w.Fields = make(map[string]string, len(s.Wizard.Fields))
			for k, v := range s.Wizard.Fields {
				w.Fields[k] = v
			}
		}
		if s.Wizard.Media != nil {
			w.Media = make(map[string][]string, len(s.Wizard.Media))
			for k, v := range s.Wizard.Media {
				w.Media[k] = append([]string(nil), v...)
			}
		}
		out.Wizard = &w
	}
	if s.Browse != nil {
		b := *s.Browse
		b.AdIDs = append([]int64(nil), s.Browse.AdIDs...)
		out.Browse = &b
	}
	return &out
}

// Package wizard описывает линейные пошаговые мастера ботов и функцию перехода между шагами.
// Мастер не сохраняет сущности сам: завершение и отдельные поля обрабатывает вызывающий код.
package wizard

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"asterbot/internal/models"
)

var (
	ErrUnknownWizard = errors.New("unknown wizard")
	// ErrNothingToCollect все поля мастера уже заполнены.
	ErrNothingToCollect = errors.New("nothing to collect")
	ErrInvalidState     = errors.New("invalid wizard state")
)

// Expect форма ввода, которую принимает шаг.
type Expect int

const (
	// ExpectText непустой текст.
	ExpectText Expect = iota
	// ExpectOptionalText текст, "-" означает пропуск.
	ExpectOptionalText
	// ExpectPhone контакт или непустой текст как есть.
	ExpectPhone
	// ExpectPhoneDigits контакт или текст, сведенный к цифрам.
	ExpectPhoneDigits
	// ExpectYear целое в диапазоне [1900, текущий год + 1].
	ExpectYear
	// ExpectPrice положительное целое.
	ExpectPrice
	// ExpectOptionalInt целое, 0 и отрицательные означают пропуск.
	ExpectOptionalInt
	// ExpectPhotos одно или несколько фото, затем /done.
	ExpectPhotos
	// ExpectFile фото или документ.
	ExpectFile
	// ExpectMessage текст, фото или документ.
	ExpectMessage
)

type Step struct {
	Field  string
	Expect Expect
	Prompt string
	// Invalid повторный запрос при неверной форме ввода.
	Invalid string
	// OutOfRange повторный запрос, когда число не прошло проверку границ.
	// Для ExpectPrice с NotBelow в текст подставляется граница.
	OutOfRange string
	// NotBelow поле, значение которого не может быть больше принятого.
	NotBelow string
	// Ack подтверждение после принятия поля; %s заменяется значением.
	Ack string
}

type Definition struct {
	Kind  string
	Steps []Step
	// Done текст после успешного завершения.
	Done string
	// SkipFilled пропускать шаги, поля которых уже заполнены.
	SkipFilled bool
}

// Input одно входящее сообщение пользователя.
type Input struct {
	Text         string
	ContactPhone string
	PhotoID      string
	DocumentID   string
}

type Outcome int

const (
	// Reprompt ввод отклонен, шаг не изменился.
	Reprompt Outcome = iota
	// Collected фото принято, шаг ждет следующих или /done.
	Collected
	// Next поле принято, мастер перешел к следующему шагу.
	Next
	// Completed последнее поле принято.
	Completed
	// Cancelled мастер отменен, собранные поля отброшены.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Reprompt:
		return "reprompt"
	case Collected:
		return "collected"
	case Next:
		return "next"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Result результат одного перехода.
type Result struct {
	Outcome Outcome
	// State новое состояние; nil после отмены.
	State *models.WizardState
	// Field и Value принятое поле для Next и Completed.
	Field string
	Value string
	// Messages ответы пользователю в порядке отправки.
	Messages []string
	// Done итоговый текст; отправляется после сохранения результата.
	Done string
}

// CancelText ответ на отмену мастера.
const CancelText = textCancelled

const doneCommand = "/done"

var nonDigits = regexp.MustCompile(`\D`)

// IsCancel сообщает, является ли текст командой отмены.
func IsCancel(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "отмена", "/cancel":
		return true
	}
	return false
}

type Machine struct {
	defs map[string]*Definition
	now  func() time.Time
}

// New создает машину со встроенными мастерами ботов.
func New() *Machine {
	return &Machine{defs: builtin(), now: time.Now}
}

func (m *Machine) Definition(kind string) (*Definition, error) {
	def, ok := m.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWizard, kind)
	}
	return def, nil
}

// Prompt возвращает запрос текущего шага состояния, чтобы повторить его пользователю.
func (m *Machine) Prompt(st *models.WizardState) (string, error) {
	if st == nil {
		return "", ErrInvalidState
	}
	def, err := m.Definition(st.Kind)
	if err != nil {
		return "", err
	}
	if st.Step < 0 || st.Step >= len(def.Steps) {
		return "", fmt.Errorf("%w: step %d of %s", ErrInvalidState, st.Step, st.Kind)
	}
	return def.Steps[st.Step].Prompt, nil
}

// Start создает состояние мастера. seed задает уже известные поля (например ad_id для скидки).
func (m *Machine) Start(kind string, seed map[string]string) (*models.WizardState, string, error) {
	def, err := m.Definition(kind)
	if err != nil {
		return nil, "", err
	}

	st := &models.WizardState{Kind: kind, Fields: make(map[string]string, len(seed))}
	for k, v := range seed {
		if v != "" {
			st.Fields[k] = v
		}
	}

	first := 0
	if def.SkipFilled {
		first = def.nextUnfilled(st, 0)
		if first == len(def.Steps) {
			return nil, "", ErrNothingToCollect
		}
	}
	st.Step = first
	return st, def.Steps[first].Prompt, nil
}

// Advance применяет ввод к состоянию. Исходное состояние не изменяется.
func (m *Machine) Advance(cur *models.WizardState, in Input) (Result, error) {
	if cur == nil {
		return Result{}, ErrInvalidState
	}
	def, err := m.Definition(cur.Kind)
	if err != nil {
		return Result{}, err
	}
	if cur.Step < 0 || cur.Step >= len(def.Steps) {
		return Result{}, fmt.Errorf("%w: step %d of %s", ErrInvalidState, cur.Step, cur.Kind)
	}

	if in.ContactPhone == "" && in.PhotoID == "" && in.DocumentID == "" && IsCancel(in.Text) {
		return Result{Outcome: Cancelled, Messages: []string{textCancelled}}, nil
	}

	st := clone(cur)
	step := def.Steps[st.Step]

	value, reject, collected := m.accept(step, st, in)
	if reject != "" {
		return Result{Outcome: Reprompt, State: st, Messages: []string{reject}}, nil
	}
	if collected {
		return Result{Outcome: Collected, State: st, Messages: []string{textPhotoAdded}}, nil
	}

	if value != "" {
		st.SetField(step.Field, value)
	}

	var msgs []string
	if step.Ack != "" {
		if strings.Contains(step.Ack, "%s") {
			msgs = append(msgs, fmt.Sprintf(step.Ack, value))
		} else {
			msgs = append(msgs, step.Ack)
		}
	}

	next := st.Step + 1
	if def.SkipFilled {
		next = def.nextUnfilled(st, next)
	}
	if next >= len(def.Steps) {
		return Result{Outcome: Completed, State: st, Field: step.Field, Value: value, Messages: msgs, Done: def.Done}, nil
	}

	st.Step = next
	msgs = append(msgs, def.Steps[next].Prompt)
	return Result{Outcome: Next, State: st, Field: step.Field, Value: value, Messages: msgs}, nil
}

// accept проверяет ввод для шага. Возвращает принятое значение, либо текст повторного запроса,
// либо collected=true для фото, добавленного к шагу ExpectPhotos.
func (m *Machine) accept(step Step, st *models.WizardState, in Input) (value, reject string, collected bool) {
	text := strings.TrimSpace(in.Text)

	switch step.Expect {
	case ExpectText:
		if text == "" {
			return "", step.Invalid, false
		}
		return text, "", false

	case ExpectOptionalText:
		if text == "-" {
			return "", "", false
		}
		return text, "", false

	case ExpectPhone:
		if in.ContactPhone != "" {
			return in.ContactPhone, "", false
		}
		if text == "" {
			return "", step.Invalid, false
		}
		return text, "", false

	case ExpectPhoneDigits:
		if in.ContactPhone != "" {
			return in.ContactPhone, "", false
		}
		digits := nonDigits.ReplaceAllString(text, "")
		if digits == "" {
			return "", step.Invalid, false
		}
		return digits, "", false

	case ExpectYear:
		n, err := strconv.Atoi(text)
		if err != nil {
			return "", step.Invalid, false
		}
		maxYear := m.now().Year() + 1
		if n < models.MinAdYear || n > maxYear {
			return "", fmt.Sprintf(step.OutOfRange, models.MinAdYear, maxYear), false
		}
		return strconv.Itoa(n), "", false

	case ExpectPrice:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return "", step.Invalid, false
		}
		if n <= 0 {
			return "", textPricePositive, false
		}
		if step.NotBelow != "" {
			if bound, ok := st.Int64Field(step.NotBelow); ok && n < bound {
				return "", fmt.Sprintf(step.OutOfRange, bound), false
			}
		}
		return strconv.FormatInt(n, 10), "", false

	case ExpectOptionalInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return "", step.Invalid, false
		}
		if n <= 0 {
			return "", "", false
		}
		if step.NotBelow != "" {
			if bound, ok := st.Int64Field(step.NotBelow); ok && n < bound {
				return "", step.OutOfRange, false
			}
		}
		return strconv.FormatInt(n, 10), "", false

	case ExpectPhotos:
		if in.PhotoID != "" {
			st.AddMedia(step.Field, in.PhotoID)
			return "", "", true
		}
		if text == doneCommand && len(st.Media[step.Field]) > 0 {
			return "", "", false
		}
		return "", step.Invalid, false

	case ExpectFile:
		switch {
		case in.PhotoID != "":
			st.SetField(step.Field+kindSuffix, MessagePhoto)
			return in.PhotoID, "", false
		case in.DocumentID != "":
			st.SetField(step.Field+kindSuffix, MessageDocument)
			return in.DocumentID, "", false
		}
		return "", step.Invalid, false

	case ExpectMessage:
		switch {
		case in.PhotoID != "":
			st.SetField(step.Field+kindSuffix, MessagePhoto)
			return in.PhotoID, "", false
		case in.DocumentID != "":
			st.SetField(step.Field+kindSuffix, MessageDocument)
			return in.DocumentID, "", false
		case text != "":
			st.SetField(step.Field+kindSuffix, MessageText)
			return text, "", false
		}
		return "", step.Invalid, false
	}

	return "", step.Invalid, false
}

func (d *Definition) nextUnfilled(st *models.WizardState, from int) int {
	for i := from; i < len(d.Steps); i++ {
		if st.Field(d.Steps[i].Field) == "" {
			return i
		}
	}
	return len(d.Steps)
}

// AttachmentKind возвращает тип вложения поля шага ExpectMessage или ExpectFile.
func AttachmentKind(st *models.WizardState, field string) string {
	return st.Field(field + kindSuffix)
}

func clone(st *models.WizardState) *models.WizardState {
	out := &models.WizardState{Kind: st.Kind, Step: st.Step}
	if st.Fields != nil {
		out.Fields = make(map[string]string, len(st.Fields))
		for k, v := range st.Fields {
			out.Fields[k] = v
		}
	}
	if st.Media != nil {
		out.Media = make(map[string][]string, len(st.Media))
		for k, v := range st.Media {
			out.Media[k] = append([]string(nil), v...)
		}
	}
	return out
}

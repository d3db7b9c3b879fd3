package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/budget_bot/internal/model"
)

// Причины отклонения ввода
const (
	ReasonNotNumber          = "not_number"
	ReasonValueRange         = "value_range"
	ReasonValuePrecision     = "value_precision"
	ReasonEmptyDescription   = "empty_description"
	ReasonDescriptionTooLong = "description_too_long"
	ReasonUnknownCategory    = "unknown_category"
	ReasonUnknownIncomeType  = "unknown_income_type"
)

// Сумма пишется без экспоненты, не длиннее maxValueLength символов
// и не точнее maxFractionDigits знаков после точки
const (
	maxValueLength    = 32
	maxFractionDigits = 2
)

// ValidationError - ввод отклонён, пользователь должен повторить
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validator проверяет сумму и описание записи
type Validator struct {
	MaxValue             decimal.Decimal
	MaxDescriptionLength int
}

func NewValidator(maxValue float64, maxDescriptionLength int) Validator {
	return Validator{
		MaxValue:             decimal.NewFromFloat(maxValue),
		MaxDescriptionLength: maxDescriptionLength,
	}
}

// ValidateValue разбирает сумму: 0 < v <= MaxValue
func (v Validator) ValidateValue(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	notNumber := len(text) > maxValueLength || strings.ContainsAny(text, "eE")

	value, err := decimal.NewFromString(text)
	if notNumber || err != nil {
		return decimal.Zero, &ValidationError{
			Reason:  ReasonNotNumber,
			Message: "Please enter a valid number",
		}
	}
	if !value.IsPositive() || value.GreaterThan(v.MaxValue) {
		return decimal.Zero, &ValidationError{
			Reason:  ReasonValueRange,
			Message: fmt.Sprintf("Value must be between 0 and %s", v.MaxValue.String()),
		}
	}
	if !value.Equal(value.Truncate(maxFractionDigits)) {
		return decimal.Zero, &ValidationError{
			Reason:  ReasonValuePrecision,
			Message: fmt.Sprintf("Value can have at most %d decimal places", maxFractionDigits),
		}
	}
	return value, nil
}

// ValidateDescription возвращает описание без пробелов по краям
func (v Validator) ValidateDescription(text string) (string, error) {
	description := strings.TrimSpace(text)
	if description == "" {
		return "", &ValidationError{
			Reason:  ReasonEmptyDescription,
			Message: "Description cannot be empty",
		}
	}
	if utf8.RuneCountInString(description) > v.MaxDescriptionLength {
		return "", &ValidationError{
			Reason:  ReasonDescriptionTooLong,
			Message: fmt.Sprintf("Description cannot be longer than %d characters", v.MaxDescriptionLength),
		}
	}
	return description, nil
}

// CheckChoices проверяет, что каждую категорию и тип дохода можно выбрать кнопкой:
// подпись без пробелов по краям, не повторяется и не совпадает с фразой другой кнопки
func CheckChoices(o model.Options) error {
	sets := []struct {
		kind   string
		labels []string
	}{
		{kind: "category", labels: o.Categories},
		{kind: "income type", labels: o.IncomeTypes},
	}
	for _, set := range sets {
		seen := make(map[string]bool, len(set.labels))
		for _, label := range set.labels {
			switch {
			case label == "" || strings.TrimSpace(label) != label:
				return fmt.Errorf("%s %q must be non-empty without surrounding spaces", set.kind, label)
			case seen[label]:
				return fmt.Errorf("duplicate %s %q", set.kind, label)
			}
			seen[label] = true

			if trigger, _ := Classify(label, o.Currencies); trigger != TriggerText || strings.HasPrefix(label, "/") {
				return fmt.Errorf("%s %q collides with a menu button or command", set.kind, label)
			}
			if _, ok := parseAnswer(label); ok {
				return fmt.Errorf("%s %q collides with a Yes/No answer", set.kind, label)
			}
		}
	}
	return nil
}

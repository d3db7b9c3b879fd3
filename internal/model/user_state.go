package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// State - шаг диалога пользователя
type State string

const (
	StateIdle                     State = "idle"
	StatePaymentType              State = "payment_type"
	StateValue                    State = "value"
	StateDescription              State = "description"
	StateCategory                 State = "category"
	StateConfirmation             State = "confirmation"
	StateDeleteConfirmation       State = "delete_confirmation"
	StateIncomeMenu               State = "income_menu"
	StateIncomeValue              State = "income_value"
	StateIncomeDescription        State = "income_description"
	StateIncomeType               State = "income_type"
	StateIncomeConfirmation       State = "income_confirmation"
	StateIncomeDeleteConfirmation State = "income_delete_confirmation"
	StateAnalyticsMenu            State = "analytics_menu"
	StateCategoryChart            State = "category_chart"
)

// Flow - вид записи, которую собирает диалог
type Flow string

const (
	FlowExpense Flow = "expense"
	FlowIncome  Flow = "income"
)

// PendingDelete - строка, выбранная для удаления, и её позиция на момент запроса
type PendingDelete struct {
	Position int      `json:"position"`
	Row      []string `json:"row"`
}

// Session хранит текущее состояние пользователя и накопленные поля записи
type Session struct {
	UserID        int64           `json:"user_id"`
	State         State           `json:"state"`
	Flow          Flow            `json:"flow"`
	PaymentType   string          `json:"payment_type,omitempty"`
	Date          string          `json:"date,omitempty"`
	YearMonth     string          `json:"year_month,omitempty"`
	Value         decimal.Decimal `json:"value"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	IncomeType    string          `json:"income_type,omitempty"`
	PendingDelete *PendingDelete  `json:"pending_delete,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewSession создаёт пустую сессию в заданном состоянии
func NewSession(userID int64, flow Flow, state State) *Session {
	return &Session{
		UserID: userID,
		Flow:   flow,
		State:  state,
	}
}

// Stamp проставляет дату и месяц начала записи
func (s *Session) Stamp(now time.Time) {
	s.Date = now.Format(DateLayout)
	s.YearMonth = now.Format(YearMonthLayout)
}

// Transaction собирает запись из накопленных полей
func (s *Session) Transaction(user string) Transaction {
	label := s.Category
	if s.Flow == FlowIncome {
		label = s.IncomeType
	}
	return Transaction{
		Date:        s.Date,
		Value:       s.Value,
		Description: s.Description,
		Label:       label,
		PaymentType: s.PaymentType,
		YearMonth:   s.YearMonth,
		User:        user,
	}
}

// Clone возвращает независимую копию сессии
func (s *Session) Clone() *Session {
	c := *s
	if s.PendingDelete != nil {
		pd := *s.PendingDelete
		pd.Row = append([]string(nil), s.PendingDelete.Row...)
		c.PendingDelete = &pd
	}
	return &c
}

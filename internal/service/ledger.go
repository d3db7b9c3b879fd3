package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/repository"
)

var (
	ErrNothingToDelete = errors.New("no entries to delete")
	ErrRowChanged      = errors.New("last entry changed since deletion was requested")
	ErrUnknownFlow     = errors.New("unknown flow")
)

// DeletePolicy определяет, какую строку удалять после подтверждения
type DeletePolicy string

const (
	// DeleteLatest удаляет последнюю строку на момент подтверждения
	DeleteLatest DeletePolicy = "latest"
	// DeleteVerified удаляет последнюю строку, только если она совпадает с показанной пользователю
	DeleteVerified DeletePolicy = "verified"
	// DeleteCaptured удаляет строку по номеру, запомненному при запросе
	DeleteCaptured DeletePolicy = "captured"
)

// Entry - непустая строка таблицы и её номер (с 1, включая заголовок)
type Entry struct {
	Position int
	Row      []string
}

// Ledger - журнал расходов и доходов поверх двух таблиц
type Ledger struct {
	tables map[model.Flow]repository.Table
	policy DeletePolicy

	mu          sync.Mutex
	headerReady map[model.Flow]bool
}

func NewLedger(expenses, incomes repository.Table, policy DeletePolicy) *Ledger {
	if policy == "" {
		policy = DeleteLatest
	}
	return &Ledger{
		tables: map[model.Flow]repository.Table{
			model.FlowExpense: expenses,
			model.FlowIncome:  incomes,
		},
		policy:      policy,
		headerReady: make(map[model.Flow]bool),
	}
}

func (l *Ledger) Policy() DeletePolicy {
	return l.policy
}

func (l *Ledger) table(flow model.Flow) (repository.Table, error) {
	t, ok := l.tables[flow]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, flow)
	}
	return t, nil
}

// HeaderFor возвращает строку заголовка таблицы
func HeaderFor(flow model.Flow) []string {
	if flow == model.FlowIncome {
		return model.IncomeHeader
	}
	return model.ExpenseHeader
}

// EnsureHeader записывает заголовок в пустую таблицу.
// Таблицы с фиксированной схемой пропускаются.
func (l *Ledger) EnsureHeader(ctx context.Context, flow model.Flow) error {
	t, err := l.table(flow)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.headerReady[flow] {
		return nil
	}
	if !repository.NeedsHeader(t) {
		l.headerReady[flow] = true
		return nil
	}

	rows, err := t.Rows(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s table: %w", flow, err)
	}
	if len(rows) == 0 {
		if err := t.Append(ctx, HeaderFor(flow)); err != nil {
			return fmt.Errorf("failed to write %s header: %w", flow, err)
		}
	}
	l.headerReady[flow] = true
	return nil
}

// Append добавляет запись. Перед первой записью дохода создаётся заголовок.
func (l *Ledger) Append(ctx context.Context, flow model.Flow, tx model.Transaction) error {
	t, err := l.table(flow)
	if err != nil {
		return err
	}
	if flow == model.FlowIncome {
		if err := l.EnsureHeader(ctx, flow); err != nil {
			return err
		}
	}
	if err := t.Append(ctx, tx.Row()); err != nil {
		return fmt.Errorf("failed to append %s row: %w", flow, err)
	}
	return nil
}

// Entries возвращает все записи таблицы без заголовка и пустых строк
func (l *Ledger) Entries(ctx context.Context, flow model.Flow) ([]Entry, error) {
	t, err := l.table(flow)
	if err != nil {
		return nil, err
	}
	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", flow, err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		if i == 0 && model.IsHeader(row, HeaderFor(flow)) {
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		entries = append(entries, Entry{Position: i + 1, Row: row})
	}
	return entries, nil
}

// Last возвращает не более n последних записей, от старых к новым
func (l *Ledger) Last(ctx context.Context, flow model.Flow, n int) ([]Entry, error) {
	entries, err := l.Entries(ctx, flow)
	if err != nil {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// CaptureLast запоминает номер и содержимое последней записи для подтверждения удаления
func (l *Ledger) CaptureLast(ctx context.Context, flow model.Flow) (*model.PendingDelete, error) {
	entries, err := l.Entries(ctx, flow)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNothingToDelete
	}
	last := entries[len(entries)-1]
	return &model.PendingDelete{
		Position: last.Position,
		Row:      append([]string(nil), last.Row...),
	}, nil
}

// DeleteLast удаляет запись согласно политике и возвращает удалённую строку
func (l *Ledger) DeleteLast(ctx context.Context, flow model.Flow, pending *model.PendingDelete) (Entry, error) {
	t, err := l.table(flow)
	if err != nil {
		return Entry{}, err
	}

	var target Entry
	switch l.policy {
	case DeleteCaptured:
		if pending == nil {
			return Entry{}, ErrNothingToDelete
		}
		target = Entry{Position: pending.Position, Row: pending.Row}

	case DeleteLatest, DeleteVerified:
		entries, err := l.Entries(ctx, flow)
		if err != nil {
			return Entry{}, err
		}
		if len(entries) == 0 {
			return Entry{}, ErrNothingToDelete
		}
		target = entries[len(entries)-1]
		if l.policy == DeleteVerified && (pending == nil || !model.SameRow(target.Row, pending.Row)) {
			return Entry{}, ErrRowChanged
		}

	default:
		return Entry{}, fmt.Errorf("unknown delete policy %q", l.policy)
	}

	if err := t.DeleteRow(ctx, target.Position); err != nil {
		return Entry{}, fmt.Errorf("failed to delete %s row %d: %w", flow, target.Position, err)
	}
	return target, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	postgrest "github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/budget_bot/internal/model"
)

// supabaseRecord - строка таблицы Supabase. Порядок строк задаёт id.
type supabaseRecord struct {
	ID          int64           `json:"id,omitempty"`
	Date        string          `json:"date"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	Label       string          `json:"label"`
	PaymentType string          `json:"payment_type"`
	YearMonth   string          `json:"year_month"`
	UserLabel   string          `json:"user_label"`
}

func (r supabaseRecord) row() []string {
	return model.Transaction{
		Date:        r.Date,
		Value:       r.Value,
		Description: r.Description,
		Label:       r.Label,
		PaymentType: r.PaymentType,
		YearMonth:   r.YearMonth,
		User:        r.UserLabel,
	}.Row()
}

// SupabaseTable - таблица Supabase (PostgREST) с фиксированными колонками
type SupabaseTable struct {
	client *supabase.Client
	table  string
}

func NewSupabaseClient(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

func NewSupabaseTable(client *supabase.Client, table string) *SupabaseTable {
	return &SupabaseTable{client: client, table: table}
}

// HasFixedSchema - колонки заданы схемой таблицы, заголовок не нужен
func (t *SupabaseTable) HasFixedSchema() bool { return true }

func (t *SupabaseTable) records(columns string) ([]supabaseRecord, error) {
	data, _, err := t.client.From(t.table).
		Select(columns, "", false).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", t.table, err)
	}

	var records []supabaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s rows: %w", t.table, err)
	}
	return records, nil
}

// Ping проверяет доступность таблицы
func (t *SupabaseTable) Ping(ctx context.Context) error {
	_, err := t.records("id")
	return err
}

func (t *SupabaseTable) Rows(_ context.Context) ([][]string, error) {
	records, err := t.records("*")
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return rows, nil
}

func (t *SupabaseTable) Append(_ context.Context, row []string) error {
	tx, err := model.TransactionFromRow(row)
	if err != nil {
		return fmt.Errorf("invalid row for %s: %w", t.table, err)
	}

	rec := supabaseRecord{
		Date:        tx.Date,
		Value:       tx.Value,
		Description: tx.Description,
		Label:       tx.Label,
		PaymentType: tx.PaymentType,
		YearMonth:   tx.YearMonth,
		UserLabel:   tx.User,
	}
	if _, _, err := t.client.From(t.table).Insert(rec, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.table, err)
	}
	return nil
}

// DeleteRow удаляет строку с заданным порядковым номером (по возрастанию id)
func (t *SupabaseTable) DeleteRow(_ context.Context, position int) error {
	records, err := t.records("id")
	if err != nil {
		return err
	}
	if position < 1 || position > len(records) {
		return fmt.Errorf("delete row %d of %d from %s: %w", position, len(records), t.table, ErrPosition)
	}

	id := strconv.FormatInt(records[position-1].ID, 10)
	if _, _, err := t.client.From(t.table).Delete("minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to delete %s id %s: %w", t.table, id, err)
	}
	return nil
}

var _ Table = (*SupabaseTable)(nil)

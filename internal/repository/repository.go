// Package repository - табличные хранилища строк расходов и доходов.
package repository

import (
	"context"
	"errors"
)

// ErrPosition возвращается при удалении строки за пределами таблицы
var ErrPosition = errors.New("row position out of range")

// Table - удалённая таблица: чтение всех строк, добавление строки, удаление строки по номеру.
// Номера строк начинаются с 1 и учитывают строку заголовка, если она есть.
type Table interface {
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []string) error
	DeleteRow(ctx context.Context, position int) error
}

// FixedSchema реализуют таблицы, колонки которых заданы схемой.
// Для них строка заголовка не создаётся.
type FixedSchema interface {
	HasFixedSchema() bool
}

// NeedsHeader сообщает, нужно ли таблице хранить строку заголовка
func NeedsHeader(t Table) bool {
	fs, ok := t.(FixedSchema)
	return !ok || !fs.HasFixedSchema()
}

package model

import "slices"

// Currency - способ оплаты, доступный в меню
type Currency struct {
	Code string `mapstructure:"code"`
	Flag string `mapstructure:"flag"`
}

// Label - текст кнопки выбора валюты для расхода
func (c Currency) Label() string {
	if c.Flag == "" {
		return c.Code
	}
	return c.Code + " " + c.Flag
}

// IncomeLabel - текст кнопки выбора валюты для дохода
func (c Currency) IncomeLabel() string {
	return "Income " + c.Label()
}

// Options - фиксированные наборы значений, из которых пользователь выбирает кнопками
type Options struct {
	Currencies  []Currency
	Categories  []string
	IncomeTypes []string
}

// IsCategory проверяет принадлежность категории набору
func (o Options) IsCategory(s string) bool {
	return slices.Contains(o.Categories, s)
}

// IsIncomeType проверяет принадлежность типа дохода набору
func (o Options) IsIncomeType(s string) bool {
	return slices.Contains(o.IncomeTypes, s)
}

// CurrencyCodes возвращает коды валют в порядке конфигурации
func (o Options) CurrencyCodes() []string {
	codes := make([]string, 0, len(o.Currencies))
	for _, c := range o.Currencies {
		codes = append(codes, c.Code)
	}
	return codes
}

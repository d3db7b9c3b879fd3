package bot

// Количество кнопок в ряду для категорий и типов дохода
const buttonsPerRow = 3

func (b *Bot) getMainKeyboard() Keyboard {
	currencies := make([]string, 0, len(b.choices.Currencies))
	for _, c := range b.choices.Currencies {
		currencies = append(currencies, c.Label())
	}
	return Keyboard{
		currencies,
		{labelShowLast, labelAnalytics},
		{labelDeleteLast, labelIncomeMenu},
	}
}

func (b *Bot) getIncomeMenuKeyboard() Keyboard {
	currencies := make([]string, 0, len(b.choices.Currencies))
	for _, c := range b.choices.Currencies {
		currencies = append(currencies, c.IncomeLabel())
	}
	return Keyboard{
		currencies,
		{labelIncomeShowLast, labelIncomeDelete},
		{labelBackToMain},
	}
}

func (b *Bot) getAnalyticsKeyboard() Keyboard {
	return Keyboard{
		{labelTwoMonths, labelLastYear},
		{labelCategoryChart},
		{labelAnalyticsBack},
	}
}

func (b *Bot) getCategoriesKeyboard() Keyboard {
	return gridKeyboard(b.choices.Categories)
}

func (b *Bot) getIncomeTypesKeyboard() Keyboard {
	return gridKeyboard(b.choices.IncomeTypes)
}

func getConfirmationKeyboard() Keyboard {
	return Keyboard{{answerYes, answerNo}}
}

func gridKeyboard(labels []string) Keyboard {
	var rows Keyboard
	for start := 0; start < len(labels); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(labels))
		rows = append(rows, append([]string(nil), labels[start:end]...))
	}
	return rows
}

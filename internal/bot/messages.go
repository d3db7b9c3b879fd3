package bot

import (
	"fmt"
	"strings"

	"github.com/ivanoskov/budget_bot/internal/model"
)

const (
	msgUnauthorized   = "⛔️ Sorry, you are not authorized to use this bot.\nPlease contact the administrator for access."
	msgSomethingWrong = "Sorry, something went wrong. Please try again later."
	msgStartFirst     = "Please use /start command first"
	msgHello          = "Hello, let's start!"
	msgChoosePayment  = "Please choose a payment type:"
	msgBackToMain     = "🏠 Back to main menu:"
	msgAnswerYesNo    = "Please answer Yes or No."

	msgEnterDescription = "Enter the description:"
	msgChooseCategory   = "Choose a category:"
	msgInvalidCategory  = "Invalid category. Please choose a valid category."
	msgExpenseSaved     = "✅ Expense recorded successfully!"
	msgExpenseFailed    = "❌ Failed to record expense. Please try again later."
	msgExpenseCancelled = "Expense recording cancelled. Choose payment type:"

	msgNoEntries       = "No entries found."
	msgFetchFailed     = "❌ Failed to fetch entries. Please try again later."
	msgNoDataToDelete  = "No data to delete."
	msgPrepareFailed   = "❌ Failed to prepare deletion. Please try again later."
	msgRowDeleted      = "✅ Last row deleted successfully!"
	msgDeleteFailed    = "❌ Failed to delete row. Please try again later."
	msgDeleteCancelled = "Deletion cancelled."
	msgRowChanged      = "⚠️ The last entry changed after you asked to delete it. Nothing was deleted."

	msgIncomeMenu            = "💰 Income Menu - Choose an option:"
	msgInvalidIncomeType     = "❌ Invalid income type. Please choose a valid type."
	msgIncomeFailed          = "❌ Failed to save income entry. Please try again."
	msgIncomeCancelled       = "❌ Income entry cancelled."
	msgNoIncomeEntries       = "💰 No income entries found."
	msgIncomeFetchFailed     = "❌ Failed to retrieve income entries. Please try again later."
	msgNoIncomeToDelete      = "💰 No income entries to delete."
	msgIncomeRowDeleted      = "✅ Last income entry deleted successfully!"
	msgIncomeDeleteFailed    = "❌ Failed to delete income entry. Please try again later."
	msgIncomeDeleteCancelled = "❌ Deletion cancelled."

	msgAvailableAnalytics = "Available analytics:"
	msgChooseAnalytics    = "Choose analytics type:"
	msgChooseAnother      = "Choose another action:"
	msgChooseChartCat     = "Choose a category to view its chart:"
	msgNoAnalyticsData    = "No data available for analytics."
	msgNoTwoMonthsData    = "No data available for the last two months."
	msgNoLastYearData     = "No data available for the last 12 months."
	msgAnalyticsFailed    = "❌ Failed to generate analytics. Please try again later."
	msgChartFailed        = "❌ Failed to generate chart. Please try again later."
)

const msgHelp = "🤖 *Budget Bot Help*\n\n" +
	"Available commands:\n" +
	"• /start - Start the bot\n" +
	"• /help - Show this help message\n\n" +
	"Features:\n" +
	"• Add expenses and income in any configured currency\n" +
	"• Categorize your expenses\n" +
	"• View last 3 entries\n" +
	"• View monthly analytics\n" +
	"• Delete last entry\n\n" +
	"Need more help? Contact the administrator."

// rowCells дополняет строку до полной ширины
func rowCells(row []string) []string {
	cells := make([]string, model.RowWidth)
	copy(cells, row)
	return cells
}

func formatExpenseEntry(row []string) string {
	c := rowCells(row)
	return fmt.Sprintf(
		"📅 Date: %s\n"+
			"💰 Value: %s\n"+
			"📝 Description: %s\n"+
			"🏷️ Category: %s\n"+
			"💳 Payment Type: %s\n"+
			"📅 Year/Month: %s\n"+
			"👤 User: %s",
		c[0], c[1], c[2], c[3], c[4], c[5], c[6],
	)
}

func formatIncomeEntry(row []string) string {
	c := rowCells(row)
	return fmt.Sprintf(
		"📅 Date: %s\n"+
			"💰 Amount: %s %s\n"+
			"📝 Description: %s\n"+
			"🏷️ Type: %s\n"+
			"📅 Year/Month: %s\n"+
			"👤 User: %s",
		c[0], c[1], c[4], c[2], c[3], c[5], c[6],
	)
}

func expenseConfirmation(s *model.Session) string {
	return fmt.Sprintf(
		"Date: %s\n"+
			"Value: %s\n"+
			"Description: %s\n"+
			"Category: %s\n"+
			"Payment Type: %s\n"+
			"Year/Month: %s\n"+
			"Confirm? (Yes/No)",
		s.Date, s.Value.String(), s.Description, s.Category, s.PaymentType, s.YearMonth,
	)
}

func incomeConfirmation(s *model.Session, user string) string {
	return fmt.Sprintf(
		"💰 Please confirm your income entry:\n\n"+
			"📅 Date: %s\n"+
			"💰 Amount: %s %s\n"+
			"📝 Description: %s\n"+
			"🏷️ Type: %s\n"+
			"👤 User: %s\n\n"+
			"Is this correct?",
		s.Date, s.Value.String(), s.PaymentType, s.Description, s.IncomeType, user,
	)
}

func joinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n\n")
}

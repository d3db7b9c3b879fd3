// Package charts рисует PNG-графики аналитики расходов.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/service"
)

// ErrNoData возвращается, если рисовать нечего
var ErrNoData = errors.New("no data to chart")

// Окно скользящего среднего в месяцах
const trendWindow = 3

const (
	pieSize    = 800
	lineWidth  = 1200
	lineHeight = 600
	margin     = 50
	fontSize   = 12
)

// Renderer рисует диаграммы для бота
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func textStyle() chart.Style {
	return chart.Style{FontSize: fontSize, FontColor: chart.ColorBlack}
}

func canvasStyle() chart.Style {
	return chart.Style{
		Padding:   chart.Box{Top: margin, Left: margin, Right: margin, Bottom: margin},
		FillColor: chart.ColorWhite,
	}
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(what string, r renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", what, err)
	}
	return buf.Bytes(), nil
}

// movingAverage считает среднее по окну из последних window точек
func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// CategoryPie рисует доли категорий в расходах месяца.
// Категории с долей меньше 1% не попадают на диаграмму.
func (r *Renderer) CategoryPie(report service.MonthReport) ([]byte, error) {
	slices := make([]chart.Value, 0, len(report.Categories))
	for _, stat := range report.Categories {
		amount := stat.Value.InexactFloat64()
		if amount <= 0 || stat.Share < 1.0 {
			continue
		}
		slices = append(slices, chart.Value{
			Label: fmt.Sprintf("%s: %.0f (%.1f%%)", stat.Category, amount, stat.Share),
			Value: amount,
			Style: textStyle(),
		})
	}
	if len(slices) == 0 {
		return nil, ErrNoData
	}

	return renderPNG("category pie chart", chart.PieChart{
		Title:      fmt.Sprintf("Expenses %s (%s)", report.YearMonth, report.Currency),
		Width:      pieSize,
		Height:     pieSize,
		Values:     slices,
		Background: canvasStyle(),
	})
}

// MonthlyLine рисует помесячные суммы и линию тренда
func (r *Renderer) MonthlyLine(title string, points []service.MonthTotal) ([]byte, error) {
	if len(points) < 2 || !service.HasValues(points) {
		return nil, ErrNoData
	}

	months := make([]time.Time, len(points))
	totals := make([]float64, len(points))
	var peak float64
	for i, p := range points {
		month, err := time.Parse(model.YearMonthLayout, p.YearMonth)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", p.YearMonth, err)
		}
		months[i] = month
		totals[i] = p.Value.InexactFloat64()
		peak = max(peak, totals[i])
	}

	graph := chart.Chart{
		Title:      title,
		Width:      lineWidth,
		Height:     lineHeight,
		Background: canvasStyle(),
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(model.YearMonthLayout),
			Style:          textStyle(),
		},
		YAxis: chart.YAxis{
			// Без явного диапазона go-chart падает на ряду из одинаковых значений
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: textStyle(),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total",
				XValues: months,
				YValues: totals,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 3,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
			chart.TimeSeries{
				Name:    fmt.Sprintf("Trend (%d months)", trendWindow),
				XValues: months,
				YValues: movingAverage(totals, trendWindow),
				Style: chart.Style{
					StrokeColor:     chart.ColorRed.WithAlpha(100),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph, textStyle())}

	return renderPNG("monthly chart", graph)
}

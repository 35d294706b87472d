package reports

import (
	"fmt"
	"time"

	"depot/internal/models"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorHeader = &props.Color{Red: 59, Green: 130, Blue: 246}
	colorMuted  = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// StockSummaryPDF renders the current-stock projection as a PDF table.
func StockSummaryPDF(title string, views []*models.StockView) ([]byte, error) {
	m := newDocument(title)

	m.AddRows(tableHeader("Product", "SKU", "Warehouse", "Quantity"))
	for _, v := range views {
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(v.ProductName, cellText())),
			col.New(3).Add(text.New(v.ProductSKU, cellText())),
			col.New(3).Add(text.New(v.WarehouseName, cellText())),
			col.New(3).Add(text.New(fmt.Sprintf("%d", v.Quantity), cellTextRight())),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate stock pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// MovementsPDF renders ledger history as a PDF table.
func MovementsPDF(title string, rows []MovementRow) ([]byte, error) {
	m := newDocument(title)

	m.AddRows(tableHeader("Date", "Type", "Product", "Qty", "From", "To"))
	for _, r := range rows {
		m.AddRows(row.New(6).Add(
			col.New(2).Add(text.New(r.Date, cellText())),
			col.New(2).Add(text.New(r.Type, cellText())),
			col.New(2).Add(text.New(r.Product, cellText())),
			col.New(2).Add(text.New(fmt.Sprintf("%d", r.Quantity), cellTextRight())),
			col.New(2).Add(text.New(r.From, cellText())),
			col.New(2).Add(text.New(r.To, cellText())),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate movements pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		Build()

	m := maroto.New(cfg)
	m.AddRows(row.New(10).Add(
		col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 14, Align: align.Center,
		})),
	))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("Generated "+time.Now().Format("2006-01-02"), props.Text{
			Size: 8, Align: align.Center, Color: colorMuted,
		})),
	))
	m.AddRows(line.NewRow(2, props.Line{Color: colorHeader, Thickness: 0.5}))
	return m
}

func tableHeader(labels ...string) core.Row {
	width := 12 / len(labels)
	cols := make([]core.Col, 0, len(labels))
	for _, l := range labels {
		cols = append(cols, col.New(width).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorHeader,
		})))
	}
	return row.New(7).Add(cols...)
}

func cellText() props.Text {
	return props.Text{Size: 8}
}

func cellTextRight() props.Text {
	return props.Text{Size: 8, Align: align.Right}
}

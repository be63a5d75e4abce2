// Package pdf renders the fixed invoice document layout: header, dates,
// from/bill-to blocks, items table, totals block, optional notes and payment
// details. Rendering is CPU-bound and can take a while on large documents,
// so Render is context-bounded.
package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Item is one row of the line-items table.
type Item struct {
	Description string
	Quantity    float64
	Price       float64
	Amount      float64
}

// Party is one side of the from/bill-to block.
type Party struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// PaymentDetails is the optional bank block at the bottom of the document.
type PaymentDetails struct {
	BankName      string
	AccountNumber string
	RoutingNumber string
}

// InvoiceData is everything the renderer needs. Monetary fields are the
// server-recomputed amounts; TaxRate and Discount also gate whether their
// lines appear at all.
type InvoiceData struct {
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	From          Party
	BillTo        Party
	Items         []Item
	Subtotal      float64
	TaxRate       float64
	TaxAmount     float64
	Discount      float64
	Total         float64
	Notes         string
	Payment       PaymentDetails
}

// Render produces the PDF bytes for an invoice. The context bounds the
// generation; a cancelled or expired context aborts with its error.
func Render(ctx context.Context, data InvoiceData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		doc core.Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := build(data).Generate()
		done <- result{doc: doc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("pdf generation: %w", res.err)
		}
		return res.doc.GetBytes(), nil
	}
}

func build(data InvoiceData) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	// Header: business name and invoice number, centered
	m.AddRow(12, text.NewCol(12, data.From.Name, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center}))
	m.AddRow(8, text.NewCol(12, "Invoice #"+data.InvoiceNumber, props.Text{Size: 12, Align: align.Center}))
	m.AddRow(4, col.New(12))

	// Dates
	m.AddRow(5, text.NewCol(12, "Issue Date: "+data.IssueDate, props.Text{Size: 9}))
	m.AddRow(5, text.NewCol(12, "Due Date: "+data.DueDate, props.Text{Size: 9}))
	m.AddRow(4, col.New(12))

	// From / Bill To, two columns
	m.AddRow(6,
		text.NewCol(6, "From:", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(6, "Bill To:", props.Text{Size: 10, Style: fontstyle.Bold}),
	)
	fromLines := partyLines(data.From)
	billLines := partyLines(data.BillTo)
	for i := 0; i < len(fromLines) || i < len(billLines); i++ {
		var left, right string
		if i < len(fromLines) {
			left = fromLines[i]
		}
		if i < len(billLines) {
			right = billLines[i]
		}
		m.AddRow(5,
			text.NewCol(6, left, props.Text{Size: 9}),
			text.NewCol(6, right, props.Text{Size: 9}),
		)
	}
	m.AddRow(4, col.New(12))

	// Items table
	m.AddRow(7,
		text.NewCol(6, "Description", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Quantity", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRows(line.NewRow(2))
	for _, item := range data.Items {
		m.AddRow(6,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%g", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("$%.2f", item.Price), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("$%.2f", item.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRows(line.NewRow(2))
	m.AddRow(4, col.New(12))

	// Totals, right aligned; tax and discount lines only when applicable
	m.AddRow(5, text.NewCol(12, fmt.Sprintf("Subtotal: $%.2f", data.Subtotal), props.Text{Size: 9, Align: align.Right}))
	if data.TaxRate > 0 {
		m.AddRow(5, text.NewCol(12, fmt.Sprintf("Tax (%.1f%%): $%.2f", data.TaxRate, data.TaxAmount), props.Text{Size: 9, Align: align.Right}))
	}
	if data.Discount > 0 {
		m.AddRow(5, text.NewCol(12, fmt.Sprintf("Discount: $%.2f", data.Discount), props.Text{Size: 9, Align: align.Right}))
	}
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Total: $%.2f", data.Total), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}))

	if data.Notes != "" {
		m.AddRow(4, col.New(12))
		m.AddRow(6, text.NewCol(12, "Notes:", props.Text{Size: 10, Style: fontstyle.Bold}))
		m.AddRow(5, text.NewCol(12, data.Notes, props.Text{Size: 9}))
	}

	if data.Payment.BankName != "" || data.Payment.AccountNumber != "" || data.Payment.RoutingNumber != "" {
		m.AddRow(4, col.New(12))
		m.AddRow(6, text.NewCol(12, "Payment Details:", props.Text{Size: 10, Style: fontstyle.Bold}))
		if data.Payment.BankName != "" {
			m.AddRow(5, text.NewCol(12, "Bank: "+data.Payment.BankName, props.Text{Size: 9}))
		}
		if data.Payment.AccountNumber != "" {
			m.AddRow(5, text.NewCol(12, "Account Number: "+data.Payment.AccountNumber, props.Text{Size: 9}))
		}
		if data.Payment.RoutingNumber != "" {
			m.AddRow(5, text.NewCol(12, "Routing Number: "+data.Payment.RoutingNumber, props.Text{Size: 9}))
		}
	}

	return m
}

func partyLines(p Party) []string {
	lines := make([]string, 0, 4)
	if p.Name != "" {
		lines = append(lines, p.Name)
	}
	if p.Email != "" {
		lines = append(lines, p.Email)
	}
	if p.Phone != "" {
		lines = append(lines, p.Phone)
	}
	if p.Address != "" {
		lines = append(lines, p.Address)
	}
	return lines
}

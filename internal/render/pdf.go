package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/sirupsen/logrus"
)

var (
	accent    = &props.Color{Red: 37, Green: 99, Blue: 235}
	headerBg  = &props.Color{Red: 243, Green: 244, Blue: 246}
	muted     = &props.Color{Red: 107, Green: 114, Blue: 128}
	summaryBg = &props.Color{Red: 239, Green: 246, Blue: 255}
)

// PDF renders A4 documents with maroto.
type PDF struct {
	log logrus.FieldLogger
}

func NewPDF(log logrus.FieldLogger) *PDF {
	return &PDF{log: log}
}

// Render implements services.Renderer.
func (p *PDF) Render(ctx context.Context, company models.CompanyInfo, doc *models.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logo, err := DecodeLogo(company.Logo)
	if err != nil {
		p.log.WithError(err).Warn("company logo ignored")
		logo = nil
	}
	v := NewView(company, doc, SymbolPDF)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	addHeader(m, v, logo)
	addParties(m, v)
	addLines(m, v)
	addSummary(m, v)
	addNotes(m, v)
	m.AddRows(
		line.NewRow(6),
		text.NewRow(6, v.Footer, props.Text{Size: 8, Align: align.Center, Color: muted}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func addHeader(m core.Maroto, v View, logo []byte) {
	bold := props.Text{Size: 16, Style: fontstyle.Bold, Color: accent}
	small := props.Text{Size: 9, Top: 1}
	if len(logo) > 0 {
		m.AddRow(24,
			image.NewFromBytesCol(3, logo, extension.Png, props.Rect{Center: true, Percent: 90}),
			col.New(5).Add(
				text.New(v.Company.Name, bold),
				text.New(v.Company.Address, props.Text{Size: 9, Top: 9}),
			),
			text.NewCol(4, v.Title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Right}),
		)
	} else {
		m.AddRow(12,
			text.NewCol(8, v.Company.Name, bold),
			text.NewCol(4, v.Title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Right}),
		)
		m.AddRow(5, text.NewCol(12, v.Company.Address, small))
	}
	m.AddRow(5, text.NewCol(12, v.Company.Contact, small))
	gst := "GSTIN: " + v.Company.GSTIN
	if v.Company.Website != "" {
		gst += " | " + v.Company.Website
	}
	m.AddRow(5, text.NewCol(12, gst, small))
	m.AddRows(line.NewRow(6, props.Line{Color: accent, Thickness: 0.6}))
}

func addParties(m core.Maroto, v View) {
	label := props.Text{Size: 11, Style: fontstyle.Bold}
	val := props.Text{Size: 9}
	right := props.Text{Size: 9, Align: align.Right}

	m.AddRow(7,
		text.NewCol(6, "Customer Details", label),
		text.NewCol(6, v.Kind+" Info", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(6, "Name: "+v.Customer.Name, val),
		text.NewCol(6, "Number: "+v.Number, right),
	)
	m.AddRow(5,
		text.NewCol(6, "Phone: "+v.Customer.Phone, val),
		text.NewCol(6, "Date: "+v.IssueDate, right),
	)
	validity := ""
	if v.ValidUntil != "" {
		validity = "Valid Until: " + v.ValidUntil
	}
	m.AddRow(5,
		text.NewCol(6, "Email: "+v.Customer.Email, val),
		text.NewCol(6, validity, right),
	)
	if v.Customer.Address != "" {
		m.AddRow(5, text.NewCol(12, "Address: "+v.Customer.Address, val))
	}
	m.AddRows(line.NewRow(4, props.Line{Color: headerBg}))
}

func addLines(m core.Maroto, v View) {
	head := props.Text{Size: 9, Style: fontstyle.Bold, Top: 1.5}
	headRight := head
	headRight.Align = align.Right
	m.AddRow(8,
		text.NewCol(1, "#", head),
		text.NewCol(5, "Component", head),
		text.NewCol(2, "Brand", head),
		text.NewCol(1, "Qty", headRight),
		text.NewCol(2, "Unit Price", headRight),
		text.NewCol(1, "Total", headRight),
	).WithStyle(&props.Cell{BackgroundColor: headerBg})

	cell := props.Text{Size: 8, Top: 1}
	cellRight := cell
	cellRight.Align = align.Right
	for _, l := range v.Lines {
		name := l.Name
		if l.Warranty != "" {
			name += " (" + l.Warranty + " warranty)"
		}
		m.AddRows(row.New(9).Add(
			text.NewCol(1, fmt.Sprint(l.Index), cell),
			text.NewCol(5, name, cell),
			text.NewCol(2, l.Brand, cell),
			text.NewCol(1, fmt.Sprint(l.Quantity), cellRight),
			text.NewCol(2, l.UnitPrice, cellRight),
			text.NewCol(1, l.Total, cellRight),
		))
	}
	m.AddRows(line.NewRow(4))
}

func addSummary(m core.Maroto, v View) {
	label := props.Text{Size: 9, Align: align.Right}
	amount := props.Text{Size: 9, Align: align.Right}
	summary := func(name, value string) {
		m.AddRow(6, col.New(6), text.NewCol(3, name, label), text.NewCol(3, value, amount))
	}
	summary("Subtotal", v.Subtotal)
	if v.HasDiscount {
		summary(v.DiscountLabel, v.Discount)
	}
	summary(v.GSTLabel, v.GST)
	bold := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 1, Color: accent}
	m.AddRow(9,
		col.New(6),
		text.NewCol(3, "Total Amount", bold),
		text.NewCol(3, v.Total, bold),
	).WithStyle(&props.Cell{BackgroundColor: summaryBg})
}

func addNotes(m core.Maroto, v View) {
	if len(v.Notes) == 0 {
		return
	}
	m.AddRow(4)
	m.AddRow(7, text.NewCol(12, "Terms & Conditions", props.Text{Size: 10, Style: fontstyle.Bold}))
	for _, n := range v.Notes {
		m.AddRow(5, text.NewCol(12, strings.Replace(n, "•", "-", 1), props.Text{Size: 8, Color: muted}))
	}
}

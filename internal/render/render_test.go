package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *models.Document {
	issued := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	valid := issued.AddDate(0, 0, 30)
	return &models.Document{
		Number:     "QUO-20250114-3F9A1C",
		Type:       models.DocumentQuotation,
		IssueDate:  issued,
		ValidUntil: &valid,
		Customer:   models.Customer{Name: "A", Phone: "123"},
		Lines: []models.DocumentLine{
			{Name: "Ryzen 5 7600", Brand: "AMD", Category: models.CategoryCPU, Warranty: "3 Years", Quantity: 2, UnitPrice: 1000, LineTotal: 2000},
		},
		Subtotal:       2000,
		DiscountRate:   10,
		DiscountAmount: 200,
		TaxableAmount:  1800,
		GSTRate:        18,
		GSTAmount:      324,
		TotalAmount:    2124,
		Notes:          "• All prices are inclusive of GST\n\n• Payment terms: 50% advance",
	}
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 37, G: 99, B: 235, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewView(t *testing.T) {
	v := NewView(models.DefaultCompanyInfo(), sampleDocument(), SymbolHTML)
	assert.Equal(t, "QUOTATION", v.Title)
	assert.Equal(t, "Quotation", v.Kind)
	assert.Equal(t, "14 Jan 2025", v.IssueDate)
	assert.Equal(t, "13 Feb 2025", v.ValidUntil)
	assert.Equal(t, "₹2,000.00", v.Subtotal)
	assert.Equal(t, "Discount (10%)", v.DiscountLabel)
	assert.Equal(t, "-₹200.00", v.Discount)
	assert.True(t, v.HasDiscount)
	assert.Equal(t, "GST (18%)", v.GSTLabel)
	assert.Equal(t, "₹324.00", v.GST)
	assert.Equal(t, "₹2,124.00", v.Total)
	assert.Equal(t, "N/A", v.Customer.Email)
	assert.Empty(t, v.Customer.Address)
	assert.Equal(t, "+91 XXXXX XXXXX | info@itserviceworld.com", v.Company.Contact)
	assert.Equal(t, "Generated by IT SERVICE WORLD - www.itserviceworld.com", v.Footer)
	assert.Len(t, v.Notes, 2)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 1, v.Lines[0].Index)
	assert.Equal(t, "₹1,000.00", v.Lines[0].UnitPrice)
}

func TestNewViewInvoice(t *testing.T) {
	doc := sampleDocument()
	doc.Type = models.DocumentInvoice
	doc.ValidUntil = nil
	doc.DiscountAmount = 0
	v := NewView(models.CompanyInfo{Name: "Shop"}, doc, SymbolPDF)
	assert.Equal(t, "INVOICE", v.Title)
	assert.Equal(t, "Invoice", v.Kind)
	assert.Empty(t, v.ValidUntil)
	assert.False(t, v.HasDiscount)
	assert.Equal(t, "Rs. 2,124.00", v.Total)
	assert.Equal(t, "Generated by Shop", v.Footer)
}

func TestPDFRender(t *testing.T) {
	r := NewPDF(quietLogger())
	out, err := r.Render(context.Background(), models.DefaultCompanyInfo(), sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output is not a PDF")
}

func TestPDFRenderWithLogo(t *testing.T) {
	company := models.DefaultCompanyInfo()
	company.Logo = "data:image/png;base64," + pngBase64(t, 40, 20)
	out, err := NewPDF(quietLogger()).Render(context.Background(), company, sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderIgnoresBrokenLogo(t *testing.T) {
	company := models.DefaultCompanyInfo()
	company.Logo = "data:image/png;base64,not-an-image"
	out, err := NewPDF(quietLogger()).Render(context.Background(), company, sampleDocument())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestPDFRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDF(quietLogger()).Render(ctx, models.DefaultCompanyInfo(), sampleDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeLogo(t *testing.T) {
	out, err := DecodeLogo(pngBase64(t, 1000, 100))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), logoMaxWidth)
	assert.LessOrEqual(t, img.Bounds().Dy(), logoMaxHeight)

	out, err = DecodeLogo("")
	assert.NoError(t, err)
	assert.Nil(t, out)

	_, err = DecodeLogo("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidLogo)
	_, err = DecodeLogo("%%%")
	assert.ErrorIs(t, err, ErrInvalidLogo)
}

func TestDecodeDataURI(t *testing.T) {
	out, err := DecodeDataURI("data:application/pdf;base64,JVBERi0xLjQK")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\n", string(out))

	out, err = DecodeDataURI("JVBERi0xLjQK")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\n", string(out))

	_, err = DecodeDataURI("data:application/pdf;base64")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
	_, err = DecodeDataURI("not base64!")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestLogoDataURI(t *testing.T) {
	assert.Contains(t, LogoDataURI(pngBase64(t, 10, 10)), "data:image/png;base64,")
	assert.Empty(t, LogoDataURI("garbage"))
}

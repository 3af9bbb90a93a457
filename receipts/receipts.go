// Package receipts renders PDF receipts for paid orders. Each receipt carries
// a QR code with a signed verification code.
package receipts

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Signer produces and checks codes of the form orderId|paidAtUnix|signature.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (s *Signer) Code(orderID string, paidAt time.Time) string {
	data := fmt.Sprintf("%s|%d", orderID, paidAt.Unix())
	return data + "|" + s.sign(data)
}

// Verify returns the order id and payment time carried by a valid code.
func (s *Signer) Verify(code string) (string, time.Time, error) {
	parts := strings.Split(code, "|")
	if len(parts) != 3 || parts[0] == "" {
		return "", time.Time{}, apperr.Validation("malformed receipt code")
	}
	data := parts[0] + "|" + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(data))) {
		return "", time.Time{}, apperr.Validation("receipt signature mismatch")
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", time.Time{}, apperr.Validation("malformed receipt timestamp")
	}
	return parts[0], time.Unix(ts, 0), nil
}

// Render builds the PDF receipt for a paid order.
func Render(o *models.Order, code, currency string) ([]byte, error) {
	if !o.Paid() || o.PaidAt == nil {
		return nil, apperr.InvalidState("order has not been paid")
	}

	qrPNG, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Order Receipt", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	cur := strings.ToUpper(currency)
	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Order: " + o.ID,
		"Customer: " + o.UserEmail,
		"Chef: " + o.ChefEmail,
		"Placed: " + o.OrderTime.Format("02 Jan 2006 15:04"),
		"Paid: " + o.PaidAt.Format("02 Jan 2006 15:04"),
		"Transaction: " + o.TransactionID,
	}
	for _, l := range lines {
		pdf.CellFormat(0, 8, l, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(90, 8, o.MealName, "", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, strconv.Itoa(o.Quantity), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", o.Price), "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f %s", o.TotalPrice, cur), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 20, pdf.GetY(), 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

package mailer

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/events"
)

const confirmationSubject = "Order Confirmation"

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"line": func(price decimal.Decimal, qty int) string {
		return price.Mul(decimal.NewFromInt(int64(qty))).StringFixed(2)
	},
}).Parse(`<h1>Thank you for your order!</h1>
<p>Order ID: {{.OrderID}}</p>
<p>Payment ID: {{.PaymentID}}</p>
<p>Total Amount: ${{money .TotalAmount}}</p>
<p>Status: {{.PaymentStatus}}</p>
<h2>Shipping Information</h2>
<p>Name: {{.ShippingInfo.Name}}</p>
<p>Address: {{.ShippingInfo.Address}}</p>
<p>City: {{.ShippingInfo.City}}</p>
<p>Zip Code: {{.ShippingInfo.Zip}}</p>
<h2>Items:</h2>
<ul>
{{- range .Items}}
<li>{{.Name}} x {{.Quantity}} - ${{line .Price .Quantity}}</li>
{{- end}}
</ul>
`))

// RenderConfirmation returns the HTML body of the order confirmation email.
func RenderConfirmation(p events.OrderCreatedPayload) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

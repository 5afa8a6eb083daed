package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/jayansh1208/marketly/models"
)

type confirmationData struct {
	CustomerName  string
	OrderID       string
	PlacedAt      string
	Items         []confirmationLine
	Total         string
	PaymentMethod string
	Paid          bool
	Address       models.ShippingAddress
}

type confirmationLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

var confirmationTemplate = template.Must(template.New("orderConfirmation").Parse(orderConfirmationHTML))

func renderConfirmation(order models.Order, recipient models.User) (string, error) {
	data := confirmationData{
		CustomerName:  recipient.Name,
		OrderID:       order.ID.Hex(),
		PlacedAt:      order.CreatedAt.Format(time.RFC1123),
		Total:         money(order.TotalPrice),
		PaymentMethod: string(order.PaymentMethod),
		Paid:          order.IsPaid,
		Address:       order.ShippingAddress,
	}
	for _, item := range order.OrderItems {
		data.Items = append(data.Items, confirmationLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    money(item.Price),
			Subtotal: money(models.LineTotal(item.Price, item.Quantity)),
		})
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render order confirmation: %w", err)
	}
	return buf.String(), nil
}

const orderConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Order confirmation</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #111827; color: white; padding: 20px; text-align: center; }
        table { width: 100%; border-collapse: collapse; }
        td, th { padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: left; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Thanks for your order, {{.CustomerName}}</h1>
        </div>
        <p>Order <strong>{{.OrderID}}</strong> was placed on {{.PlacedAt}}.</p>
        <table>
            <tr><th>Item</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
            {{range .Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Subtotal}}</td></tr>
            {{end}}
        </table>
        <p>Total: <strong>{{.Total}}</strong> ({{.PaymentMethod}}{{if .Paid}}, paid{{else}}, due on delivery{{end}})</p>
        <p>Shipping to:<br>
            {{.Address.FullName}}<br>
            {{.Address.Address}}<br>
            {{.Address.City}} {{.Address.PostalCode}}<br>
            {{.Address.Country}}
        </p>
        <div class="footer">
            <p>This email was sent automatically. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

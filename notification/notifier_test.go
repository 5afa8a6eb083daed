package notification

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jayansh1208/marketly/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sentMail struct {
	subject string
	html    string
	to      []string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(subject, html string, to []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{subject: subject, html: html, to: to})
	return nil
}

func (f *fakeSender) Channel() string { return "fake" }

func sampleOrder() (models.Order, models.User) {
	order := models.Order{
		ID: primitive.NewObjectID(),
		OrderItems: []models.OrderItem{
			{Name: "Desk Lamp", Quantity: 2, Price: 10},
			{Name: "Mug <large>", Quantity: 1, Price: 25},
		},
		ShippingAddress: models.ShippingAddress{
			FullName: "Ana Lima", Address: "1 Main St", City: "Porto",
			PostalCode: "4000", Country: "PT", Phone: "+351 123 4567",
		},
		PaymentMethod: models.PaymentCOD,
		TotalPrice:    45,
		OrderStatus:   models.StatusProcessing,
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	return order, models.User{Name: "Ana", Email: "ana@example.com"}
}

func TestRenderConfirmation(t *testing.T) {
	order, user := sampleOrder()

	html, err := renderConfirmation(order, user)
	require.NoError(t, err)
	assert.Contains(t, html, "Thanks for your order, Ana")
	assert.Contains(t, html, order.ID.Hex())
	assert.Contains(t, html, "$45.00")
	assert.Contains(t, html, "$20.00")
	assert.Contains(t, html, "due on delivery")
	assert.Contains(t, html, "Mug &lt;large&gt;")
}

func TestNotifierDeliversQueuedConfirmations(t *testing.T) {
	sender := &fakeSender{}
	n, err := New(sender, zap.NewNop())
	require.NoError(t, err)

	order, user := sampleOrder()
	n.OrderPlaced(order, user)
	n.OrderPlaced(order, user)
	require.NoError(t, n.Stop())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"ana@example.com"}, sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, order.ID.Hex())
}

func TestNotifierLogsDeliveryFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sender := &fakeSender{err: errors.New("smtp: 535 auth failed")}
	n, err := New(sender, zap.New(core))
	require.NoError(t, err)

	order, user := sampleOrder()
	n.OrderPlaced(order, user)
	require.NoError(t, n.Stop())

	entries := logs.FilterMessage("Order confirmation not delivered").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "fake notification failed")
}

func TestNotifierSkipsMissingRecipient(t *testing.T) {
	sender := &fakeSender{}
	n, err := New(sender, zap.NewNop())
	require.NoError(t, err)

	order, _ := sampleOrder()
	n.OrderPlaced(order, models.User{Name: "Nobody"})
	require.NoError(t, n.Stop())

	assert.Empty(t, sender.sent)
}

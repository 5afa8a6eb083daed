package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPaymentMethodUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PaymentMethod
		wantErr bool
	}{
		{name: "tag", input: `"cod"`, want: Cod()},
		{name: "tag case", input: `" UPI "`, want: PaymentMethod{Kind: PaymentUPI}},
		{name: "empty tag", input: `""`, want: PaymentMethod{}},
		{name: "null", input: `null`, want: PaymentMethod{}},
		{name: "object", input: `{"type":"card","confirmationId":"pi_1"}`, want: Card("pi_1")},
		{name: "object id alias", input: `{"type":"upi","id":"upi_9"}`, want: Upi("upi_9")},
		{name: "object without type", input: `{"id":"x"}`, want: PaymentMethod{Kind: PaymentCOD, ConfirmationID: "x"}},
		{name: "unknown tag", input: `"bitcoin"`, wantErr: true},
		{name: "unknown object", input: `{"type":"cheque"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PaymentMethod
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentMethodResult(t *testing.T) {
	assert.Nil(t, Cod().Result())
	assert.Equal(t, &PaymentResult{ID: "pi_1", Status: "succeeded"}, Card("pi_1").Result())
	assert.True(t, PaymentCard.ChargedUpfront())
	assert.True(t, PaymentUPI.ChargedUpfront())
	assert.False(t, PaymentCOD.ChargedUpfront())
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, StatusProcessing.CanTransitionTo(StatusShipped))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusShipped.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusProcessing.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusProcessing))

	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, OrderStatus("Lost").Valid())
}

func TestMarkPaidKeepsFirstTimestamp(t *testing.T) {
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var o Order
	o.MarkPaid(first)
	o.MarkPaid(first.Add(time.Hour))
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, first, *o.PaidAt)
}

func TestCartArithmetic(t *testing.T) {
	lamp, mug := primitive.NewObjectID(), primitive.NewObjectID()
	cart := NewCart(primitive.NewObjectID())

	cart.Add(CartItem{ProductID: lamp, Price: 10, Quantity: 2})
	cart.Add(CartItem{ProductID: mug, Price: 12.5, Quantity: 2})
	assert.Equal(t, 45.0, cart.TotalPrice)
	assert.Equal(t, 4, cart.Count())

	cart.Add(CartItem{ProductID: lamp, Price: 11, Quantity: 1})
	i := cart.indexOf(lamp)
	require.GreaterOrEqual(t, i, 0)
	item := cart.Items[i]
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 11.0, item.Price)
	assert.Equal(t, 58.0, cart.TotalPrice)

	assert.True(t, cart.SetQuantity(mug, 0))
	assert.Len(t, cart.Items, 1)
	assert.False(t, cart.Remove(mug))

	cart.Clear()
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalPrice)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, 0.3, SumLines([]float64{0.1, 0.2}, func(p float64) (float64, int) { return p, 1 }))
	assert.Equal(t, 59.97, LineTotal(19.99, 3))
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(0), ToCents(0.004))
}

func TestShippingAddressNormalize(t *testing.T) {
	a := ShippingAddress{FullName: "  Ana ", City: "Porto\n"}.Normalize()
	assert.Equal(t, "Ana", a.FullName)
	assert.Equal(t, "Porto", a.City)
}

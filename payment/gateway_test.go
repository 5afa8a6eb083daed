package payment

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateIntent(t *testing.T) {
	g := NewLocalGateway()
	user := primitive.NewObjectID()

	intent, err := g.CreateIntent(context.Background(), 45.1, user)
	require.NoError(t, err)
	assert.Equal(t, int64(4510), intent.AmountCents)
	assert.Equal(t, Currency, intent.Currency)
	assert.Equal(t, user.Hex(), intent.UserID)
	assert.True(t, strings.HasPrefix(intent.ClientSecret, intent.ID+"_secret_"))

	stored, ok := g.Intent(intent.ID)
	require.True(t, ok)
	assert.Equal(t, intent.ClientSecret, stored.ClientSecret)

	other, err := g.CreateIntent(context.Background(), 45.1, user)
	require.NoError(t, err)
	assert.NotEqual(t, intent.ID, other.ID)
}

func TestCreateIntentRejectsNonPositive(t *testing.T) {
	g := NewLocalGateway()

	for _, amount := range []float64{0, -3, 0.001} {
		_, err := g.CreateIntent(context.Background(), amount, primitive.NewObjectID())
		var validation *apperror.ValidationError
		assert.ErrorAs(t, err, &validation, "amount %v", amount)
	}
}

func TestEventIntentID(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9"}}}`), &event))
	assert.Equal(t, EventSucceeded, event.Type)
	assert.Equal(t, "pi_9", event.IntentID())

	var gateway Gateway = NewLocalGateway()
	_, ok := gateway.Intent(event.IntentID())
	assert.False(t, ok)
}

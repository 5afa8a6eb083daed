// Package payment issues payment intents for card and UPI checkouts. The
// confirmation id a client receives here comes back on POST /orders, and the
// processor reports the outcome of each intent through the webhook.
package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Currency = "usd"

type Intent struct {
	ID           string    `json:"id"`
	ClientSecret string    `json:"clientSecret"`
	AmountCents  int64     `json:"amount"`
	Currency     string    `json:"currency"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, userID primitive.ObjectID) (*Intent, error)
	// Intent looks up an intent this gateway issued.
	Intent(id string) (Intent, bool)
}

const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

// Event is a processor notification about one intent.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

type EventObject struct {
	ID string `json:"id"`
}

func (e Event) IntentID() string {
	return e.Data.Object.ID
}

// LocalGateway hands out intents without contacting a processor. Intents are
// kept in memory so they can be looked up by id.
type LocalGateway struct {
	mu      sync.Mutex
	intents map[string]Intent
	now     func() time.Time
}

func NewLocalGateway() *LocalGateway {
	return &LocalGateway{intents: make(map[string]Intent), now: time.Now}
}

func (g *LocalGateway) CreateIntent(ctx context.Context, amount float64, userID primitive.ObjectID) (*Intent, error) {
	cents := models.ToCents(amount)
	if cents <= 0 {
		return nil, apperror.NewValidation("amount", "Invalid amount")
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	intent := Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, uuid.NewString()),
		AmountCents:  cents,
		Currency:     Currency,
		UserID:       userID.Hex(),
		CreatedAt:    g.now(),
	}

	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()

	return &intent, nil
}

func (g *LocalGateway) Intent(id string) (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	return intent, ok
}

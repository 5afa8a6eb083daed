// Package notification sends order confirmations from a single actor.
package notification

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"go.uber.org/zap"
)

type orderPlaced struct {
	Order     models.Order
	Recipient models.User
}

type notificationActor struct {
	sender Sender
	logger *zap.Logger
}

func (a *notificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *orderPlaced:
		a.confirm(msg)

	case *actor.Started:
		a.logger.Info("Notification actor started", zap.String("channel", a.sender.Channel()))

	case *actor.Stopped:
		a.logger.Info("Notification actor stopped")
	}
}

func (a *notificationActor) confirm(msg *orderPlaced) {
	orderID := msg.Order.ID.Hex()

	html, err := renderConfirmation(msg.Order, msg.Recipient)
	if err != nil {
		a.logger.Error("Failed to render confirmation", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Order %s confirmed", orderID)
	if err := a.sender.Send(subject, html, []string{msg.Recipient.Email}); err != nil {
		err = &apperror.UpstreamNotificationError{Channel: a.sender.Channel(), Err: err}
		a.logger.Warn("Order confirmation not delivered", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	a.logger.Info("Order confirmation sent",
		zap.String("order_id", orderID),
		zap.String("recipient", msg.Recipient.Email))
}

type Notifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func New(sender Sender, logger *zap.Logger) (*Notifier, error) {
	system := actor.NewActorSystem()
	logger = logger.Named("notification-actor")

	props := actor.PropsFromProducer(func() actor.Actor {
		return &notificationActor{sender: sender, logger: logger}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Notifier{system: system, pid: pid, logger: logger}, nil
}

// OrderPlaced queues a confirmation and returns immediately.
func (n *Notifier) OrderPlaced(order models.Order, recipient models.User) {
	if recipient.Email == "" {
		n.logger.Warn("No recipient for order confirmation", zap.String("order_id", order.ID.Hex()))
		return
	}
	n.system.Root.Send(n.pid, &orderPlaced{Order: order, Recipient: recipient})
}

// Stop delivers whatever is already queued, then stops the actor.
func (n *Notifier) Stop() error {
	return n.system.Root.PoisonFuture(n.pid).Wait()
}

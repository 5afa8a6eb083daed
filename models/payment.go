package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type PaymentKind string

const (
	PaymentCOD  PaymentKind = "cod"
	PaymentCard PaymentKind = "card"
	PaymentUPI  PaymentKind = "upi"
)

func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentCOD, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// ChargedUpfront reports whether the gateway captured the payment before the
// order was created. Cash on delivery is collected later.
func (k PaymentKind) ChargedUpfront() bool {
	return k == PaymentCard || k == PaymentUPI
}

// PaymentMethod is the resolved form of the checkout payment payload, which
// arrives either as a bare tag ("cod") or as {"type": "card", "confirmationId": "..."}.
type PaymentMethod struct {
	Kind           PaymentKind
	ConfirmationID string
}

func Cod() PaymentMethod { return PaymentMethod{Kind: PaymentCOD} }
func Card(confirmation string) PaymentMethod { return PaymentMethod{Kind: PaymentCard, ConfirmationID: confirmation} }
func Upi(confirmation string) PaymentMethod { return PaymentMethod{Kind: PaymentUPI, ConfirmationID: confirmation} }

type paymentMethodObject struct {
	Type           string `json:"type"`
	ConfirmationID string `json:"confirmationId,omitempty"`
	ID             string `json:"id,omitempty"`
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = PaymentMethod{}
		return nil
	}

	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		kind := PaymentKind(strings.ToLower(strings.TrimSpace(tag)))
		if kind == "" {
			*m = PaymentMethod{}
			return nil
		}
		if !kind.Valid() {
			return fmt.Errorf("unsupported payment method %q", tag)
		}
		*m = PaymentMethod{Kind: kind}
		return nil
	}

	var obj paymentMethodObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	kind := PaymentKind(strings.ToLower(strings.TrimSpace(obj.Type)))
	if kind == "" {
		kind = PaymentCOD
	}
	if !kind.Valid() {
		return fmt.Errorf("unsupported payment method %q", obj.Type)
	}
	confirmation := obj.ConfirmationID
	if confirmation == "" {
		confirmation = obj.ID
	}
	*m = PaymentMethod{Kind: kind, ConfirmationID: confirmation}
	return nil
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	if m.ConfirmationID == "" {
		return json.Marshal(string(m.Kind))
	}
	return json.Marshal(paymentMethodObject{Type: string(m.Kind), ConfirmationID: m.ConfirmationID})
}

func (m PaymentMethod) IsZero() bool {
	return m.Kind == ""
}

// Result is the gateway metadata persisted with the order, nil for plain tags.
func (m PaymentMethod) Result() *PaymentResult {
	if m.ConfirmationID == "" {
		return nil
	}
	return &PaymentResult{ID: m.ConfirmationID, Status: "succeeded"}
}

type PaymentResult struct {
	ID           string `bson:"id" json:"id"`
	Status       string `bson:"status,omitempty" json:"status,omitempty"`
	UpdateTime   string `bson:"updateTime,omitempty" json:"updateTime,omitempty"`
	EmailAddress string `bson:"emailAddress,omitempty" json:"emailAddress,omitempty"`
}

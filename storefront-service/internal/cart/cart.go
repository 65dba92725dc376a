package cart

import (
	"encoding/json"
	"fmt"

	"github.com/fjod/go_storefront/storefront-service/domain"
)

type ActionType string

const (
	ActionAddItem    ActionType = "ADD_ITEM"
	ActionRemoveItem ActionType = "REMOVE_ITEM"
	ActionUpdateQty  ActionType = "UPDATE_QTY"
	ActionClearCart  ActionType = "CLEAR_CART"
)

// State is the whole cart. Items keep insertion order.
type State struct {
	Items []domain.LineItem `json:"items"`
}

// Action is a tagged cart mutation. Only the fields relevant to Type are read.
type Action struct {
	Type      ActionType     `json:"type"`
	Product   domain.Product `json:"product"`
	ProductID string         `json:"productId"`
	Qty       int            `json:"qty"`
}

func AddItem(p domain.Product, qty int) Action {
	return Action{Type: ActionAddItem, Product: p, Qty: qty}
}

func RemoveItem(productID string) Action {
	return Action{Type: ActionRemoveItem, ProductID: productID}
}

func UpdateQty(productID string, qty int) Action {
	return Action{Type: ActionUpdateQty, ProductID: productID, Qty: qty}
}

func ClearCart() Action {
	return Action{Type: ActionClearCart}
}

// Reduce applies a to s and returns the next state. s is never modified.
// Unknown action types return s as is.
func Reduce(s State, a Action) (State, error) {
	switch a.Type {
	case ActionAddItem:
		if a.Qty <= 0 {
			return s, ErrInvalidQuantity
		}
		id := a.Product.Identity()
		if id == "" {
			return s, ErrMissingProductID
		}
		if idx := indexOf(s.Items, id); idx >= 0 {
			items := cloneItems(s.Items)
			items[idx].Qty += a.Qty
			return State{Items: items}, nil
		}
		items := make([]domain.LineItem, len(s.Items), len(s.Items)+1)
		copy(items, s.Items)
		return State{Items: append(items, domain.LineItem{Product: a.Product, Qty: a.Qty})}, nil

	case ActionRemoveItem:
		idx := indexOf(s.Items, a.ProductID)
		if idx < 0 {
			return s, nil
		}
		items := make([]domain.LineItem, 0, len(s.Items)-1)
		items = append(items, s.Items[:idx]...)
		items = append(items, s.Items[idx+1:]...)
		return State{Items: items}, nil

	case ActionUpdateQty:
		if a.Qty <= 0 {
			return s, ErrInvalidQuantity
		}
		idx := indexOf(s.Items, a.ProductID)
		if idx < 0 {
			return s, nil
		}
		items := cloneItems(s.Items)
		items[idx].Qty = a.Qty
		return State{Items: items}, nil

	case ActionClearCart:
		return State{}, nil

	default:
		return s, nil
	}
}

// DecodeAction parses the {type, payload} dispatch envelope.
func DecodeAction(data []byte) (Action, error) {
	var envelope struct {
		Type    ActionType      `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}

	a := Action{Type: envelope.Type}
	if len(envelope.Payload) == 0 || string(envelope.Payload) == "null" {
		return a, nil
	}

	var payload struct {
		Product   domain.Product   `json:"product"`
		ProductID domain.ProductID `json:"productId"`
		Qty       int              `json:"qty"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return Action{}, fmt.Errorf("decode action payload: %w", err)
	}
	a.Product = payload.Product
	a.ProductID = string(payload.ProductID)
	a.Qty = payload.Qty
	return a, nil
}

func indexOf(items []domain.LineItem, id string) int {
	if id == "" {
		return -1
	}
	for i, item := range items {
		if item.Product.Identity() == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

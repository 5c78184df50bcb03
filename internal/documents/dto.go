package documents

import (
	"encoding/json"
	"fmt"

	"github.com/mohamedwhb/postenwerk/internal/ledger"
)

// itemFieldRequest is the wire form of a single-field item mutation. The
// value type depends on the field, so it stays raw until the field name
// selects the command variant.
type itemFieldRequest struct {
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// command translates the wire request into the engine's closed command
// set. Unknown field names are rejected here, at the boundary.
func (req itemFieldRequest) command(itemID int64) (ledger.Command, error) {
	switch req.Field {
	case "quantity":
		v, err := req.number()
		if err != nil {
			return nil, err
		}
		return ledger.SetQuantity{ID: itemID, Value: v}, nil
	case "price":
		v, err := req.number()
		if err != nil {
			return nil, err
		}
		return ledger.SetPrice{ID: itemID, Value: v}, nil
	case "discount":
		v, err := req.number()
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("discount must be between 0 and 100, got %v", v)
		}
		return ledger.SetDiscount{ID: itemID, Value: v}, nil
	case "tax_rate":
		v, err := req.number()
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("tax rate must be between 0 and 100, got %v", v)
		}
		return ledger.SetTaxRate{ID: itemID, Value: v}, nil
	case "name":
		v, err := req.text()
		if err != nil {
			return nil, err
		}
		return ledger.SetName{ID: itemID, Value: v}, nil
	case "art_nr":
		v, err := req.text()
		if err != nil {
			return nil, err
		}
		return ledger.SetArtNr{ID: itemID, Value: v}, nil
	case "description":
		v, err := req.text()
		if err != nil {
			return nil, err
		}
		return ledger.SetDescription{ID: itemID, Value: v}, nil
	case "unit":
		v, err := req.text()
		if err != nil {
			return nil, err
		}
		return ledger.SetUnit{ID: itemID, Value: v}, nil
	}
	return nil, fmt.Errorf("unknown item field %q", req.Field)
}

func (req itemFieldRequest) number() (float64, error) {
	var v float64
	if err := json.Unmarshal(req.Value, &v); err != nil {
		return 0, fmt.Errorf("field %q expects a number: %w", req.Field, err)
	}
	return v, nil
}

func (req itemFieldRequest) text() (string, error) {
	var v string
	if err := json.Unmarshal(req.Value, &v); err != nil {
		return "", fmt.Errorf("field %q expects a string: %w", req.Field, err)
	}
	return v, nil
}

// addItemRequest optionally names a catalog product to bind on insert.
type addItemRequest struct {
	ProductID *int64 `json:"product_id,omitempty"`
}

type bindProductRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
}

type moveItemRequest struct {
	Direction MoveDirection `json:"direction" validate:"required,oneof=up down"`
}

type batchTextRequest struct {
	Text string `json:"text" validate:"required"`
}

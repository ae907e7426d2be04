package domain

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Transaction statuses. A transaction is created pending, flips to success
// when the simulated payment completes, and may end cancelled (operator
// dismissal while pending) or expired (background cleanup).
const (
	TxStatusPending   = "pending"
	TxStatusSuccess   = "success"
	TxStatusCancelled = "cancelled"
	TxStatusExpired   = "expired"
)

// TransactionItem is one cart line snapshotted into a transaction record.
type TransactionItem struct {
	ProductID int64  `json:"product_id,string"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Variant   string `json:"variant"`
	SalesType string `json:"sales_type"`
	Notes     string `json:"notes,omitempty"`
}

// Transaction is a persisted charge. Items are stored as a JSON snapshot so
// the receipt always reflects the cart as it was charged, regardless of later
// catalog changes.
type Transaction struct {
	ID            int64     `json:"id,string" form:"id"`
	ReceiptNo     string    `gorm:"uniqueIndex;size:32" json:"receipt_no"`
	CustomerName  string    `json:"customer_name"`
	OrderType     string    `json:"order_type"`
	Items         string    `gorm:"type:text" json:"-"`
	Subtotal      int64     `json:"subtotal"`
	TipServer     int64     `json:"tip_server"`
	PajakRestoran int64     `json:"pajak_restoran"`
	Ppn           int64     `json:"ppn"`
	Total         int64     `json:"total"`
	Status        string    `gorm:"index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Transaction) TableName() string {
	return "pos_transaction"
}

var itemsJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// SetItems encodes the line snapshot into the Items column.
func (t *Transaction) SetItems(items []TransactionItem) error {
	raw, err := itemsJSON.MarshalToString(items)
	if err != nil {
		return err
	}
	t.Items = raw
	return nil
}

// ItemsList decodes the line snapshot from the Items column.
func (t *Transaction) ItemsList() ([]TransactionItem, error) {
	if t.Items == "" {
		return nil, nil
	}
	var items []TransactionItem
	if err := itemsJSON.UnmarshalFromString(t.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

package ynab

import (
	"fmt"

	"github.com/google/uuid"
)

// importNamespace scopes the uuid5 import ids.
var importNamespace = uuid.MustParse("b9b024c9-e918-4447-9b75-2b340535d49e")

// Transaction is one transaction to create, amounts in milliunits.
type Transaction struct {
	AccountID string `json:"account_id"`
	PayeeID   string `json:"payee_id,omitempty"`
	PayeeName string `json:"payee_name,omitempty"`

	CategoryID string `json:"category_id,omitempty"`

	// Date is formatted YYYY-MM-DD.
	Date   string `json:"date"`
	Amount int64  `json:"amount"`

	Memo      string `json:"memo,omitempty"`
	FlagColor string `json:"flag_color,omitempty"`
	Cleared   string `json:"cleared,omitempty"`
	Approved  bool   `json:"approved"`

	// ImportID deduplicates repeat submissions; derived when empty.
	ImportID string `json:"import_id,omitempty"`

	// ImportIndex distinguishes otherwise-identical transactions in one
	// batch. Not sent to the API.
	ImportIndex int `json:"-"`
}

// withImportID returns a copy with a deterministic import id derived from
// the transaction identity, so posting the same batch twice cannot create
// duplicates.
func (t Transaction) withImportID() Transaction {
	if t.ImportID == "" {
		seed := fmt.Sprintf("%s:%s:%d:%s:%d", t.AccountID, t.Date, t.Amount, t.PayeeName, t.ImportIndex)
		t.ImportID = uuid.NewSHA1(importNamespace, []byte(seed)).String()
	}
	return t
}

// Budget, Account, Payee, and CategoryGroup mirror the API listings.
type Budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

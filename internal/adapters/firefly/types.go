package firefly

// Wire shapes for the Firefly III transactions API. A transaction group
// carries one or more splits; the reconciler only ever works on
// single-split groups, but the raw shape is kept so the pre-filters can
// make that call.

// TransactionGroup is one element of the transactions listing.
type TransactionGroup struct {
	ID         string                `json:"id"`
	Attributes TransactionAttributes `json:"attributes"`
}

// TransactionAttributes holds the group's splits.
type TransactionAttributes struct {
	GroupTitle string             `json:"group_title"`
	Splits     []TransactionSplit `json:"transactions"`
}

// TransactionSplit is a single journal entry within a group.
type TransactionSplit struct {
	JournalID    string   `json:"transaction_journal_id"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	Amount       string   `json:"amount"`
	CurrencyCode string   `json:"currency_code"`
	CategoryID   string   `json:"category_id"`
	CategoryName string   `json:"category_name"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

type listResponse struct {
	Data []TransactionGroup `json:"data"`
	Meta struct {
		Pagination struct {
			TotalPages  int `json:"total_pages"`
			CurrentPage int `json:"current_page"`
		} `json:"pagination"`
	} `json:"meta"`
}

type singleResponse struct {
	Data TransactionGroup `json:"data"`
}

// updateRequest is the PUT body for transaction updates. Only the fields
// being changed are sent; apply_rules stays off so Firefly rule engines
// do not rewrite the reconciled entry.
type updateRequest struct {
	ApplyRules   bool          `json:"apply_rules"`
	Transactions []updateSplit `json:"transactions"`
}

type updateSplit struct {
	Notes *string  `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

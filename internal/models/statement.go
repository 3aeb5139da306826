package models

import "time"

// Processing states of a statement run.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Statement is the durable audit record of one uploaded document.
type Statement struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	FileName            string    `json:"fileName"`
	PageCount           int       `json:"pageCount"`
	UploadDate          time.Time `json:"uploadDate"`
	ProcessingStatus    string    `json:"processingStatus"`
	MaskedAccountNumber string    `json:"maskedAccountNumber,omitempty"`
	BankName            string    `json:"bankName,omitempty"`
	TransactionCount    int       `json:"transactionCount"`
	IsAccurate          bool      `json:"isAccurate"`
	ErrorMessage        string    `json:"errorMessage,omitempty"`
}

// AccuracyResult is the balance-reconciliation verdict for one run.
type AccuracyResult struct {
	OpeningBalance           float64 `json:"openingBalance"`
	ClosingBalance           float64 `json:"closingBalance"`
	CalculatedClosingBalance float64 `json:"calculatedClosingBalance"`
	IsAccurate               bool    `json:"isAccurate"`
}

// Outcome is everything a finished run reports: the audit fields handed to
// persistence plus, for callers that store them, the accumulated
// transactions and the reconciliation verdict.
type Outcome struct {
	Status              string
	FileName            string
	PageCount           int
	BankName            string
	MaskedAccountNumber string
	TransactionCount    int
	IsAccurate          bool
	ErrorMessage        string
	Accuracy            *AccuracyResult
	Transactions        []Txn
}

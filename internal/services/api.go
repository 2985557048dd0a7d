package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Response is the success envelope returned by every endpoint.
type Response[T any] struct {
	Data    T      `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// APIError is the failure envelope. Success is always false.
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func newAPIError(status int, msg string) *APIError {
	return &APIError{Success: false, Message: msg, Status: status}
}

func ok[T any](data T, msg string) *Response[T] {
	return &Response[T]{Data: data, Success: true, Message: msg}
}

// toAPIError passes an *APIError through untouched and turns anything else
// into a 500 carrying fallback.
func toAPIError(err error, fallback string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newAPIError(http.StatusInternalServerError, fallback)
}

// StatusOf reports the HTTP status carried by err, 500 for unshaped errors
// and 200 for nil.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

const (
	MsgCardsFetched            = "Cards fetched successfully"
	MsgCardAdded               = "Card added successfully"
	MsgCardFrozen              = "Card frozen successfully"
	MsgCardUnfrozen            = "Card unfrozen successfully"
	MsgCardNumberShown         = "Card number shown"
	MsgCardNumberHidden        = "Card number hidden"
	MsgCardUpdated             = "Card updated successfully"
	MsgCardDeleted             = "Card deleted successfully"
	MsgTransactionsFetched     = "Transactions fetched successfully"
	MsgCardTransactionsFetched = "Card transactions fetched successfully"

	MsgCardNameRequired            = "Card name is required"
	MsgCardNotFound                = "Card not found"
	MsgFetchCardsFailed            = "Failed to fetch cards"
	MsgAddCardFailed               = "Failed to add card"
	MsgToggleFreezeFailed          = "Failed to toggle card freeze status"
	MsgToggleVisibilityFailed      = "Failed to toggle card number visibility"
	MsgUpdateCardFailed            = "Failed to update card"
	MsgDeleteCardFailed            = "Failed to delete card"
	MsgFetchTransactionsFailed     = "Failed to fetch transactions"
	MsgFetchCardTransactionsFailed = "Failed to fetch card transactions"
	MsgClearDataFailed             = "Failed to clear data"
	MsgSeedFailed                  = "Failed to initialize default cards"
)

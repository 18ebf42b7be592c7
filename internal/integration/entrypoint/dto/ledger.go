// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/cardledger/backend/internal/domain/entity"
)

// LedgerEntryResponse represents a single ledger entry in API responses.
type LedgerEntryResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Value       string `json:"value"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type"`
}

// LedgerListResponse represents the response for listing ledger entries.
type LedgerListResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
}

// ToLedgerListResponse converts domain LedgerEntry entities to a LedgerListResponse DTO.
func ToLedgerListResponse(entries []*entity.LedgerEntry) LedgerListResponse {
	response := LedgerListResponse{
		Entries: make([]LedgerEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, LedgerEntryResponse{
			ID:          e.ID.String(),
			Date:        e.Date.Format("2006-01-02"),
			Description: e.Description,
			Value:       e.Value.String(),
			Category:    e.Category,
			Type:        string(e.Type),
		})
	}
	return response
}

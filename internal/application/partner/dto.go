package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
)

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	URL   string    `json:"url,omitempty"`
	State string    `json:"state"`
}

// ToShopResponse converts a domain Shop to response DTO
func ToShopResponse(shop *partner.Shop) ShopResponse {
	return ShopResponse{
		ID:    shop.ID,
		Name:  shop.Name,
		URL:   shop.URL,
		State: string(shop.State),
	}
}

// ToShopResponses converts a page of shops
func ToShopResponses(shops []partner.Shop) []ShopResponse {
	out := make([]ShopResponse, len(shops))
	for i := range shops {
		out[i] = ToShopResponse(&shops[i])
	}
	return out
}

// UpdateJobResponse describes a partner update job
type UpdateJobResponse struct {
	JobID       uuid.UUID            `json:"job_id"`
	Status      string               `json:"status"`
	URL         string               `json:"url"`
	Error       string               `json:"error,omitempty"`
	Result      catalog.ImportResult `json:"result"`
	Attempts    int                  `json:"attempts"`
	SubmittedAt time.Time            `json:"submitted_at"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// ToUpdateJobResponse converts a scheduler job snapshot
func ToUpdateJobResponse(job scheduler.Job) UpdateJobResponse {
	attempts := job.RetryCount
	if job.StartedAt != nil {
		attempts++
	}
	return UpdateJobResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		URL:         job.URL,
		Error:       job.Error,
		Result:      job.Result,
		Attempts:    attempts,
		SubmittedAt: job.SubmittedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
}

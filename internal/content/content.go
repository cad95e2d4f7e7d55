package content

import (
	"time"

	"github.com/google/uuid"
)

// Quote is a row of the quote rotation.
type Quote struct {
	LastDisplayedAt *time.Time `json:"last_displayed_at,omitempty" db:"last_displayed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	Quote           string     `json:"quote" db:"quote"`
	Author          string     `json:"author" db:"author"`
	Source          string     `json:"source,omitempty" db:"source"`
	DisplayCount    int        `json:"display_count" db:"display_count"`
	ID              uuid.UUID  `json:"id" db:"id"`
	IsActive        bool       `json:"is_active" db:"is_active"`
}

// Resource is an entry of the curated resource directory.
type Resource struct {
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	Category         Category  `json:"category" db:"category"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	URL              string    `json:"url" db:"url"`
	AffiliateURL     string    `json:"affiliate_url,omitempty" db:"affiliate_url"`
	Type             string    `json:"type" db:"type"`
	HowResourceHelps string    `json:"how_resource_helps,omitempty" db:"how_resource_helps"`
	ID               uuid.UUID `json:"id" db:"id"`
	HasAffiliate     bool      `json:"has_affiliate" db:"has_affiliate"`
}

// LinkURL returns the affiliate URL when the resource has one, the plain URL otherwise.
func (r *Resource) LinkURL() string {
	if r.HasAffiliate && r.AffiliateURL != "" {
		return r.AffiliateURL
	}
	return r.URL
}

package models

import "time"

type Company struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website"`
	Industry    string    `json:"industry"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"`
	Website     *string `json:"website,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Description *string `json:"description,omitempty"`
}

package dto

import "slide-narrator/domain"

type BuildStatusResponse struct {
	domain.BuildRecord
	EventsURL string `json:"events_url"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

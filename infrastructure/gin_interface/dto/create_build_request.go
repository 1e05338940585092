package dto

import "fmt"

type CreateBuildRequest struct {
	SlidePath string `json:"slide_path" binding:"required"`
	OutputDir string `json:"output_dir"`
}

type CreateBuildResponse struct {
	BuildID   string `json:"build_id"`
	EventsURL string `json:"events_url"`
}

func EventsURL(buildID string) string {
	return fmt.Sprintf("/builds/%s/events", buildID)
}

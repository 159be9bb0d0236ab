package api

import "time"

// GenerateResponse is returned immediately by POST /bundle/generate; work
// continues asynchronously (spec §6).
type GenerateResponse struct {
	TaskID string `json:"taskId"`
}

// StatusResponse is returned by GET /bundle/status/{taskId}.
type StatusResponse struct {
	Status        string     `json:"status"`
	Phase         string     `json:"phase,omitempty"`
	StartTime     time.Time  `json:"startTime"`
	CompletedTime *time.Time `json:"completedTime,omitempty"`
	Result        any        `json:"result,omitempty"`
}

// RegenerateResponse is returned by POST /bundle/regenerate/{taskId}.
type RegenerateResponse struct {
	TaskID string `json:"taskId"`
}

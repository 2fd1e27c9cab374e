package dto

import "time"

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,is-application-status"`
}

type ApplicationResponse struct {
	ID        string       `json:"id"`
	JobID     string       `json:"job_id"`
	WorkerID  string       `json:"worker_id"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Job       *JobResponse `json:"job,omitempty"`
	Worker    *UserSummary `json:"worker,omitempty"`
}

type RejectPendingResponse struct {
	Rejected int64 `json:"rejected"`
}

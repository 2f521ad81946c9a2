package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestReviewed  = "request.reviewed"
	EventTypeRequestSubmitted = "request.submitted"
)

type RequestReviewedEvent struct {
	BaseEvent
	Kind       string `json:"kind"`
	RequestID  int64  `json:"request_id"`
	EmployeeID int64  `json:"employee_id"`
	ReviewerID int64  `json:"reviewer_id"`
	Decision   string `json:"decision"`
}

func NewRequestReviewedEvent(kind string, requestID, employeeID, reviewerID int64, decision string) *RequestReviewedEvent {
	return &RequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"kind":        kind,
				"request_id":  requestID,
				"employee_id": employeeID,
				"reviewer_id": reviewerID,
				"decision":    decision,
			},
		},
		Kind:       kind,
		RequestID:  requestID,
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		Decision:   decision,
	}
}

type RequestSubmittedEvent struct {
	BaseEvent
	Kind       string `json:"kind"`
	RequestID  int64  `json:"request_id"`
	EmployeeID int64  `json:"employee_id"`
}

func NewRequestSubmittedEvent(kind string, requestID, employeeID int64) *RequestSubmittedEvent {
	return &RequestSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"kind":        kind,
				"request_id":  requestID,
				"employee_id": employeeID,
			},
		},
		Kind:       kind,
		RequestID:  requestID,
		EmployeeID: employeeID,
	}
}

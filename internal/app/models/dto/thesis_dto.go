package dto

import "time"

// ThesisResponse represents a thesis returned by the API
type ThesisResponse struct {
	ID                     int64               `json:"id" example:"10"`
	StudentID              int64               `json:"studentId" example:"100"`
	Topic                  string              `json:"topic" example:"Graph Neural Networks"`
	TopicProposedBy        string              `json:"topicProposedBy" example:"student" enums:"none,student,supervisor"`
	TopicStatus            string              `json:"topicStatus" example:"approved" enums:"none,pending,approved,rejected"`
	TopicRejectionComments *string             `json:"topicRejectionComments,omitempty"`
	Status                 string              `json:"status" example:"under_review"`
	FilePath               *string             `json:"filePath,omitempty" example:"uploads/theses/5d41402a.pdf"`
	SupervisorID           *int64              `json:"supervisorId,omitempty" example:"2"`
	ConsultantID           *int64              `json:"consultantId,omitempty" example:"3"`
	ReviewerID             *int64              `json:"reviewerId,omitempty" example:"4"`
	FinalGrade             *string             `json:"finalGrade,omitempty" example:"A"`
	CurrentIteration       int                 `json:"currentIteration" example:"2"`
	Iterations             []IterationResponse `json:"iterations,omitempty"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

// IterationResponse represents one review iteration
type IterationResponse struct {
	Number        int              `json:"number" example:"2"`
	SignedDocPath *string          `json:"signedDocPath,omitempty"`
	SignedAt      *time.Time       `json:"signedAt,omitempty"`
	Reviews       []ReviewResponse `json:"reviews,omitempty"`
}

// ReviewResponse represents a single role's review within an iteration
type ReviewResponse struct {
	Role        string    `json:"role" example:"reviewer"`
	Comments    string    `json:"comments" example:"Methodology section needs work"`
	Status      string    `json:"status" example:"rejected" enums:"pending,approved,rejected"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmitReviewRequest records one role's review for the current iteration
type SubmitReviewRequest struct {
	Comments string `json:"comments" example:"Methodology section needs work"`
	Status   string `json:"status" binding:"required" example:"approved" enums:"pending,approved,rejected"`
}

// EvaluateRequest records the final grade
type EvaluateRequest struct {
	Grade string `json:"grade" binding:"required" example:"A"`
}

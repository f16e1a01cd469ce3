package dto

// ProposeTopicRequest submits a topic proposal. Students propose for their
// own thesis; supervisors propose for an assigned student.
type ProposeTopicRequest struct {
	Topic     string `json:"topic" binding:"required" example:"Graph Neural Networks"`
	StudentID int64  `json:"studentId,omitempty" example:"100"` // Set by supervisors; ignored for students
}

// DecideTopicRequest is the supervisor's decision on a student proposal
type DecideTopicRequest struct {
	Approve  bool   `json:"approve" example:"false"`
	Comments string `json:"comments,omitempty" example:"too broad, narrow the scope"`
}

// RespondTopicRequest is the student's response to a supervisor proposal
type RespondTopicRequest struct {
	Accept   bool   `json:"accept" example:"true"`
	Comments string `json:"comments,omitempty"`
}

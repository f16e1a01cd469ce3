package dto

// UserResponse represents user information returned by the API
type UserResponse struct {
	ID         int64    `json:"id" example:"1"`
	Email      string   `json:"email" example:"jane.doe@university.edu"`
	FirstName  string   `json:"firstName" example:"Jane"`
	LastName   string   `json:"lastName" example:"Doe"`
	Role       string   `json:"role" example:"supervisor"`
	Roles      []string `json:"roles,omitempty"`
	Faculty    string   `json:"faculty" example:"Engineering"`
	IsApproved bool     `json:"isApproved" example:"true"`

	// Student-specific fields
	StudentNumber *string `json:"studentNumber,omitempty" example:"20251234"`
	SupervisorID  *int64  `json:"supervisorId,omitempty" example:"2"`
	ConsultantID  *int64  `json:"consultantId,omitempty" example:"3"`
	ReviewerID    *int64  `json:"reviewerId,omitempty" example:"4"`
	ThesisStatus  *string `json:"thesisStatus,omitempty" example:"under_review"`

	// Staff-specific fields
	AssignedTheses []int64 `json:"assignedTheses,omitempty"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users          []UserResponse `json:"users"`
	PaginationInfo PaginationInfo `json:"pagination"`
}

// ApproveUserRequest approves or revokes a staff account
type ApproveUserRequest struct {
	Approved bool `json:"approved" example:"true"`
}

// AssignStaffRequest binds a staff member to a student for one role
type AssignStaffRequest struct {
	StudentID int64  `json:"studentId" binding:"required" example:"100"`
	StaffID   *int64 `json:"staffId" example:"4"` // Null clears the assignment
	Role      string `json:"role" binding:"required" example:"reviewer" enums:"supervisor,consultant,reviewer"`
}

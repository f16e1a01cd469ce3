package dto

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email         string   `json:"email" binding:"required,email" example:"jane.doe@university.edu"`
	Password      string   `json:"password" binding:"required,min=8" example:"s3cretPass!"`
	FirstName     string   `json:"firstName" binding:"required" example:"Jane"`
	LastName      string   `json:"lastName" binding:"required" example:"Doe"`
	Role          string   `json:"role" binding:"required" example:"student" enums:"student,reviewer,supervisor,consultant,head_of_department,dean"`
	Roles         []string `json:"roles,omitempty"`
	Faculty       string   `json:"faculty" binding:"required" example:"Engineering"`
	StudentNumber string   `json:"studentNumber,omitempty" example:"20251234"` // Required for the student role
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane.doe@university.edu"`
	Password string `json:"password" binding:"required" example:"s3cretPass!"`
}

// TokenResponse represents the issued credential pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn" example:"3600"`
	TokenType    string `json:"tokenType" example:"Bearer"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

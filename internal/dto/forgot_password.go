package dto

// ForgotPasswordRequest represents the request payload for password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResponse represents the response after sending a
// verification code
type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expires_in"`
}

// VerifyOTPRequest represents the request payload for OTP verification
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// VerifyOTPResponse represents the response after successful OTP
// verification
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
	ExpiresIn  string `json:"expires_in"`
}

// ResetPasswordRequest represents the request payload for resetting the
// password
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPasswordResponse represents the response after password reset
type ResetPasswordResponse struct {
	Message string `json:"message"`
}

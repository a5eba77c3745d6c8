package domain

// CredentialsRequest is the body of register and login requests.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

package identity

// AuthRequest carries the credentials of a client.
type AuthRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse describes a newly registered client.
type RegisterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// AuthResponse is returned on a successful login.
type AuthResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Token   string `json:"token"`
}

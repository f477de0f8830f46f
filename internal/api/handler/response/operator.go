package response

type OperatorResponseDTO struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

type AuthResponseDTO struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refreshToken"`
	Operator     OperatorResponseDTO `json:"operator"`
}

package wire

// Empty is the message of calls without a payload.
type Empty struct{}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Locale string `json:"locale"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Locale   string `json:"locale,omitempty"`
}

type LoginInitiateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInitiateResponse struct {
	Message string `json:"message"`
}

type LoginCompleteRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RevokeTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Locale *string `json:"locale,omitempty"`
}

type SetDisabledRequest struct {
	UserID   string `json:"userId"`
	Disabled bool   `json:"disabled"`
}

type SetRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

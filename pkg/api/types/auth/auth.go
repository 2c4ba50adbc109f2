package auth

type Login struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type User struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	CanEdit     bool     `json:"canEdit"`
}

type Session struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      User   `json:"user"`
}

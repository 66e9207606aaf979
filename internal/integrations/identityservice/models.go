package identityservice

// Professional модель исполнителя услуг из IdentityService
type Professional struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// ActorInfo модель аутентифицированного пользователя из IdentityService
type ActorInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

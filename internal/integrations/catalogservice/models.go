package catalogservice

// Service модель услуги из CatalogService
type Service struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
}

// AuthorizationResult результат проверки, что исполнитель оказывает услугу
type AuthorizationResult struct {
	Authorized bool `json:"authorized"`
}

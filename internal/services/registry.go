package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	UserService         UserService
	JobService          JobService
	ApplicationService  ApplicationService
	RatingService       RatingService
	NotificationService NotificationService
	SubscriptionService SubscriptionService
	PublicService       PublicService
}

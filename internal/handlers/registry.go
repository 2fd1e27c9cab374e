package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	UserHandler         *UserHandler
	JobHandler          *JobHandler
	ApplicationHandler  *ApplicationHandler
	RatingHandler       *RatingHandler
	NotificationHandler *NotificationHandler
	SubscriptionHandler *SubscriptionHandler
	PublicHandler       *PublicHandler
	CronHandler         *CronHandler
}

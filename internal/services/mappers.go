package services

import (
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/services/dto"
)

func toUserResponse(u *models.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:            u.ID,
		Email:         stringValue(u.Email),
		FullName:      u.FullName,
		Role:          string(u.Role),
		Tier:          string(u.Tier),
		Phone:         u.Phone,
		AvatarURL:     u.AvatarURL,
		ServiceRole:   u.ServiceRole,
		BaseLocation:  u.BaseLocation,
		DailyRate:     u.DailyRate,
		ReferralCode:  u.ReferralCode,
		ReferralCount: u.ReferralCount,
		ProExpiresAt:  u.ProExpiresAt,
		AverageRating: u.AverageRating,
		RatingCount:   u.RatingCount,
		CreatedAt:     u.CreatedAt,
	}
}

func toUserSummary(u *models.User) *dto.UserSummary {
	if u == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:            u.ID,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		Phone:         u.Phone,
		AverageRating: u.AverageRating,
		RatingCount:   u.RatingCount,
	}
}

func toJobResponse(j *models.Job) *dto.JobResponse {
	if j == nil {
		return nil
	}
	return &dto.JobResponse{
		ID:          j.ID,
		OwnerID:     j.OwnerID,
		Title:       j.Title,
		Description: j.Description,
		Pay:         j.Pay,
		Category:    j.Category,
		Location:    j.Location,
		IsEmergency: j.IsEmergency,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt,
		Owner:       toUserSummary(j.Owner),
	}
}

func toJobResponses(jobs []models.Job) []*dto.JobResponse {
	result := make([]*dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		result = append(result, toJobResponse(&jobs[i]))
	}
	return result
}

func toApplicationResponse(a *models.Application) *dto.ApplicationResponse {
	if a == nil {
		return nil
	}
	return &dto.ApplicationResponse{
		ID:        a.ID,
		JobID:     a.JobID,
		WorkerID:  a.WorkerID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Job:       toJobResponse(a.Job),
		Worker:    toUserSummary(a.Worker),
	}
}

func toApplicationResponses(apps []models.Application) []*dto.ApplicationResponse {
	result := make([]*dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, toApplicationResponse(&apps[i]))
	}
	return result
}

func toRatingResponse(r *models.Rating) *dto.RatingResponse {
	if r == nil {
		return nil
	}
	return &dto.RatingResponse{
		ID:          r.ID,
		JobID:       r.JobID,
		RaterID:     r.RaterID,
		RatedUserID: r.RatedUserID,
		Value:       r.Value,
		Review:      r.Review,
		CreatedAt:   r.CreatedAt,
	}
}

func toNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// toPublicJob отдает только имя и аватар владельца
func toPublicJob(j *models.Job) *dto.PublicJob {
	result := &dto.PublicJob{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Pay:         j.Pay,
		Category:    j.Category,
		Location:    j.Location,
		IsEmergency: j.IsEmergency,
		CreatedAt:   j.CreatedAt,
	}
	if j.Owner != nil {
		result.OwnerName = j.Owner.FullName
		result.OwnerAvatar = j.Owner.AvatarURL
	}
	return result
}

func toPublicWorker(u *models.User) *dto.PublicWorker {
	return &dto.PublicWorker{
		ID:            u.ID,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		Role:          string(u.Role),
		ServiceRole:   u.ServiceRole,
		BaseLocation:  u.BaseLocation,
		DailyRate:     u.DailyRate,
		AverageRating: u.AverageRating,
		RatingCount:   u.RatingCount,
		CreatedAt:     u.CreatedAt,
	}
}

// optionalString - пустая строка становится NULL
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

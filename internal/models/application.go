package models

// Application - отклик работника на работу. Одна запись на пару (job, worker),
// уникальность держит индекс idx_applications_job_worker.
type Application struct {
	BaseModel
	JobID    string            `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_worker"`
	WorkerID string            `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_worker"`
	Status   ApplicationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	// Relations
	Job    *Job  `gorm:"foreignKey:JobID"`
	Worker *User `gorm:"foreignKey:WorkerID"`
}

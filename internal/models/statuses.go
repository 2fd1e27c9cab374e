package models

type UserRole string
type UserTier string
type JobStatus string
type ApplicationStatus string
type PaymentStatus string

const (
	UserRoleOwner  UserRole = "OWNER"
	UserRoleWorker UserRole = "WORKER"

	UserTierFree UserTier = "FREE"
	UserTierPro  UserTier = "PRO"

	JobStatusOpen      JobStatus = "OPEN"
	JobStatusCompleted JobStatus = "COMPLETED"

	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusStarted   ApplicationStatus = "STARTED"
	ApplicationStatusCompleted ApplicationStatus = "COMPLETED"

	PaymentStatusCreated PaymentStatus = "CREATED"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// applicationTransitions - разрешенные переходы заявки, все их делает владелец работы
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusAccepted: {ApplicationStatusStarted},
	ApplicationStatusStarted:  {ApplicationStatusCompleted},
}

// CanTransition сообщает, можно ли перевести заявку из s в to
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, next := range applicationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal - REJECTED и COMPLETED
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected,
		ApplicationStatusStarted, ApplicationStatusCompleted:
		return true
	}
	return false
}

func (r UserRole) IsValid() bool {
	return r == UserRoleOwner || r == UserRoleWorker
}

package models

// All - модели для AutoMigrate в порядке зависимостей
func All() []interface{} {
	return []interface{}{
		&User{},
		&Job{},
		&Application{},
		&Rating{},
		&Notification{},
		&PaymentOrder{},
	}
}

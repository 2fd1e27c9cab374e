package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate добавляет SELECT ... FOR UPDATE там, где диалект это умеет.
// SQLite (тесты) сериализует запись сам.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// insertIgnore - INSERT ... ON CONFLICT DO NOTHING. false означает, что строка уже была.
func insertIgnore(db *gorm.DB, value interface{}) (bool, error) {
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

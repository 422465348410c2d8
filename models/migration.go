package models

import (
	"log"

	"github.com/warungdata/hpp_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Item{}, &ItemCategory{},
		&StockMovement{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

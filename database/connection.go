package database

import (
	"fmt"
	"log"

	"github.com/sharath018/jharkhand-tourism-backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection used by every repository.
func Connect(cfg *config.Config) *gorm.DB {
	host := cfg.DBHost
	if host == "" {
		host = "localhost"
	}
	port := cfg.DBPort
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, cfg.DBUser, cfg.DBPassword, cfg.DBName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Printf("❌ Failed to connect to database: %v", err)
		panic(err)
	}

	log.Println("✅ Database connected successfully!")
	return db
}

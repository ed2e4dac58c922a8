package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stay dates are civil dates stored at UTC midnight, so every connection is
// pinned to UTC regardless of the hotel's zone.

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	q.Set("loc", "UTC")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := utils.EnvOrDefault("MYSQL_URL", "")
	if raw == "" {
		raw = utils.EnvOrDefault("DATABASE_URL", "")
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hotel_booking")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func resolvePostgresDSN() string {
	if raw := utils.EnvOrDefault("DATABASE_URL", ""); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		utils.EnvOrDefault("DB_HOST", "127.0.0.1"),
		utils.EnvOrDefault("DB_PORT", "5432"),
		utils.EnvOrDefault("DB_USER", "postgres"),
		utils.EnvOrDefault("DB_PASS", ""),
		utils.EnvOrDefault("DB_NAME", "hotel_booking"),
		utils.EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func dialector(driver string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: resolvePostgresDSN()}), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql or postgres)", driver)
}

func logLevel(name string) logger.LogLevel {
	switch strings.ToLower(name) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// ConnectDatabase opens the configured database and migrates the schema.
func ConnectDatabase(cfg Config) (*gorm.DB, error) {
	dial, err := dialector(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logLevel(cfg.DBLogLevel),
			Colorful:      true,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Room{},
		&models.Guest{},
		&models.Reservation{},
		&models.Payment{},
	); err != nil {
		return nil, err
	}

	if cfg.DBSeed {
		if err := SeedRooms(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// SeedRooms inserts a small demo inventory into an empty rooms table.
func SeedRooms(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Room{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Rooms already seeded")
		return nil
	}

	rooms := []*models.Room{
		models.NewRoom("101", models.RoomTypeStandard, 2, decimal.RequireFromString("80.00")),
		models.NewRoom("102", models.RoomTypeStandard, 2, decimal.RequireFromString("80.00")),
		models.NewRoom("201", models.RoomTypeSuperior, 3, decimal.RequireFromString("120.00")),
		models.NewRoom("202", models.RoomTypeSuperior, 4, decimal.RequireFromString("135.00")),
		models.NewRoom("301", models.RoomTypeSuite, 4, decimal.RequireFromString("250.00")),
	}
	if err := db.Create(&rooms).Error; err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	log.Printf("Rooms seeded (%d)", len(rooms))
	return nil
}

package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homelet/internal/domain"

	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates the schema for every entity. On PostgreSQL it also
// installs an exclusion constraint so two blocking bookings with
// intersecting date ranges on one property cannot coexist, whatever
// interleaving the application-level checks raced through. The range
// bounds follow the boundary policy: closed on both ends by default,
// end-exclusive when same-day turnover is allowed.
func Migrate(db *gorm.DB, allowSameDayTurnover bool) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Property{},
		&domain.Booking{},
		&domain.BookingEvent{},
		&domain.Notification{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}

	bounds := "[]"
	if allowSameDayTurnover {
		bounds = "[)"
	}

	return db.Exec(fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'no_double_booking') THEN
		ALTER TABLE bookings ADD CONSTRAINT no_double_booking
		EXCLUDE USING gist (
			property_id WITH =,
			daterange(start_date::date, end_date::date, '%s') WITH &&
		) WHERE (status IN ('approved', 'active'));
	END IF;
END $$;
`, bounds)).Error
}

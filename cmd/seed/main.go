package main

import (
	"context"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/crypto/bcrypt"

	"homelet/internal/database"
	"homelet/internal/domain"
	"homelet/internal/modules/booking"
	"homelet/internal/repository"
)

func main() {
	db, err := database.Connect("homelet.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db, false); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM booking_events")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM properties")
	db.Exec("DELETE FROM projects")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	properties := repository.NewPropertyRepository(db)
	bookings := repository.NewBookingRepository(db)
	events := repository.NewBookingEventRepository(db)
	notifications := repository.NewNotificationRepository(db)

	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		return string(h)
	}

	admin := &domain.User{Email: "admin@homelet.local", PasswordHash: hash("admin123"), Name: "Admin", Role: domain.RoleAdmin}
	landlord := &domain.User{Email: "landlord@homelet.local", PasswordHash: hash("landlord123"), Name: "Lena Landlord", Role: domain.RoleLandlord}
	tenant := &domain.User{Email: "tenant@homelet.local", PasswordHash: hash("tenant123"), Name: "Tim Tenant", Role: domain.RoleTenant}

	for _, u := range []*domain.User{admin, landlord, tenant} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatal(err)
		}
	}

	prop := &domain.Property{
		OwnerID:     landlord.ID,
		Title:       "Sunny two-room apartment",
		Address:     "12 Abay Ave",
		City:        "Almaty",
		MonthlyRent: 180000,
		IsAvailable: true,
		Status:      domain.ListingApproved,
	}
	if err := properties.Create(ctx, prop); err != nil {
		log.Fatal(err)
	}

	svc := booking.NewService(bookings, properties, events, notifications, booking.Config{})

	start := time.Now().UTC().AddDate(0, 1, 0)
	b, err := svc.CreateBooking(ctx, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		TenantID:   tenant.ID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 3, 0),
		Notes:      "Looking forward to the stay",
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := svc.ApproveBooking(ctx, b.ID, landlord.ID, domain.RoleLandlord, "welcome"); err != nil {
		log.Fatal(err)
	}

	log.Println("Seed complete: 3 users, 1 property, 1 approved booking")
}

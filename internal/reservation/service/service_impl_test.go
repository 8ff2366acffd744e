package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/config"
	driverrepository "github.com/routewise/routewise/internal/driver/repository"
	"github.com/routewise/routewise/internal/reservation/domain"
	"github.com/routewise/routewise/internal/reservation/repository"
	"github.com/routewise/routewise/internal/tenantctx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReservationService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Exec(`CREATE TABLE reservations (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		passenger_name TEXT NOT NULL,
		passenger_phone TEXT,
		pax INTEGER NOT NULL DEFAULT 1,
		pickup_location TEXT NOT NULL,
		dropoff_location TEXT NOT NULL,
		flight_number TEXT,
		scheduled_at DATETIME NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		commission DOUBLE PRECISION NOT NULL DEFAULT 0,
		currency_code TEXT NOT NULL,
		status TEXT NOT NULL,
		driver_id BIGINT,
		notes TEXT,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_by BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create reservations: %v", err)
	}
	if err := db.Exec(`CREATE TABLE drivers (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		vehicle_model TEXT,
		vehicle_plate TEXT,
		seats INTEGER NOT NULL DEFAULT 4,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create drivers: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	pricing, err := config.NewPricingConfigHolder()
	if err != nil {
		t.Fatalf("pricing holder: %v", err)
	}

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		DriverRepo: driverrepository.Provide(),
		Pricing:    pricing,
	})
	return svc, db, node
}

func seedDriver(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, active bool) snowflake.ID {
	t.Helper()
	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO drivers (id, tenant_id, name, phone, vehicle_model, vehicle_plate, seats, is_active, created_at, updated_at)
		 VALUES (?, ?, 'Miguel', '+34600000000', 'Mercedes V', 'B1234XY', 7, ?, ?, ?)`,
		id, tenantID, active, now, now,
	).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	return id
}

func TestCreateReservationDefaults(t *testing.T) {
	svc, _, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Jane Smith",
		PickupLocation:  "Airport T1",
		DropoffLocation: "Hotel Aurora",
		FlightNumber:    "ib3142",
		ScheduledAt:     daytimePickup(),
		Price:           80,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.Pax != 1 {
		t.Fatalf("expected pax default 1, got %d", created.Pax)
	}
	if created.FlightNumber != "IB3142" {
		t.Fatalf("expected uppercased flight number, got %s", created.FlightNumber)
	}
	// Default transfer commission is 10 percent.
	if created.Commission != 8 {
		t.Fatalf("expected commission 8, got %v", created.Commission)
	}
	if created.CurrencyCode == "" {
		t.Fatal("expected currency code from pricing defaults")
	}
}

func TestCreateReservationNightSurcharge(t *testing.T) {
	svc, _, node := setupReservationService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	night := time.Date(2026, time.September, 12, 23, 30, 0, 0, time.UTC)
	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Late Arrival",
		PickupLocation:  "Airport T2",
		DropoffLocation: "Hotel Mar",
		ScheduledAt:     night,
		Price:           80,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Default night surcharge is 20, commission on the surcharged price.
	if created.Price != 100 {
		t.Fatalf("expected surcharged price 100, got %v", created.Price)
	}
	if created.Commission != 10 {
		t.Fatalf("expected commission 10, got %v", created.Commission)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _, node := setupReservationService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	cases := []struct {
		name string
		req  domain.CreateReservationRequest
		want error
	}{
		{"missing passenger", domain.CreateReservationRequest{PickupLocation: "A", DropoffLocation: "B", ScheduledAt: time.Now()}, domain.ErrInvalidPassenger},
		{"missing route", domain.CreateReservationRequest{PassengerName: "P", ScheduledAt: time.Now()}, domain.ErrInvalidRoute},
		{"missing schedule", domain.CreateReservationRequest{PassengerName: "P", PickupLocation: "A", DropoffLocation: "B"}, domain.ErrInvalidSchedule},
		{"negative price", domain.CreateReservationRequest{PassengerName: "P", PickupLocation: "A", DropoffLocation: "B", ScheduledAt: time.Now(), Price: -1}, domain.ErrInvalidPrice},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := svc.Create(context.Background(), domain.CreateReservationRequest{
		PassengerName:   "P",
		PickupLocation:  "A",
		DropoffLocation: "B",
		ScheduledAt:     time.Now(),
	}); err != domain.ErrInvalidTenant {
		t.Fatalf("expected ErrInvalidTenant without tenant context, got %v", err)
	}
}

func TestAssignDriverLifecycle(t *testing.T) {
	svc, db, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Family of four",
		Pax:             4,
		PickupLocation:  "Port",
		DropoffLocation: "Old Town",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		Price:           60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	active := seedDriver(t, db, node, tenantID, true)
	inactive := seedDriver(t, db, node, tenantID, false)

	if _, err := svc.AssignDriver(ctx, domain.AssignDriverRequest{
		ID:       created.ID.String(),
		DriverID: inactive.String(),
	}); err != domain.ErrDriverInactive {
		t.Fatalf("expected ErrDriverInactive, got %v", err)
	}

	if _, err := svc.AssignDriver(ctx, domain.AssignDriverRequest{
		ID:       created.ID.String(),
		DriverID: node.Generate().String(),
	}); err != domain.ErrDriverNotFound {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}

	assigned, err := svc.AssignDriver(ctx, domain.AssignDriverRequest{
		ID:       created.ID.String(),
		DriverID: active.String(),
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.DriverID == nil || *assigned.DriverID != active {
		t.Fatalf("expected driver %s, got %v", active, assigned.DriverID)
	}

	// Empty driver ID clears the assignment.
	cleared, err := svc.AssignDriver(ctx, domain.AssignDriverRequest{ID: created.ID.String()})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.DriverID != nil {
		t.Fatalf("expected cleared driver, got %v", cleared.DriverID)
	}
}

func TestAssignDriverCrossTenant(t *testing.T) {
	svc, db, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Solo",
		PickupLocation:  "Station",
		DropoffLocation: "Pier",
		ScheduledAt:     time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	foreignDriver := seedDriver(t, db, node, node.Generate(), true)

	// Another tenant's driver is invisible, not just forbidden.
	if _, err := svc.AssignDriver(ctx, domain.AssignDriverRequest{
		ID:       created.ID.String(),
		DriverID: foreignDriver.String(),
	}); err != domain.ErrDriverNotFound {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	svc, _, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Transit",
		PickupLocation:  "A",
		DropoffLocation: "B",
		ScheduledAt:     time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Transition(ctx, domain.TransitionRequest{
		ID:     created.ID.String(),
		Status: domain.StatusCompleted,
	}); err != domain.ErrInvalidTransition {
		t.Fatalf("pending cannot complete directly, got %v", err)
	}

	confirmed, err := svc.Transition(ctx, domain.TransitionRequest{
		ID:     created.ID.String(),
		Status: domain.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	completed, err := svc.Transition(ctx, domain.TransitionRequest{
		ID:     created.ID.String(),
		Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	// Terminal states stay terminal.
	if _, err := svc.Transition(ctx, domain.TransitionRequest{
		ID:     created.ID.String(),
		Status: domain.StatusCancelled,
	}); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition from completed, got %v", err)
	}

	if _, err := svc.Update(ctx, domain.UpdateReservationRequest{
		ID:    created.ID.String(),
		Notes: ptr("late edit"),
	}); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition editing completed, got %v", err)
	}
}

func TestGetReservationCrossTenant(t *testing.T) {
	svc, _, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	created, err := svc.Create(ctx, domain.CreateReservationRequest{
		PassengerName:   "Private",
		PickupLocation:  "A",
		DropoffLocation: "B",
		ScheduledAt:     time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherCtx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	if _, err := svc.GetByID(otherCtx, domain.GetReservationRequest{ID: created.ID.String()}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
}

func TestListReservationsPagination(t *testing.T) {
	svc, _, node := setupReservationService(t)
	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, domain.CreateReservationRequest{
			PassengerName:   fmt.Sprintf("Passenger %d", i),
			PickupLocation:  "A",
			DropoffLocation: "B",
			ScheduledAt:     time.Now().Add(time.Duration(i+1) * time.Hour),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	first, err := svc.List(ctx, domain.ListReservationRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Reservations) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(first.Reservations))
	}
	if !first.HasMore || first.NextPageToken == "" {
		t.Fatalf("expected more pages, got has_more=%v token=%q", first.HasMore, first.NextPageToken)
	}

	second, err := svc.List(ctx, domain.ListReservationRequest{PageSize: 2, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	for _, got := range second.Reservations {
		for _, prev := range first.Reservations {
			if got.ID == prev.ID {
				t.Fatalf("reservation %s repeated across pages", got.ID)
			}
		}
	}
}

func daytimePickup() time.Time {
	return time.Date(2026, time.September, 12, 11, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID          uuid.UUID
	TableNumber int32
	Status      string
	TotalPrice  pgtype.Numeric
	IsPaid      bool
	PaymentMode string
	Origin      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MenuItemID   uuid.UUID
	Quantity     int32
	PriceAtOrder pgtype.Numeric
	CreatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Category     string
	ImageURL     pgtype.Text
	IsAvailable  bool
	IsVegetarian bool
	IsSpicy      bool
	IsBestseller bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CafeTable struct {
	ID             int32
	Status         string
	CurrentOrderID pgtype.UUID
}

type Invoice struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	InvoiceNumber string
	TableNumber   int32
	Subtotal      pgtype.Numeric
	Cgst          pgtype.Numeric
	Sgst          pgtype.Numeric
	RoundOff      pgtype.Numeric
	Total         pgtype.Numeric
	PaymentMode   string
	Items         []byte
	CreatedAt     time.Time
}

type Employee struct {
	ID             uuid.UUID
	EmployeeID     string
	FullName       string
	HashedPassword string
	Email          pgtype.Text
	Phone          pgtype.Text
	Role           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AdminSession struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Code       string
	FullName   string
	Role       string
	LoginAt    time.Time
}

type AdminNotification struct {
	ID          uuid.UUID
	OrderID     pgtype.UUID
	TableNumber int32
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

type GalleryCategory struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type GalleryImage struct {
	ID         uuid.UUID
	CategoryID pgtype.UUID
	Title      pgtype.Text
	ImageURL   string
	CreatedAt  time.Time
}

type CafeSettings struct {
	ID          int32
	CafeName    string
	Address     pgtype.Text
	Phone       pgtype.Text
	Gstin       pgtype.Text
	TotalTables int32
	UpdatedAt   time.Time
}

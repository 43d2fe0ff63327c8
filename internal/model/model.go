package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           string    `json:"name" db:"name"`
	Nrp            *string   `json:"nrp,omitempty" db:"nrp"`
	Role           Role      `json:"role" db:"role"`
	StudentCardURL *string   `json:"studentCardUrl,omitempty" db:"student_card_url"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type Item struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    *string   `json:"category,omitempty" db:"category"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	Stock       int       `json:"stock" db:"stock"`
	TotalStock  int       `json:"totalStock" db:"total_stock"`
	IsAvailable bool      `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Available is what the catalog shows: the admin flag and actual stock.
func (i Item) Available() bool {
	return i.IsAvailable && i.Stock > 0
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusBorrowed Status = "BORROWED"
	StatusReturned Status = "RETURNED"
	StatusRejected Status = "REJECTED"
	StatusOverdue  Status = "OVERDUE"
)

// nextStatuses is the authoritative transition table. The client renders
// the same table as action buttons, but enforcement happens here.
var nextStatuses = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusBorrowed, StatusRejected},
	StatusBorrowed: {StatusReturned, StatusOverdue},
	StatusOverdue:  {StatusReturned},
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range nextStatuses[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(nextStatuses[s]) == 0
}

// HoldsStock reports whether item stock has been decremented for a
// borrowing in this status.
func (s Status) HoldsStock() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusBorrowed, StatusReturned, StatusRejected, StatusOverdue:
		return true
	}
	return false
}

type BorrowingLine struct {
	ID          string `json:"id" db:"id"`
	BorrowingID string `json:"-" db:"borrowing_id"`
	ItemID      string `json:"itemId" db:"item_id"`
	Quantity    int    `json:"quantity" db:"quantity"`
	Item        *Item  `json:"item,omitempty" db:"-"`
}

type Borrowing struct {
	ID               string          `json:"id" db:"id"`
	UserID           string          `json:"userId" db:"user_id"`
	Status           Status          `json:"status" db:"status"`
	BorrowDate       time.Time       `json:"borrowDate" db:"borrow_date"`
	ReturnDate       time.Time       `json:"returnDate" db:"return_date"`
	ActualReturnDate *time.Time      `json:"actualReturnDate,omitempty" db:"actual_return_date"`
	Reason           string          `json:"reason" db:"reason"`
	AdminNotes       *string         `json:"adminNotes,omitempty" db:"admin_notes"`
	RejectionReason  *string         `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
	Items            []BorrowingLine `json:"items" db:"-"`
	User             *User           `json:"user,omitempty" db:"-"`
}

type Extension struct {
	ID            string     `json:"id" db:"id"`
	BorrowingID   string     `json:"borrowingId" db:"borrowing_id"`
	NewReturnDate time.Time  `json:"newReturnDate" db:"new_return_date"`
	Reason        string     `json:"reason" db:"reason"`
	Status        Status     `json:"status" db:"status"`
	AdminNotes    *string    `json:"adminNotes,omitempty" db:"admin_notes"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	Borrowing     *Borrowing `json:"borrowing,omitempty" db:"-"`
}

// MaxExtensionDays bounds how far past the current return date an
// extension may push it.
const MaxExtensionDays = 7

type Comment struct {
	ID         string    `json:"id" db:"id"`
	ItemID     string    `json:"itemId" db:"item_id"`
	UserID     string    `json:"userId" db:"user_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
	AuthorName string    `json:"authorName" db:"author_name"`
}

type Stats struct {
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Borrowed int `json:"borrowed" db:"borrowed"`
	Returned int `json:"returned" db:"returned"`
	Rejected int `json:"rejected" db:"rejected"`
	Overdue  int `json:"overdue" db:"overdue"`
	Total    int `json:"total" db:"total"`
}

type Notification struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	BorrowingID string    `json:"borrowingId" db:"borrowing_id"`
	Status      Status    `json:"status" db:"status"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// BorrowingEvent is the wire format published on every applied transition.
type BorrowingEvent struct {
	UserID      string    `json:"userId"`
	BorrowingID string    `json:"borrowingId"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// Date accepts both date-only and RFC3339 payloads; the client submits
// form dates as yyyy-mm-dd.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListItems struct {
	Paging `json:",inline"`
	Items  []Item `json:"items"`
}

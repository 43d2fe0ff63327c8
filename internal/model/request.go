package model

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Nrp      string `json:"nrp"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Nrp            *string `json:"nrp"`
	StudentCardURL *string `json:"studentCardUrl"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	TotalStock  int     `json:"totalStock" validate:"required,gte=1"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	TotalStock  *int    `json:"totalStock" validate:"omitempty,gte=0"`
	IsAvailable *bool   `json:"isAvailable"`
}

type BorrowingLineRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type CreateBorrowingRequest struct {
	Items      []BorrowingLineRequest `json:"items" validate:"required,min=1,dive"`
	BorrowDate Date                   `json:"borrowDate" validate:"required"`
	ReturnDate Date                   `json:"returnDate" validate:"required"`
	Reason     string                 `json:"reason" validate:"required"`
}

type UpdateStatusRequest struct {
	Status          Status `json:"status" validate:"required,oneof=APPROVED REJECTED BORROWED RETURNED OVERDUE"`
	AdminNotes      string `json:"adminNotes"`
	RejectionReason string `json:"rejectionReason"`
}

type ExtendRequest struct {
	NewReturnDate Date   `json:"newReturnDate" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

type ResolveExtensionRequest struct {
	Status     Status `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	AdminNotes string `json:"adminNotes"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between the domain model and the relational schema.
package orderrepo

import (
	"time"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The price is stored as numeric plus a currency code, and the append-only
// transition log and revision notes live in jsonb columns.
type OrderDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID  `gorm:"type:uuid;index"`
	BuyerID   uuid.UUID  `gorm:"type:uuid;index"`
	SellerID  uuid.UUID  `gorm:"type:uuid;index"`
	OfferID   *uuid.UUID `gorm:"type:uuid"`

	Amount        decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency      string          `gorm:"type:char(3)"`
	FeePercentage decimal.Decimal `gorm:"type:numeric(6,4)"`

	Status int `gorm:"index"`

	PaymentIntentID string
	PaymentStatus   int
	PaymentReleased bool
	ReleasedAt      *time.Time

	ShippingAddress      string
	ExpectedDeliveryDays int
	DeliveredAt          *time.Time `gorm:"index"`
	CompletedAt          *time.Time
	CancelReason         string

	RevisionCount     int
	MaxRevisions      int
	RevisionRequested bool
	RevisionNotes     []string `gorm:"serializer:json;type:jsonb"`

	TransitionLog []order.TransitionEntry `gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var offerID *uuid.UUID
	if id := aggregate.OfferID(); id != nil {
		raw := id.Bytes()
		offerID = &raw
	}

	return OrderDTO{
		ID:        aggregate.ID().Bytes(),
		ListingID: aggregate.ListingID().Bytes(),
		BuyerID:   aggregate.BuyerID().Bytes(),
		SellerID:  aggregate.SellerID().Bytes(),
		OfferID:   offerID,

		Amount:        aggregate.Price().Amount(),
		Currency:      aggregate.Price().Currency(),
		FeePercentage: aggregate.FeePercentage(),

		Status: int(aggregate.Status()),

		PaymentIntentID: aggregate.PaymentIntentID(),
		PaymentStatus:   int(aggregate.PaymentStatus()),
		PaymentReleased: aggregate.PaymentReleased(),
		ReleasedAt:      aggregate.ReleasedAt(),

		ShippingAddress:      aggregate.ShippingAddress(),
		ExpectedDeliveryDays: aggregate.ExpectedDeliveryDays(),
		DeliveredAt:          aggregate.DeliveredAt(),
		CompletedAt:          aggregate.CompletedAt(),
		CancelReason:         aggregate.CancelReason(),

		RevisionCount:     aggregate.RevisionCount(),
		MaxRevisions:      aggregate.MaxRevisions(),
		RevisionRequested: aggregate.RevisionRequested(),
		RevisionNotes:     aggregate.RevisionNotes(),

		TransitionLog: aggregate.TransitionLog(),

		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate through RestoreOrder, which revalidates
// identity, money, and status consistency.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	listingID, err := kernel.UUIDFromBytes(dto.ListingID[:])
	if err != nil {
		return nil, err
	}

	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}

	var offerID *kernel.UUID
	if dto.OfferID != nil {
		oID, offerErr := kernel.UUIDFromBytes((*dto.OfferID)[:])
		if offerErr != nil {
			return nil, offerErr
		}
		offerID = &oID
	}

	price, err := kernel.NewMoney(dto.Amount, dto.Currency)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:        id,
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		OfferID:   offerID,

		Price:         price,
		FeePercentage: dto.FeePercentage,

		Status: order.Status(dto.Status),

		PaymentIntentID: dto.PaymentIntentID,
		PaymentStatus:   order.PaymentStatus(dto.PaymentStatus),
		PaymentReleased: dto.PaymentReleased,
		ReleasedAt:      dto.ReleasedAt,

		ShippingAddress:      dto.ShippingAddress,
		ExpectedDeliveryDays: dto.ExpectedDeliveryDays,
		DeliveredAt:          dto.DeliveredAt,
		CompletedAt:          dto.CompletedAt,
		CancelReason:         dto.CancelReason,

		RevisionCount:     dto.RevisionCount,
		MaxRevisions:      dto.MaxRevisions,
		RevisionRequested: dto.RevisionRequested,
		RevisionNotes:     dto.RevisionNotes,

		TransitionLog: dto.TransitionLog,

		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	})
}

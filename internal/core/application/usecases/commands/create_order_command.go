package commands

import (
	"errors"

	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderCommand represents a request to create a marketplace order from an
// accepted offer, before payment. The order starts in pending_payment and a
// payment hold is requested from the gateway as part of handling.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), listingID, buyerID, sellerID,
//	    &offerID, price, "12 Harbor Lane", 7, 2)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, gateway, logger)
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	listingID kernel.UUID
	buyerID   kernel.UUID
	sellerID  kernel.UUID
	offerID   *kernel.UUID

	price                kernel.Money
	shippingAddress      string
	expectedDeliveryDays int
	maxRevisions         int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new marketplace order.
// Validates identifiers and the price; fulfillment parameters are validated by
// the Order constructor during handling.
func NewCreateOrderCommand(
	orderID, listingID, buyerID, sellerID kernel.UUID,
	offerID *kernel.UUID,
	price kernel.Money,
	shippingAddress string,
	expectedDeliveryDays int,
	maxRevisions int,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		offerID:              offerID,
		shippingAddress:      shippingAddress,
		expectedDeliveryDays: expectedDeliveryDays,
		maxRevisions:         maxRevisions,
		guard:                guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setListingID(listingID),
		cmd.setParties(buyerID, sellerID),
		cmd.setPrice(price),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	if offerID != nil {
		if err := offerID.Validate(); err != nil {
			return CreateOrderCommand{}, err
		}
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ListingID returns the listing the order is placed against.
func (c CreateOrderCommand) ListingID() kernel.UUID {
	return c.listingID
}

// BuyerID returns the buyer's user id.
func (c CreateOrderCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

// SellerID returns the seller's user id.
func (c CreateOrderCommand) SellerID() kernel.UUID {
	return c.sellerID
}

// OfferID returns the originating offer id, nil for direct purchases.
func (c CreateOrderCommand) OfferID() *kernel.UUID {
	return c.offerID
}

// Price returns the agreed amount.
func (c CreateOrderCommand) Price() kernel.Money {
	return c.price
}

// ShippingAddress returns the delivery address, empty for digital listings.
func (c CreateOrderCommand) ShippingAddress() string {
	return c.shippingAddress
}

// ExpectedDeliveryDays returns the agreed fulfillment window in days.
func (c CreateOrderCommand) ExpectedDeliveryDays() int {
	return c.expectedDeliveryDays
}

// MaxRevisions returns the revision limit, 0 selecting the default.
func (c CreateOrderCommand) MaxRevisions() int {
	return c.maxRevisions
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setListingID(listingID kernel.UUID) error {
	if err := listingID.Validate(); err != nil {
		return err
	}
	c.listingID = listingID
	return nil
}

func (c *CreateOrderCommand) setParties(buyerID, sellerID kernel.UUID) error {
	if err := errors.Join(buyerID.Validate(), sellerID.Validate()); err != nil {
		return err
	}
	c.buyerID = buyerID
	c.sellerID = sellerID
	return nil
}

func (c *CreateOrderCommand) setPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	c.price = price
	return nil
}

package service

// QRCodeService defines the interface for pickup QR generation.
type QRCodeService interface {
	// GeneratePickupQR renders a PNG QR code encoding the order ID and
	// pickup code, scanned by budtenders at the counter.
	GeneratePickupQR(orderID, pickupCode string) ([]byte, error)
}

package enums

import "fmt"

// QRStatus tracks the lifecycle of a single-use QR token.
type QRStatus string

const (
	QRStatusActive   QRStatus = "active"
	QRStatusScanned  QRStatus = "scanned"
	QRStatusExpired  QRStatus = "expired"
	QRStatusInactive QRStatus = "inactive"
)

var validQRStatuses = []QRStatus{
	QRStatusActive,
	QRStatusScanned,
	QRStatusExpired,
	QRStatusInactive,
}

// String implements fmt.Stringer.
func (q QRStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QRStatus.
func (q QRStatus) IsValid() bool {
	for _, candidate := range validQRStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQRStatus converts raw input into a QRStatus.
func ParseQRStatus(value string) (QRStatus, error) {
	for _, candidate := range validQRStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid qr status %q", value)
}

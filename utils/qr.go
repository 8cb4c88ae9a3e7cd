// utils/qr.go
package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// GenerateQRCode renders the content as a square PNG QR code.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	qrCode, err = barcode.Scale(qrCode, size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	return buf.Bytes(), nil
}

// GenerateInvitationQR renders the invitation accept link as a PNG QR code.
func GenerateInvitationQR(token string) ([]byte, error) {
	return GenerateQRCode(InvitationLink(token), 300)
}

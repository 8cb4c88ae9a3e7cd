package utils

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode("https://example.com/invitations?token=abc123", 150)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "output must be a decodable PNG")
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestGenerateQRCodeDefaultSize(t *testing.T) {
	data, err := GenerateQRCode("hello", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestGenerateInvitationQR(t *testing.T) {
	data, err := GenerateInvitationQR("f6b2c1e0")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "invitation QR is served as image/png")
}

func TestInvitationLink(t *testing.T) {
	t.Setenv("APP_BASE_URL", "")
	assert.Equal(t, "http://localhost:3000/invitations?token=tok-1", InvitationLink("tok-1"))

	t.Setenv("APP_BASE_URL", "https://app.example.com")
	assert.Equal(t, "https://app.example.com/invitations?token=tok-1", InvitationLink("tok-1"))
}

package qr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightcafe/promobot/internal/qr"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	g := qr.NewGenerator(256)

	png, err := g.Encode("DCABC12345")
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	decoded, err := g.Decode(png)
	require.NoError(t, err)
	assert.Equal(t, "DCABC12345", decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	g := qr.NewGenerator(256)

	_, err := g.Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

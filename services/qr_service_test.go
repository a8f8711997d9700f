package services

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueradar/models"
	"rescueradar/utils"
)

func TestQRService_GenerateRequiresTarget(t *testing.T) {
	svc := NewQRService("https://rescueradar.example")

	_, err := svc.Generate(models.QRRequest{})
	require.Error(t, err)
	assert.Equal(t, 400, utils.StatusCodeOf(err))
	assert.Contains(t, err.Error(), "Either report_id or url parameter is required")
}

func TestQRService_GeneratePNGIsDeterministic(t *testing.T) {
	svc := NewQRService("https://rescueradar.example/")
	req := models.QRRequest{ReportID: "abc-123"}

	first, err := svc.Generate(req)
	require.NoError(t, err)
	second, err := svc.Generate(req)
	require.NoError(t, err)

	assert.Equal(t, "https://rescueradar.example/report/abc-123", first.Data)
	assert.Equal(t, "png", first.Format)
	assert.Equal(t, "200x200", first.Size)
	assert.Equal(t, "image/png", first.ContentType)
	assert.True(t, strings.HasPrefix(first.QRCodeURL, "data:image/png;base64,"))
	assert.Equal(t, first.Content, second.Content)

	img, err := png.Decode(bytes.NewReader(first.Content))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	// The quiet zone stays background colored.
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)
}

func TestQRService_GenerateSVG(t *testing.T) {
	svc := NewQRService("https://rescueradar.example")
	margin := 2
	code, err := svc.Generate(models.QRRequest{
		URL:        "https://example.org/x",
		Format:     "svg",
		Size:       300,
		Margin:     &margin,
		Color:      "#123",
		Background: "#fafafa",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/x", code.Data)
	assert.Equal(t, "image/svg+xml", code.ContentType)
	assert.True(t, strings.HasPrefix(code.QRCodeData, "<svg"))
	assert.Contains(t, code.QRCodeData, `width="300"`)
	assert.Contains(t, code.QRCodeData, `fill="#112233"`)
	assert.Contains(t, code.QRCodeData, `fill="#fafafa"`)
	assert.True(t, strings.HasPrefix(code.QRCodeURL, "data:image/svg+xml;base64,"))
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#000000", want: color.RGBA{A: 0xff}},
		{in: "ffffff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "#f00", want: color.RGBA{R: 0xff, A: 0xff}},
		{in: "#00ff0080", want: color.RGBA{G: 0xff, A: 0x80}},
		{in: "#12", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownloadFilename(t *testing.T) {
	assert.Equal(t, "qr-code-r1.png", DownloadFilename(models.QRRequest{ReportID: "r1"}, "png"))
	assert.Equal(t, "qr-code-custom.svg", DownloadFilename(models.QRRequest{URL: "https://x.org"}, "svg"))
}

func TestQRService_ReportURLEscapesID(t *testing.T) {
	svc := NewQRService("https://rescueradar.example/")

	assert.Equal(t, "https://rescueradar.example/report/abc-123", svc.ReportURL("abc-123"))
	assert.Equal(t, "https://rescueradar.example/report/a%2Fb%3Fc=1%23top", svc.ReportURL("a/b?c=1#top"))
}

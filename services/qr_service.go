package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strconv"
	"strings"

	"github.com/boombuler/barcode/qr"

	"rescueradar/models"
	"rescueradar/utils"
)

const (
	DefaultQRSize       = 200
	DefaultQRMargin     = 4
	DefaultQRColor      = "#000000"
	DefaultQRBackground = "#ffffff"
)

type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{baseURL: strings.TrimRight(baseURL, "/")}
}

// ReportURL is the public page a report's QR code points at.
func (s *QRService) ReportURL(reportID string) string {
	return s.baseURL + "/report/" + url.PathEscape(reportID)
}

// EndpointURL is the generate-qr link returned to clients after a submission.
func (s *QRService) EndpointURL(reportID string) string {
	return fmt.Sprintf("%s/api/generate-qr?report_id=%s&format=png&size=%d", s.baseURL, url.QueryEscape(reportID), DefaultQRSize)
}

// Generate encodes the request's URL, or the report page URL, into a PNG or SVG image.
// The same input always yields byte-identical output.
func (s *QRService) Generate(req models.QRRequest) (*models.QRCode, error) {
	data := strings.TrimSpace(req.URL)
	if data == "" {
		id := strings.TrimSpace(req.ReportID)
		if id == "" {
			return nil, utils.NewBadRequestError("Either report_id or url parameter is required")
		}
		data = s.ReportURL(id)
	}

	opts := resolveQROptions(req)
	fg, err := parseHexColor(opts.Color)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}
	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	matrix, err := encodeMatrix(data)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	code := &models.QRCode{
		Data:   data,
		Format: opts.Format,
		Size:   fmt.Sprintf("%dx%d", opts.Size, opts.Size),
	}

	switch opts.Format {
	case models.QRFormatSVG:
		svg := renderSVG(matrix, opts.Size, opts.Margin, fg, bg)
		code.Content = []byte(svg)
		code.ContentType = "image/svg+xml"
		code.QRCodeData = svg
		code.QRCodeURL = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(code.Content)
	default:
		content, err := renderPNG(matrix, opts.Size, opts.Margin, fg, bg)
		if err != nil {
			return nil, fmt.Errorf("render png: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(content)
		code.Content = content
		code.ContentType = "image/png"
		code.QRCodeData = encoded
		code.QRCodeURL = "data:image/png;base64," + encoded
	}

	return code, nil
}

// DownloadFilename names the attachment for download=true requests.
func DownloadFilename(req models.QRRequest, format string) string {
	name := strings.TrimSpace(req.ReportID)
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("qr-code-%s.%s", name, format)
}

func resolveQROptions(req models.QRRequest) models.QROptions {
	opts := models.QROptions{
		Format:     models.QRFormatPNG,
		Size:       DefaultQRSize,
		Margin:     DefaultQRMargin,
		Color:      DefaultQRColor,
		Background: DefaultQRBackground,
	}
	if strings.EqualFold(req.Format, models.QRFormatSVG) {
		opts.Format = models.QRFormatSVG
	}
	if req.Size > 0 {
		opts.Size = req.Size
	}
	if req.Margin != nil {
		opts.Margin = *req.Margin
	}
	if req.Color != "" {
		opts.Color = req.Color
	}
	if req.Background != "" {
		opts.Background = req.Background
	}
	return opts
}

// encodeMatrix returns the dark modules of the symbol, indexed [y][x].
func encodeMatrix(data string) ([][]bool, error) {
	code, err := qr.Encode(data, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	bounds := code.Bounds()
	matrix := make([][]bool, bounds.Dy())
	for y := range matrix {
		row := make([]bool, bounds.Dx())
		for x := range row {
			r, _, _, _ := code.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x] = r < 0x8000
		}
		matrix[y] = row
	}
	return matrix, nil
}

func renderPNG(matrix [][]bool, size, margin int, fg, bg color.RGBA) ([]byte, error) {
	total := len(matrix) + 2*margin
	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{bg, fg})
	for py := 0; py < size; py++ {
		my := py*total/size - margin
		for px := 0; px < size; px++ {
			mx := px*total/size - margin
			if my >= 0 && my < len(matrix) && mx >= 0 && mx < len(matrix) && matrix[my][mx] {
				img.SetColorIndex(px, py, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderSVG(matrix [][]bool, size, margin int, fg, bg color.RGBA) string {
	total := len(matrix) + 2*margin

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size, total, total)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" %s/>`, total, total, svgFill(bg))
	b.WriteString(`<path d="`)
	for y, row := range matrix {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&b, "M%d %dh%dv1h-%dz", start+margin, y+margin, x-start, x-start)
		}
	}
	fmt.Fprintf(&b, `" %s/></svg>`, svgFill(fg))
	return b.String()
}

func svgFill(c color.RGBA) string {
	fill := fmt.Sprintf(`fill="#%02x%02x%02x"`, c.R, c.G, c.B)
	if c.A != 0xff {
		fill += fmt.Sprintf(` fill-opacity="%s"`, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
	}
	return fill
}

// parseHexColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa, with or without the leading hash.
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 || len(hex) == 4 {
		var expanded strings.Builder
		for _, r := range hex {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		hex = expanded.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

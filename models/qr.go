package models

const (
	QRFormatPNG = "png"
	QRFormatSVG = "svg"
)

// QRRequest is bound from the generate-qr query string.
type QRRequest struct {
	ReportID   string `form:"report_id" validate:"max=128"`
	URL        string `form:"url" validate:"omitempty,url"`
	Format     string `form:"format" validate:"omitempty,oneof=png svg"`
	Size       int    `form:"size" validate:"omitempty,gte=64,lte=2048"`
	Margin     *int   `form:"margin" validate:"omitempty,gte=0,lte=20"`
	Color      string `form:"color" validate:"omitempty,hexcolor"`
	Background string `form:"background" validate:"omitempty,hexcolor"`
	Download   bool   `form:"download"`
}

// QROptions are the resolved rendering parameters.
type QROptions struct {
	Format     string
	Size       int
	Margin     int
	Color      string
	Background string
}

// QRCode is a rendered code. QRCodeData holds base64 PNG bytes or the SVG document.
type QRCode struct {
	QRCodeData  string `json:"qr_code_data"`
	QRCodeURL   string `json:"qr_code_url"`
	Data        string `json:"data"`
	Format      string `json:"format"`
	Size        string `json:"size"`
	Content     []byte `json:"-"`
	ContentType string `json:"-"`
}

type QRResponse struct {
	Success bool    `json:"success"`
	QRCode  *QRCode `json:"qr_code"`
}

package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"
)

const (
	certificateWidth  = 1240
	certificateHeight = 877
	certificateStamp  = 240
)

// CertificateData is what a validation certificate shows.
type CertificateData struct {
	DocumentNumber string
	Title          string
	Category       string
	ValidatorName  string
	ValidatedAt    time.Time
	Stamp          []byte
}

// CertificateRenderer draws the PNG issued when a document is finalized.
type CertificateRenderer interface {
	Render(data CertificateData) ([]byte, error)
}

type certificateRenderer struct {
	heading font.Face
	label   font.Face
	body    font.Face
}

func NewCertificateRenderer() (CertificateRenderer, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	return &certificateRenderer{
		heading: newFace(bold, 48),
		label:   newFace(bold, 22),
		body:    newFace(regular, 26),
	}, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *certificateRenderer) Render(data CertificateData) ([]byte, error) {
	if strings.TrimSpace(data.DocumentNumber) == "" {
		return nil, fmt.Errorf("certificate needs a document number")
	}
	stamp, err := scaleStamp(data.Stamp, certificateStamp)
	if err != nil {
		return nil, err
	}

	const w, h = float64(certificateWidth), float64(certificateHeight)
	dc := gg.NewContext(certificateWidth, certificateHeight)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.NRGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF})
	dc.SetLineWidth(6)
	dc.DrawRectangle(24, 24, w-48, h-48)
	dc.Stroke()
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()

	dc.SetFontFace(r.heading)
	dc.DrawStringAnchored("Document Validation Certificate", w/2, 130, 0.5, 0.5)

	rows := [][2]string{
		{"Document number", data.DocumentNumber},
		{"Title", data.Title},
		{"Category", data.Category},
		{"Validated by", data.ValidatorName},
		{"Validated on", data.ValidatedAt.UTC().Format("02 January 2006 15:04 MST")},
	}
	y := 250.0
	for _, row := range rows {
		dc.SetColor(color.NRGBA{R: 0x55, G: 0x5B, B: 0x66, A: 0xFF})
		dc.SetFontFace(r.label)
		dc.DrawString(strings.ToUpper(row[0]), 100, y)
		dc.SetColor(color.Black)
		dc.SetFontFace(r.body)
		dc.DrawStringWrapped(row[1], 100, y+12, 0, 0, w-200-certificateStamp-40, 1.3, gg.AlignLeft)
		y += 96
	}

	if stamp != nil {
		b := stamp.Bounds()
		x := int(w) - 100 - b.Dx()
		top := int(h) - 100 - b.Dy()
		dc.DrawImage(stamp, x, top)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleStamp fits the stamp into a side x side box keeping its aspect ratio.
func scaleStamp(raw []byte, side int) (image.Image, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode stamp: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode stamp: empty image")
	}
	dw, dh := side, side
	if b.Dx() > b.Dy() {
		dh = max(1, b.Dy()*side/b.Dx())
	} else {
		dw = max(1, b.Dx()*side/b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, nil
}

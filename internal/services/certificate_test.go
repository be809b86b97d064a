package services

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"
)

func TestScaleStampKeepsAspectRatio(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 400, 100))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := scaleStamp(buf.Bytes(), 200)
	if err != nil {
		t.Fatalf("scaleStamp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 50 {
		t.Fatalf("size: want=200x50 got=%dx%d", b.Dx(), b.Dy())
	}
	if _, err := scaleStamp([]byte("junk"), 200); err == nil {
		t.Fatalf("want decode error for junk stamp")
	}
}

func TestRenderRequiresDocumentNumber(t *testing.T) {
	r, err := NewCertificateRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if _, err := r.Render(CertificateData{Title: "Untitled", ValidatedAt: time.Now()}); err == nil {
		t.Fatalf("want error without document number")
	}
	out, err := r.Render(CertificateData{DocumentNumber: "QM-001", Title: "Quality manual", ValidatedAt: time.Now()})
	if err != nil {
		t.Fatalf("render without stamp: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output is not png: %v", err)
	}
}

package content

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhiqutech/tiku/internal/model"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestAdaptText(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
	}{
		{name: "txt", fileName: "doc.txt"},
		{name: "markdown", fileName: "doc.md"},
		{name: "json", fileName: "doc.json"},
		{name: "csv", fileName: "doc.csv"},
		{name: "unknown extension falls back to text", fileName: "doc.xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.fileName, []byte("第1题 1+1=?"))

			result, err := NewAdapter(144).Adapt(context.Background(), path, model.FamilyOpenAI)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Type != TypeText {
				t.Errorf("expected text result, got %s", result.Type)
			}
			if result.Text != "第1题 1+1=?" {
				t.Errorf("unexpected text: %q", result.Text)
			}
			if result.PageCount != 1 {
				t.Errorf("expected page count 1, got %d", result.PageCount)
			}
		})
	}
}

func TestAdaptImage(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	path := writeTempFile(t, "page.png", raw)

	result, err := NewAdapter(144).Adapt(context.Background(), path, model.FamilyQwen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != TypeBase64 {
		t.Fatalf("expected base64 result, got %s", result.Type)
	}
	if result.MimeType != "image/png" {
		t.Errorf("expected image/png, got %s", result.MimeType)
	}
	if result.Data != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("base64 payload mismatch")
	}
}

func TestAdaptPDFGeminiInline(t *testing.T) {
	raw := []byte("%PDF-1.4 fake")
	path := writeTempFile(t, "doc.pdf", raw)

	// gemini 家族直接内联 PDF，不应触碰 pdftoppm
	adapter := NewAdapter(144)
	adapter.pdftoppmPath = "/nonexistent/pdftoppm"

	result, err := adapter.Adapt(context.Background(), path, model.FamilyGemini)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != TypeBase64 {
		t.Fatalf("expected base64 result, got %s", result.Type)
	}
	if result.MimeType != "application/pdf" {
		t.Errorf("expected pdf mime type, got %s", result.MimeType)
	}
}

func TestAdaptPDFRasterizationFailureDegrades(t *testing.T) {
	raw := []byte("%PDF-1.4 fake")
	path := writeTempFile(t, "doc.pdf", raw)

	// pdftoppm 不可用时退化为整文件 base64，而不是报错
	adapter := NewAdapter(144)
	adapter.pdftoppmPath = "/nonexistent/pdftoppm"

	result, err := adapter.Adapt(context.Background(), path, model.FamilyOpenAI)
	if err != nil {
		t.Fatalf("degraded path should not error: %v", err)
	}
	if result.Type != TypeBase64 {
		t.Fatalf("expected inline base64 fallback, got %s", result.Type)
	}
	if result.MimeType != "application/pdf" {
		t.Errorf("expected pdf mime type, got %s", result.MimeType)
	}
	if result.Data != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("fallback payload should be the whole file")
	}
}

func TestAdaptMissingFile(t *testing.T) {
	_, err := NewAdapter(144).Adapt(context.Background(), "/nonexistent/doc.txt", model.FamilyOpenAI)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

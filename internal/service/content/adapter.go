// Package content 把磁盘上的源文件转换成目标供应商需要的内容形态
package content

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zhiqutech/tiku/internal/model"
)

// ResultType 内容形态
type ResultType string

const (
	TypeText        ResultType = "text"         // UTF-8 文本
	TypeBase64      ResultType = "base64"       // 单个 base64 块
	TypeBase64Array ResultType = "base64_array" // 按页的 base64 块序列
)

// Result 内容适配结果
type Result struct {
	Type      ResultType `json:"type"`
	Text      string     `json:"text,omitempty"`
	Data      string     `json:"data,omitempty"`
	Pages     []string   `json:"pages,omitempty"`
	MimeType  string     `json:"mime_type,omitempty"`
	PageCount int        `json:"page_count"`
}

// 纯文本直读的扩展名
var textExts = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".json": true, ".csv": true,
}

// 图片扩展名到 MIME 类型
var imageMimes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

const pdfMimeType = "application/pdf"

// Adapter 内容适配器，纯字节变换，不访问网络
type Adapter struct {
	rasterDPI    int
	pdftoppmPath string
}

// NewAdapter 创建内容适配器
func NewAdapter(rasterDPI int) *Adapter {
	if rasterDPI <= 0 {
		rasterDPI = 144
	}
	return &Adapter{
		rasterDPI:    rasterDPI,
		pdftoppmPath: "pdftoppm",
	}
}

// Adapt 按文件扩展名和目标供应商家族适配内容
// 未知扩展名按文本处理并打印警告；PDF 栅格化失败时退化为整文件 base64
func (a *Adapter) Adapt(ctx context.Context, filePath, family string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch {
	case textExts[ext]:
		return a.adaptText(filePath)
	case imageMimes[ext] != "":
		return a.adaptImage(filePath, imageMimes[ext])
	case ext == ".pdf":
		return a.adaptPDF(ctx, filePath, family)
	default:
		log.Printf("unknown file extension %q, falling back to text: %s", ext, filePath)
		return a.adaptText(filePath)
	}
}

// adaptText 文本直读
func (a *Adapter) adaptText(filePath string) (*Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &Result{
		Type:      TypeText,
		Text:      string(data),
		PageCount: 1,
	}, nil
}

// adaptImage 单图 base64
func (a *Adapter) adaptImage(filePath, mimeType string) (*Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &Result{
		Type:      TypeBase64,
		Data:      base64.StdEncoding.EncodeToString(data),
		MimeType:  mimeType,
		PageCount: 1,
	}, nil
}

// adaptPDF PDF 按供应商家族分流
// gemini 家族接受内联 PDF；其余家族只接受图片，逐页栅格化
func (a *Adapter) adaptPDF(ctx context.Context, filePath, family string) (*Result, error) {
	if family == model.FamilyGemini {
		return a.inlinePDF(filePath)
	}

	pages, err := a.rasterizePDF(ctx, filePath)
	if err != nil {
		// 栅格化失败不是硬错误，退化为整文件 base64
		log.Printf("pdf rasterization failed, falling back to inline pdf: %v", err)
		return a.inlinePDF(filePath)
	}

	return &Result{
		Type:      TypeBase64Array,
		Pages:     pages,
		MimeType:  "image/jpeg",
		PageCount: len(pages),
	}, nil
}

// inlinePDF 整文件 base64，PDF MIME 类型
func (a *Adapter) inlinePDF(filePath string) (*Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &Result{
		Type:      TypeBase64,
		Data:      base64.StdEncoding.EncodeToString(data),
		MimeType:  pdfMimeType,
		PageCount: 1,
	}, nil
}

// rasterizePDF 用 pdftoppm 把 PDF 逐页渲染为 JPEG 并 base64 编码
func (a *Adapter) rasterizePDF(ctx context.Context, filePath string) ([]string, error) {
	outDir, err := os.MkdirTemp("", "tiku-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, a.pdftoppmPath,
		"-r", strconv.Itoa(a.rasterDPI), "-jpeg", filePath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w; out=%s", err, string(out))
	}

	matches, err := filepath.Glob(prefix + "*.jpg")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no pages produced by pdftoppm")
	}
	sort.Strings(matches)

	pages := make([]string, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		pages = append(pages, base64.StdEncoding.EncodeToString(data))
	}
	return pages, nil
}

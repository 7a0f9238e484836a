package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/content"
)

// gemini 家族策略（generateContent 风格接口）
// 请求/响应报文按官方 REST 结构手工组装，完整报文进审计日志
type geminiStrategy struct {
	endpoint string
	apiKey   string
	model    string
	kind     string
	prompt   PromptSource
	client   *http.Client
}

func newGeminiStrategy(cfg *model.ProviderConfig, opts Options) *geminiStrategy {
	return &geminiStrategy{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    opts.ModelName,
		kind:     opts.Kind,
		prompt:   opts.Prompts,
		client:   opts.HTTPClient,
	}
}

// gemini 请求结构
type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"system_instruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
}

// gemini 响应结构
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name 策略标签
func (s *geminiStrategy) Name() string {
	return "gemini"
}

// Parse 组装 generateContent 请求并抽取题目
func (s *geminiStrategy) Parse(ctx context.Context, cont *content.Result, fileName string) *ParseResult {
	systemPrompt := resolvePrompt(s.prompt, s.kind)

	req := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: s.buildParts(cont, fileName),
		}},
		GenerationConfig: &geminiGenConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.1,
		},
	}

	requestPayload, err := json.Marshal(req)
	if err != nil {
		return failResult(fmt.Errorf("failed to marshal request: %w", err), nil, nil)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.endpoint, s.model)
	headers := map[string]string{"x-goog-api-key": s.apiKey}

	respBody, err := postJSON(ctx, s.client, url, headers, requestPayload)
	if err != nil {
		return failResult(fmt.Errorf("gemini api call failed: %w", err), requestPayload, json.RawMessage(respBody))
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return failResult(fmt.Errorf("gemini response is not valid JSON: %w", err), requestPayload, nil)
	}
	if resp.Error != nil {
		return failResult(fmt.Errorf("gemini error %d: %s", resp.Error.Code, resp.Error.Message),
			requestPayload, json.RawMessage(respBody))
	}
	if len(resp.Candidates) == 0 {
		return failResult(fmt.Errorf("gemini returned no candidates"), requestPayload, json.RawMessage(respBody))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	questions, err := ExtractQuestions(sb.String())
	if err != nil {
		return failResult(fmt.Errorf("failed to extract questions: %w", err),
			requestPayload, json.RawMessage(respBody))
	}

	return &ParseResult{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		RequestPayload:  requestPayload,
		ResponsePayload: respBody,
	}
}

// buildParts 按内容形态组装请求分片
// gemini 接受内联 PDF，base64 单块可能是图片也可能是整份 PDF
func (s *geminiStrategy) buildParts(cont *content.Result, fileName string) []geminiPart {
	parts := []geminiPart{{Text: fmt.Sprintf("请解析文件 %s 中的题目。", fileName)}}

	switch cont.Type {
	case content.TypeBase64:
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{MimeType: cont.MimeType, Data: cont.Data},
		})
	case content.TypeBase64Array:
		for _, page := range cont.Pages {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{MimeType: cont.MimeType, Data: page},
			})
		}
	default:
		parts = append(parts, geminiPart{Text: cont.Text})
	}
	return parts
}

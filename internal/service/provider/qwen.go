package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/content"
)

// qwen 家族策略（DashScope input/parameters 风格接口）
// 只接受图片输入，PDF 由内容适配器先逐页栅格化
type qwenStrategy struct {
	endpoint string
	apiKey   string
	model    string
	kind     string
	prompt   PromptSource
	client   *http.Client
}

func newQwenStrategy(cfg *model.ProviderConfig, opts Options) *qwenStrategy {
	return &qwenStrategy{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    opts.ModelName,
		kind:     opts.Kind,
		prompt:   opts.Prompts,
		client:   opts.HTTPClient,
	}
}

// qwen 请求结构
type qwenRequest struct {
	Model      string         `json:"model"`
	Input      qwenInput      `json:"input"`
	Parameters qwenParameters `json:"parameters"`
}

type qwenInput struct {
	Messages []qwenMessage `json:"messages"`
}

type qwenMessage struct {
	Role    string        `json:"role"`
	Content []qwenContent `json:"content"`
}

type qwenContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type qwenParameters struct {
	ResultFormat string `json:"result_format"`
}

// qwen 响应结构
type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []qwenContent `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Name 策略标签
func (s *qwenStrategy) Name() string {
	return "qwen"
}

// Parse 组装 input/parameters 请求并抽取题目
func (s *qwenStrategy) Parse(ctx context.Context, cont *content.Result, fileName string) *ParseResult {
	systemPrompt := resolvePrompt(s.prompt, s.kind)

	req := qwenRequest{
		Model: s.model,
		Input: qwenInput{
			Messages: []qwenMessage{
				{Role: "system", Content: []qwenContent{{Text: systemPrompt}}},
				{Role: "user", Content: s.buildContent(cont, fileName)},
			},
		},
		Parameters: qwenParameters{ResultFormat: "message"},
	}

	requestPayload, err := json.Marshal(req)
	if err != nil {
		return failResult(fmt.Errorf("failed to marshal request: %w", err), nil, nil)
	}

	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}

	respBody, err := postJSON(ctx, s.client, s.endpoint, headers, requestPayload)
	if err != nil {
		return failResult(fmt.Errorf("qwen api call failed: %w", err), requestPayload, json.RawMessage(respBody))
	}

	var resp qwenResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return failResult(fmt.Errorf("qwen response is not valid JSON: %w", err), requestPayload, nil)
	}
	if resp.Code != "" {
		return failResult(fmt.Errorf("qwen error %s: %s", resp.Code, resp.Message),
			requestPayload, json.RawMessage(respBody))
	}
	if len(resp.Output.Choices) == 0 {
		return failResult(fmt.Errorf("qwen returned no choices"), requestPayload, json.RawMessage(respBody))
	}

	var text string
	for _, c := range resp.Output.Choices[0].Message.Content {
		text += c.Text
	}

	questions, err := ExtractQuestions(text)
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

// buildContent 按内容形态组装用户消息分片
func (s *qwenStrategy) buildContent(cont *content.Result, fileName string) []qwenContent {
	parts := []qwenContent{{Text: fmt.Sprintf("请解析文件 %s 中的题目。", fileName)}}

	switch cont.Type {
	case content.TypeBase64:
		parts = append(parts, qwenContent{
			Image: fmt.Sprintf("data:%s;base64,%s", cont.MimeType, cont.Data),
		})
	case content.TypeBase64Array:
		for _, page := range cont.Pages {
			parts = append(parts, qwenContent{
				Image: fmt.Sprintf("data:%s;base64,%s", cont.MimeType, page),
			})
		}
	default:
		parts = append(parts, qwenContent{Text: cont.Text})
	}
	return parts
}

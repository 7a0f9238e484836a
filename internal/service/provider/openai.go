package provider

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/content"
)

// openaiStrategy openai 家族策略（chat-completion 风格接口）
// 兼容所有 OpenAI 协议的服务，端点和密钥来自 ProviderConfig
type openaiStrategy struct {
	api    *openai.Client
	model  string
	kind   string
	prompt PromptSource
}

func newOpenAIStrategy(cfg *model.ProviderConfig, opts Options) *openaiStrategy {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	clientConfig.HTTPClient = opts.HTTPClient

	return &openaiStrategy{
		api:    openai.NewClientWithConfig(clientConfig),
		model:  opts.ModelName,
		kind:   opts.Kind,
		prompt: opts.Prompts,
	}
}

// Name 策略标签
func (s *openaiStrategy) Name() string {
	return "openai"
}

// Parse 组装 chat-completion 请求并抽取题目
func (s *openaiStrategy) Parse(ctx context.Context, cont *content.Result, fileName string) *ParseResult {
	systemPrompt := resolvePrompt(s.prompt, s.kind)

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			s.buildUserMessage(cont, fileName),
		},
		Temperature: 0.1,
	}
	// 纯文本输入时请求 JSON 输出模式；多模态请求部分服务不支持该参数
	if cont.Type == content.TypeText {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	requestPayload, _ := json.Marshal(req)

	resp, err := s.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return failResult(fmt.Errorf("openai api call failed: %w", err), requestPayload, nil)
	}

	responsePayload, _ := json.Marshal(resp)

	if len(resp.Choices) == 0 {
		return failResult(fmt.Errorf("openai returned no choices"), requestPayload, responsePayload)
	}

	questions, err := ExtractQuestions(resp.Choices[0].Message.Content)
	if err != nil {
		return failResult(fmt.Errorf("failed to extract questions: %w", err), requestPayload, responsePayload)
	}

	return &ParseResult{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
	}
}

// buildUserMessage 按内容形态组装用户消息
// 文本直接内联；图片按 data URI 作为多模态分片附上
func (s *openaiStrategy) buildUserMessage(cont *content.Result, fileName string) openai.ChatCompletionMessage {
	switch cont.Type {
	case content.TypeBase64:
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf("请解析文件 %s 中的题目。", fileName)},
				imagePart(cont.MimeType, cont.Data),
			},
		}
	case content.TypeBase64Array:
		parts := []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf("请解析文件 %s 中的题目，图片按页序排列。", fileName)},
		}
		for _, page := range cont.Pages {
			parts = append(parts, imagePart(cont.MimeType, page))
		}
		return openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}
	default:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("请解析文件 %s 中的题目。文件内容如下：\n\n%s", fileName, cont.Text),
		}
	}
}

func imagePart(mimeType, data string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, data),
			Detail: openai.ImageURLDetailAuto,
		},
	}
}

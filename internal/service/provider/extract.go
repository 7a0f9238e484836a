package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/zhiqutech/tiku/internal/model"
)

// 匹配 markdown 代码围栏中的 JSON
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractQuestions 从模型的文本输出中抽取规范化题目数组
// 容忍 markdown 围栏和围栏外的散文；JSON 轻微损坏时用 jsonrepair 修复后重试；
// 缺少 questions 数组时报错而不是静默吞掉
func ExtractQuestions(raw string) ([]ParsedQuestion, error) {
	text := extractJSONText(raw)
	if text == "" {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	envelope, err := decodeEnvelope(text)
	if err != nil {
		// 模型输出常见缺引号、多逗号等损伤，修复一次再试
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return nil, fmt.Errorf("response is not valid JSON: %v", err)
		}
		envelope, err = decodeEnvelope(repaired)
		if err != nil {
			return nil, fmt.Errorf("response is not valid JSON: %v", err)
		}
	}

	rawQuestions, ok := envelope["questions"]
	if !ok {
		return nil, fmt.Errorf("response JSON is missing the questions array")
	}

	var questions []ParsedQuestion
	if err := json.Unmarshal(rawQuestions, &questions); err != nil {
		return nil, fmt.Errorf("questions field is not a valid question array: %v", err)
	}

	for i := range questions {
		normalizeQuestion(&questions[i])
	}
	return questions, nil
}

// extractJSONText 剥离围栏，定位第一个 { 到最后一个 } 之间的文本
func extractJSONText(raw string) string {
	text := strings.TrimSpace(raw)

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// decodeEnvelope 解析顶层 JSON 对象，保留各字段的原始字节
func decodeEnvelope(text string) (map[string]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// normalizeQuestion 归一化单题：非法题型回退 single，难度收敛到 1-3
func normalizeQuestion(q *ParsedQuestion) {
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if !model.ValidQuestionType(q.Type) {
		q.Type = model.QuestionTypeSingle
	}
	if q.Difficulty < 1 || q.Difficulty > 3 {
		q.Difficulty = 1
	}
	q.Content = strings.TrimSpace(q.Content)
	for i := range q.Tags {
		q.Tags[i] = strings.TrimSpace(q.Tags[i])
	}
}

package provider

import (
	"strings"
	"testing"
)

// ========== ExtractQuestions 测试 ==========

func TestExtractQuestions(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantErr   string
	}{
		{
			name:      "plain json",
			raw:       `{"questions":[{"type":"single","content":"1+1=?","answer":"2"}]}`,
			wantCount: 1,
		},
		{
			name: "fenced json",
			raw: "```json\n" +
				`{"questions":[{"type":"judge","content":"地球是圆的","answer":"对"},{"type":"fill","content":"填空","answer":"x"}]}` +
				"\n```",
			wantCount: 2,
		},
		{
			name:      "prose around json",
			raw:       `好的，解析结果如下：{"questions":[{"type":"essay","content":"简述","answer":"略"}]} 以上。`,
			wantCount: 1,
		},
		{
			name:      "repairable json with trailing comma",
			raw:       `{"questions":[{"type":"single","content":"q","answer":"a"},]}`,
			wantCount: 1,
		},
		{
			name:    "missing questions key",
			raw:     `{"data":[{"type":"single","content":"q"}]}`,
			wantErr: "missing the questions array",
		},
		{
			name:    "no json at all",
			raw:     "抱歉，我无法解析这份文件。",
			wantErr: "contains no JSON object",
		},
		{
			name:      "empty questions array",
			raw:       `{"questions":[]}`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := ExtractQuestions(tt.raw)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(questions) != tt.wantCount {
				t.Fatalf("expected %d questions, got %d", tt.wantCount, len(questions))
			}
		})
	}
}

func TestExtractQuestionsNormalization(t *testing.T) {
	raw := `{"questions":[
		{"type":"SINGLE","content":"  带空格的题干  ","answer":"a","difficulty":5,"tags":[" 第1章 "]},
		{"type":"weird","content":"未知题型","answer":"b","difficulty":0}
	]}`

	questions, err := ExtractQuestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	if questions[0].Type != "single" {
		t.Errorf("expected type single, got %q", questions[0].Type)
	}
	if questions[0].Content != "带空格的题干" {
		t.Errorf("content not trimmed: %q", questions[0].Content)
	}
	if questions[0].Difficulty != 1 {
		t.Errorf("out-of-range difficulty should fall back to 1, got %d", questions[0].Difficulty)
	}
	if questions[0].Tags[0] != "第1章" {
		t.Errorf("tag not trimmed: %q", questions[0].Tags[0])
	}

	if questions[1].Type != "single" {
		t.Errorf("unknown type should fall back to single, got %q", questions[1].Type)
	}
	if questions[1].Difficulty != 1 {
		t.Errorf("zero difficulty should fall back to 1, got %d", questions[1].Difficulty)
	}
}

package document

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/provider"
)

// 无标签题目归入的兜底章节名
const unclassifiedChapter = "unclassified"

// persistQuestions 把解析出的题目按章节落库，返回入库总数
// 章节取题目的第一个标签；重复解析时先清空本章旧题目再写入，
// 保证同一文档重复解析不会累积重复数据
func (s *Service) persistQuestions(documentID uint, parsed []provider.ParsedQuestion) (int, error) {
	groups := make(map[string][]provider.ParsedQuestion)
	for _, q := range parsed {
		name := unclassifiedChapter
		if len(q.Tags) > 0 && strings.TrimSpace(q.Tags[0]) != "" {
			name = strings.TrimSpace(q.Tags[0])
		}
		groups[name] = append(groups[name], q)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})

	// 上次解析遗留、本次分组没有的章节连同其题目一并清掉，
	// 否则失败重试后换了标签的旧章节会残留，题目总数与实际行数对不上
	existing, err := s.repos.Chapter.ListByDocument(documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to list chapters: %w", err)
	}
	for _, ch := range existing {
		if _, ok := groups[ch.Name]; ok {
			continue
		}
		if err := s.repos.Chapter.Delete(ch.ID); err != nil {
			return 0, fmt.Errorf("failed to remove stale chapter %s: %w", ch.Name, err)
		}
	}

	total := 0
	for order, name := range names {
		chapter, err := s.repos.Chapter.GetOrCreate(&model.Chapter{
			DocumentID: documentID,
			Name:       name,
			SortOrder:  order + 1,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to get or create chapter %s: %w", name, err)
		}

		// 章节位次随本次分组结果刷新
		if chapter.SortOrder != order+1 {
			chapter.SortOrder = order + 1
			if err := s.repos.Chapter.Update(chapter); err != nil {
				return 0, fmt.Errorf("failed to update chapter order: %w", err)
			}
		}

		if err := s.repos.Question.DeleteByChapter(chapter.ID); err != nil {
			return 0, fmt.Errorf("failed to clear chapter questions: %w", err)
		}

		questions := make([]*model.Question, 0, len(groups[name]))
		for _, pq := range groups[name] {
			questions = append(questions, &model.Question{
				DocumentID:  documentID,
				ChapterID:   chapter.ID,
				Number:      pq.Number,
				Type:        pq.Type,
				Content:     pq.Content,
				Options:     datatypes.NewJSONSlice(pq.Options),
				Answer:      pq.Answer,
				Explanation: pq.Explanation,
				Difficulty:  pq.Difficulty,
				Tags:        datatypes.NewJSONSlice(pq.Tags),
			})
		}

		if err := s.repos.Question.CreateBatch(questions); err != nil {
			return 0, fmt.Errorf("failed to create questions for chapter %s: %w", name, err)
		}

		count, err := s.repos.Question.CountByChapter(chapter.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to count chapter questions: %w", err)
		}
		if err := s.repos.Chapter.UpdateQuestionCount(chapter.ID, int(count)); err != nil {
			return 0, fmt.Errorf("failed to update chapter question count: %w", err)
		}
		total += int(count)
	}

	return total, nil
}

// naturalLess 章节名自然排序：数字段按数值比较，其余按字典序
// 让"第2章"排在"第10章"之前
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			// 取出两边完整数字段
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}

		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

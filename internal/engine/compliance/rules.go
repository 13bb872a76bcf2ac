// internal/engine/compliance/rules.go
package compliance

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	StandardGDPT2018    = "gdpt2018"
	StandardCV5512      = "cv5512"
	StandardTerminology = "terminology"
)

// Rule is satisfied when any of its indicator phrases occurs in the content.
// Subjects and GradeLevels, when set, restrict the contexts the rule applies to.
type Rule struct {
	ID          string   `yaml:"id" json:"id"`
	Indicators  []string `yaml:"indicators" json:"indicators"`
	Weight      float64  `yaml:"weight" json:"weight"`
	Suggestion  string   `yaml:"suggestion" json:"suggestion"`
	Subjects    []string `yaml:"subjects,omitempty" json:"subjects,omitempty"`
	GradeLevels []int    `yaml:"grade_levels,omitempty" json:"gradeLevels,omitempty"`
}

type RuleSet struct {
	Name        string `yaml:"-" json:"name"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Rules       []Rule `yaml:"rules" json:"rules"`
}

// RuleBook maps canonical standard names to their rule sets.
type RuleBook map[string]RuleSet

// CanonicalStandard folds a standard name to its lookup key, so that
// "GDPT 2018", "gdpt-2018" and "gdpt2018" all resolve to the same set.
func CanonicalStandard(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeText lower-cases, composes Unicode and collapses whitespace.
// Vietnamese text arrives in both precomposed and combining forms.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}

func (r Rule) appliesTo(subject string, grade int) bool {
	if len(r.Subjects) > 0 {
		if subject == "" {
			return false
		}
		matched := false
		for _, s := range r.Subjects {
			if normalizeText(s) == subject {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(r.GradeLevels) > 0 {
		for _, g := range r.GradeLevels {
			if g == grade {
				return true
			}
		}
		return false
	}
	return true
}

func (r Rule) satisfiedBy(content string) bool {
	for _, ind := range r.Indicators {
		if phrase := normalizeText(ind); phrase != "" && strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

// Names returns the canonical standard names in sorted order.
func (b RuleBook) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b RuleBook) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: no standards defined", ErrInvalidRuleBook)
	}
	for name, set := range b {
		if name == "" || CanonicalStandard(name) != name {
			return fmt.Errorf("%w: standard key %q is not canonical", ErrInvalidRuleBook, name)
		}
		if len(set.Rules) == 0 {
			return fmt.Errorf("%w: standard %q has no rules", ErrInvalidRuleBook, name)
		}
		ids := make(map[string]struct{}, len(set.Rules))
		for i, r := range set.Rules {
			if r.ID == "" {
				return fmt.Errorf("%w: standard %q rule %d has no id", ErrInvalidRuleBook, name, i)
			}
			if _, dup := ids[r.ID]; dup {
				return fmt.Errorf("%w: standard %q has duplicate rule %q", ErrInvalidRuleBook, name, r.ID)
			}
			ids[r.ID] = struct{}{}
			if r.Weight <= 0 {
				return fmt.Errorf("%w: rule %s/%s weight must be positive", ErrInvalidRuleBook, name, r.ID)
			}
			if len(r.Indicators) == 0 {
				return fmt.Errorf("%w: rule %s/%s has no indicators", ErrInvalidRuleBook, name, r.ID)
			}
			if strings.TrimSpace(r.Suggestion) == "" {
				return fmt.Errorf("%w: rule %s/%s has no suggestion", ErrInvalidRuleBook, name, r.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy so callers can merge overrides without touching b.
func (b RuleBook) Clone() RuleBook {
	out := make(RuleBook, len(b))
	for name, set := range b {
		rules := make([]Rule, len(set.Rules))
		for i, r := range set.Rules {
			r.Indicators = append([]string(nil), r.Indicators...)
			r.Subjects = append([]string(nil), r.Subjects...)
			r.GradeLevels = append([]int(nil), r.GradeLevels...)
			rules[i] = r
		}
		set.Rules = rules
		out[name] = set
	}
	return out
}

const (
	suggestionObjectives  = "Bổ sung mục tiêu bài học và yêu cầu cần đạt"
	suggestionApplication = "Bổ sung hoạt động vận dụng kiến thức vào thực tiễn"
)

// DefaultRuleBook returns the built-in standards. Each call returns a fresh copy.
func DefaultRuleBook() RuleBook {
	return RuleBook{
		StandardGDPT2018: {
			Name:        StandardGDPT2018,
			DisplayName: "GDPT 2018",
			Rules: []Rule{
				{
					ID:         "competencies",
					Indicators: []string{"năng lực", "phẩm chất"},
					Weight:     3,
					Suggestion: "Thiếu yếu tố năng lực/phẩm chất theo GDPT 2018",
				},
				{
					ID:         "objectives",
					Indicators: []string{"mục tiêu", "yêu cầu cần đạt"},
					Weight:     2,
					Suggestion: suggestionObjectives,
				},
				{
					ID:         "learner-activity",
					Indicators: []string{"hoạt động nhóm", "thảo luận", "học sinh thực hiện", "học sinh trình bày"},
					Weight:     2,
					Suggestion: "Tăng cường hoạt động học tập chủ động của học sinh",
				},
				{
					ID:         "assessment",
					Indicators: []string{"đánh giá", "tự đánh giá", "rubric"},
					Weight:     2,
					Suggestion: "Bổ sung phương án kiểm tra, đánh giá quá trình học tập",
				},
				{
					ID:         "real-world",
					Indicators: []string{"vận dụng", "thực tiễn", "liên hệ thực tế"},
					Weight:     1,
					Suggestion: suggestionApplication,
				},
				{
					ID:         "differentiation",
					Indicators: []string{"phân hóa", "đối tượng học sinh"},
					Weight:     1,
					Suggestion: "Cân nhắc dạy học phân hóa theo đối tượng học sinh",
				},
			},
		},
		StandardCV5512: {
			Name:        StandardCV5512,
			DisplayName: "CV 5512",
			Rules: []Rule{
				{
					ID:         "opening",
					Indicators: []string{"mở đầu", "khởi động"},
					Weight:     2,
					Suggestion: "Thiếu hoạt động Mở đầu/Khởi động theo CV 5512",
				},
				{
					ID:         "new-knowledge",
					Indicators: []string{"hình thành kiến thức"},
					Weight:     2,
					Suggestion: "Thiếu hoạt động Hình thành kiến thức mới theo CV 5512",
				},
				{
					ID:         "practice",
					Indicators: []string{"luyện tập"},
					Weight:     2,
					Suggestion: "Thiếu hoạt động Luyện tập theo CV 5512",
				},
				{
					ID:         "application",
					Indicators: []string{"vận dụng"},
					Weight:     2,
					Suggestion: suggestionApplication,
				},
				{
					ID:         "activity-structure",
					Indicators: []string{"sản phẩm", "tổ chức thực hiện"},
					Weight:     1,
					Suggestion: "Mỗi hoạt động cần nêu rõ mục tiêu, nội dung, sản phẩm và tổ chức thực hiện",
				},
				{
					ID:         "materials",
					Indicators: []string{"thiết bị dạy học", "học liệu"},
					Weight:     1,
					Suggestion: "Bổ sung thiết bị dạy học và học liệu",
				},
				{
					ID:         "objectives",
					Indicators: []string{"mục tiêu"},
					Weight:     1,
					Suggestion: suggestionObjectives,
				},
			},
		},
		StandardTerminology: {
			Name:        StandardTerminology,
			DisplayName: "Thuật ngữ chuyên môn",
			Rules: []Rule{
				{
					ID:         "teaching-methods",
					Indicators: []string{"phương pháp dạy học", "kĩ thuật dạy học", "kỹ thuật dạy học"},
					Weight:     1,
					Suggestion: "Nêu rõ phương pháp và kĩ thuật dạy học được sử dụng",
				},
				{
					ID:         "key-concepts",
					Indicators: []string{"khái niệm", "thuật ngữ"},
					Weight:     1,
					Suggestion: "Giải thích rõ các khái niệm, thuật ngữ then chốt",
				},
				{
					ID:         "math-terms",
					Subjects:   []string{"Toán"},
					Indicators: []string{"định lí", "định lý", "công thức", "chứng minh"},
					Weight:     2,
					Suggestion: "Sử dụng thuật ngữ Toán học chuẩn (định lí, công thức, chứng minh)",
				},
				{
					ID:         "literature-terms",
					Subjects:   []string{"Ngữ văn"},
					Indicators: []string{"văn bản", "tác phẩm", "đọc hiểu"},
					Weight:     2,
					Suggestion: "Sử dụng thuật ngữ Ngữ văn chuẩn (văn bản, tác phẩm, đọc hiểu)",
				},
				{
					ID:         "science-terms",
					Subjects:   []string{"Khoa học tự nhiên"},
					Indicators: []string{"thí nghiệm", "giả thuyết", "quan sát"},
					Weight:     2,
					Suggestion: "Sử dụng thuật ngữ Khoa học tự nhiên chuẩn (thí nghiệm, giả thuyết, quan sát)",
				},
				{
					ID:          "exam-review",
					GradeLevels: []int{9},
					Indicators:  []string{"ôn tập", "tổng kết"},
					Weight:      1,
					Suggestion:  "Lớp 9: bổ sung nội dung ôn tập, tổng kết",
				},
			},
		},
	}
}

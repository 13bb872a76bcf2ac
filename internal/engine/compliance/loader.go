// internal/engine/compliance/loader.go
package compliance

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk layout of a rule book override:
//
//	standards:
//	  cv5512:
//	    display_name: CV 5512
//	    replace: false
//	    rules:
//	      - id: practice
//	        indicators: [luyện tập, bài tập]
//	        weight: 2
//	        suggestion: ...
type ruleFile struct {
	Standards map[string]ruleFileSet `yaml:"standards"`
}

type ruleFileSet struct {
	DisplayName string `yaml:"display_name"`
	// Replace discards the built-in rules for this standard instead of merging by id.
	Replace bool   `yaml:"replace"`
	Rules   []Rule `yaml:"rules"`
}

// LoadRuleBookFile merges the YAML file at path over base and validates the result.
func LoadRuleBookFile(path string, base RuleBook) (RuleBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule book %s: %w", path, err)
	}
	return ParseRuleBook(data, base)
}

func ParseRuleBook(data []byte, base RuleBook) (RuleBook, error) {
	var file ruleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleBook, err)
	}

	book := base.Clone()
	for rawName, fs := range file.Standards {
		name := CanonicalStandard(rawName)
		if name == "" {
			return nil, fmt.Errorf("%w: empty standard name %q", ErrInvalidRuleBook, rawName)
		}

		set, exists := book[name]
		if !exists || fs.Replace {
			set = RuleSet{Name: name, DisplayName: strings.TrimSpace(rawName)}
		}
		if dn := strings.TrimSpace(fs.DisplayName); dn != "" {
			set.DisplayName = dn
		}
		set.Rules = mergeRules(set.Rules, fs.Rules)
		book[name] = set
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// mergeRules replaces rules with a matching id in place and appends new ones.
func mergeRules(base, overrides []Rule) []Rule {
	pos := make(map[string]int, len(base))
	for i, r := range base {
		pos[r.ID] = i
	}
	out := append([]Rule(nil), base...)
	for _, r := range overrides {
		if i, ok := pos[r.ID]; ok {
			out[i] = r
			continue
		}
		pos[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resume is the portfolio owner's record. It is read-only once loaded;
// renderers show whatever sections are present.
type Resume struct {
	Name           string       `json:"name" yaml:"name"`
	Title          string       `json:"title" yaml:"title"`
	Location       string       `json:"location,omitempty" yaml:"location"`
	Email          string       `json:"email,omitempty" yaml:"email"`
	Phone          string       `json:"phone,omitempty" yaml:"phone"`
	LinkedIn       string       `json:"linkedin,omitempty" yaml:"linkedin"`
	GitHub         string       `json:"github,omitempty" yaml:"github"`
	Summary        string       `json:"summary" yaml:"summary"`
	Skills         Skills       `json:"skills" yaml:"skills"`
	Experience     []Experience `json:"experience" yaml:"experience"`
	Education      []Education  `json:"education" yaml:"education"`
	Projects       []Project    `json:"projects" yaml:"projects"`
	Achievements   []string     `json:"achievements,omitempty" yaml:"achievements"`
	Certifications []string     `json:"certifications,omitempty" yaml:"certifications"`
}

// Experience is one entry of work history.
type Experience struct {
	Role        string `json:"role" yaml:"role"`
	Company     string `json:"company" yaml:"company"`
	Period      string `json:"period" yaml:"period"`
	Description string `json:"description" yaml:"description"`
}

// Education is one entry of education history.
type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Period      string `json:"period" yaml:"period"`
	Details     string `json:"details,omitempty" yaml:"details"`
}

// Project is a showcased project with its technology tags.
type Project struct {
	Name         string   `json:"name" yaml:"name"`
	Period       string   `json:"period,omitempty" yaml:"period"`
	Link         string   `json:"link,omitempty" yaml:"link"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// SkillCategory groups skill names under a heading such as "Tools".
type SkillCategory struct {
	Name  string
	Items []string
}

// Skills maps category names to skill lists. On the wire it is a JSON/YAML
// object; category order is preserved in both directions.
type Skills []SkillCategory

// All returns every skill name in category order.
func (s Skills) All() []string {
	var all []string
	for _, c := range s {
		all = append(all, c.Items...)
	}
	return all
}

// MarshalJSON writes the categories as an object in their stored order.
func (s Skills) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		items := c.Items
		if items == nil {
			items = []string{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string arrays, keeping key order.
func (s *Skills) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode skills: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode skills: expected object, got %v", tok)
	}

	var out Skills
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode skills: %w", err)
		}
		name, _ := tok.(string)
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("decode skills[%q]: %w", name, err)
		}
		out = append(out, SkillCategory{Name: name, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode skills: %w", err)
	}

	*s = out
	return nil
}

// UnmarshalYAML reads a mapping of sequences, keeping key order.
func (s *Skills) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*s = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("skills: expected mapping at line %d", value.Line)
	}

	out := make(Skills, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var items []string
		if err := value.Content[i+1].Decode(&items); err != nil {
			return fmt.Errorf("skills[%q]: %w", value.Content[i].Value, err)
		}
		out = append(out, SkillCategory{Name: value.Content[i].Value, Items: items})
	}

	*s = out
	return nil
}

// MarshalYAML writes the categories as a mapping in their stored order.
func (s Skills) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range s {
		var items yaml.Node
		if err := items.Encode(c.Items); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name},
			&items,
		)
	}
	return node, nil
}

// Package resume loads the portfolio owner's resume record from the embedded
// default, a local file, or a remote folio server.
package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/folio/internal/model"
)

//go:embed default_resume.yaml
var defaultResumeRaw []byte

// defaultResume is parsed once at package init; Default hands out copies.
var defaultResume = mustParseYAML(defaultResumeRaw)

// Default returns the embedded resume. Callers may modify the result.
func Default() model.Resume {
	return Clone(defaultResume)
}

// Parse decodes a resume from JSON or YAML. format is a file extension
// (".json", ".yaml", ".yml"); anything other than ".json" is read as YAML.
func Parse(data []byte, format string) (model.Resume, error) {
	var r model.Resume
	if strings.EqualFold(format, ".json") {
		if err := json.Unmarshal(data, &r); err != nil {
			return model.Resume{}, fmt.Errorf("parse resume json: %w", err)
		}
		return r, nil
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return model.Resume{}, fmt.Errorf("parse resume yaml: %w", err)
	}
	return r, nil
}

// FormatOf returns the format key Parse expects for path.
func FormatOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Clone deep-copies r so the copy shares no slices with the original.
func Clone(r model.Resume) model.Resume {
	out := r
	if r.Skills != nil {
		out.Skills = make(model.Skills, len(r.Skills))
		for i, c := range r.Skills {
			out.Skills[i] = model.SkillCategory{Name: c.Name, Items: cloneSlice(c.Items)}
		}
	}
	out.Experience = cloneSlice(r.Experience)
	out.Education = cloneSlice(r.Education)
	out.Projects = cloneSlice(r.Projects)
	for i := range out.Projects {
		out.Projects[i].Technologies = cloneSlice(out.Projects[i].Technologies)
	}
	out.Achievements = cloneSlice(r.Achievements)
	out.Certifications = cloneSlice(r.Certifications)
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func mustParseYAML(data []byte) model.Resume {
	r, err := Parse(data, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded default resume: %v", err))
	}
	return r
}

package tagging

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultVocabulary is the built-in tag list for a driver's log.
var DefaultVocabulary = []string{
	"ترافیک",
	"تصادف",
	"مسافر",
	"سوخت",
	"تعمیر",
	"پلیس",
	"جاده",
	"آب و هوا",
	"خستگی",
	"هزینه",
	"مسیر",
	"پارکینگ",
	"درآمد",
	"خاطره",
}

// Vocabulary is the controlled set of tags the service may return.
type Vocabulary struct {
	tags []string
	set  map[string]struct{}
}

// NewVocabulary trims tags, drops blanks and duplicates, and keeps order.
func NewVocabulary(tags []string) Vocabulary {
	v := Vocabulary{set: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := v.set[t]; dup {
			continue
		}
		v.set[t] = struct{}{}
		v.tags = append(v.tags, t)
	}
	return v
}

func (v Vocabulary) Tags() []string {
	return append([]string(nil), v.tags...)
}

func (v Vocabulary) Contains(tag string) bool {
	_, ok := v.set[tag]
	return ok
}

func (v Vocabulary) Len() int {
	return len(v.tags)
}

type vocabularyFile struct {
	Tags []string `yaml:"tags"`
}

// LoadVocabulary reads a YAML file of the form:
//
//	tags:
//	  - ترافیک
//	  - مسافر
//
// An empty path returns DefaultVocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return NewVocabulary(DefaultVocabulary), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	v := NewVocabulary(f.Tags)
	if v.Len() == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary %s has no tags", path)
	}
	return v, nil
}

package content

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-folio/internal/dateutil"
	"github.com/alnah/go-folio/internal/yamlutil"
)

// yamlFormat parses "---" fenced front matter with goccy/go-yaml.
var yamlFormat = frontmatter.NewFormat("---", "---", yamlutil.UnmarshalOptional)

// FrontMatter holds every field read from a document header. Fields that
// only apply to one kind are ignored by the others.
type FrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Date        any      `yaml:"date"`
	Excerpt     string   `yaml:"excerpt"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
	Hidden      bool     `yaml:"hidden"`
	Published   *bool    `yaml:"published"`
	Cover       string   `yaml:"cover"`
	Image       string   `yaml:"image"`
	Order       int      `yaml:"order"`
	Status      string   `yaml:"status"`
	Tech        []string `yaml:"tech"`
	TechStack   []string `yaml:"tech_stack"`
	Link        string   `yaml:"link"`
	GitHub      string   `yaml:"github"`
}

// ParseFrontMatter splits r into front matter and body. A file without a
// header yields a zero FrontMatter and the whole input as body.
func ParseFrontMatter(r io.Reader) (FrontMatter, string, error) {
	var fm FrontMatter
	rest, err := frontmatter.Parse(r, &fm, yamlFormat)
	if err != nil {
		return FrontMatter{}, "", fmt.Errorf("%w: %v", ErrInvalidFrontMatter, err)
	}
	return fm, string(rest), nil
}

// IsPublished applies the hidden flag and an explicit published: false.
func (fm FrontMatter) IsPublished() bool {
	if fm.Hidden {
		return false
	}
	return fm.Published == nil || *fm.Published
}

// PublishedAt parses the date field. YAML timestamps decode to time.Time;
// anything else goes through dateutil.ParseDate. A missing date is the zero
// time.
func (fm FrontMatter) PublishedAt() (time.Time, error) {
	switch v := fm.Date.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		t, err := dateutil.ParseDate(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported value %v", ErrInvalidDate, v)
	}
}

// TechList returns tech, falling back to tech_stack.
func (fm FrontMatter) TechList() []string {
	if len(fm.Tech) > 0 {
		return fm.Tech
	}
	return fm.TechStack
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

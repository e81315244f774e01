// Package content holds the portfolio copy: profile, skills, projects and links.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/devfolio/internal/nav"
)

//go:embed portfolio.yaml
var defaultYAML []byte

type Profile struct {
	Name      string `yaml:"name" json:"name"`
	Handle    string `yaml:"handle" json:"handle"`
	Greeting  string `yaml:"greeting" json:"greeting"`
	Role      string `yaml:"role" json:"role"`
	GithubURL string `yaml:"github_url" json:"github_url"`
}

type NavLink struct {
	ID    nav.SectionID `yaml:"id" json:"id"`
	Label string        `yaml:"label" json:"label"`
}

type TechCategory struct {
	Category string   `yaml:"category" json:"category"`
	Items    []string `yaml:"items" json:"items"`
}

type Project struct {
	Icon         string   `yaml:"icon" json:"icon"`
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Image        string   `yaml:"image" json:"image"`
	Link         string   `yaml:"link,omitempty" json:"link,omitempty"`
}

type Social struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Portfolio is everything the page renders apart from the contact form.
type Portfolio struct {
	Profile      Profile        `yaml:"profile" json:"profile"`
	Nav          []NavLink      `yaml:"nav" json:"nav"`
	Technologies []TechCategory `yaml:"technologies" json:"technologies"`
	Projects     []Project      `yaml:"projects" json:"projects"`
	Socials      []Social       `yaml:"socials" json:"socials"`
}

// Default returns the embedded portfolio.
func Default() (Portfolio, error) {
	return Parse(defaultYAML)
}

// Load reads a portfolio from path, or the embedded one when path is empty.
func Load(path string) (Portfolio, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Portfolio{}, fmt.Errorf("content: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML portfolio document.
func Parse(data []byte) (Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Portfolio{}, fmt.Errorf("content: parse: %w", err)
	}
	if err := p.validate(); err != nil {
		return Portfolio{}, err
	}
	return p, nil
}

func (p Portfolio) validate() error {
	if strings.TrimSpace(p.Profile.Name) == "" {
		return fmt.Errorf("content: profile name is required")
	}
	if len(p.Nav) != len(nav.Sections) {
		return fmt.Errorf("content: nav must list %d sections, got %d", len(nav.Sections), len(p.Nav))
	}
	for i, link := range p.Nav {
		if link.ID != nav.Sections[i] {
			return fmt.Errorf("content: nav entry %d is %q, want %q", i, link.ID, nav.Sections[i])
		}
	}
	for i, project := range p.Projects {
		if strings.TrimSpace(project.Title) == "" {
			return fmt.Errorf("content: project %d has no title", i)
		}
	}
	return nil
}

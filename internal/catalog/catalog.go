// Package catalog loads lab definitions from HCL files.
//
// A catalog file holds any number of lab blocks:
//
//	lab "bash-1" {
//	  title             = "File Manipulation"
//	  category          = "bash"
//	  difficulty        = "beginner"
//	  estimated_minutes = 15
//	  ...
//	  validation {
//	    type     = "file"
//	    expected = "Hello DevOps!"
//	  }
//	  check {
//	    all_of = ["echo \"Hello DevOps!\" > hello.txt"]
//	  }
//	}
//
// A lab passes when any of its check blocks matches.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"opscurator/internal/domain"
)

//go:embed labs/*.hcl
var builtin embed.FS

type hclCatalogFile struct {
	Labs []*hclLab `hcl:"lab,block"`
}

type hclLab struct {
	ID               string         `hcl:"id,label"`
	Title            string         `hcl:"title"`
	Category         string         `hcl:"category"`
	Difficulty       string         `hcl:"difficulty"`
	Description      string         `hcl:"description,optional"`
	EstimatedMinutes int            `hcl:"estimated_minutes,optional"`
	Instructions     string         `hcl:"instructions"`
	StarterCode      string         `hcl:"starter_code"`
	Solution         string         `hcl:"solution,optional"`
	SuccessOutput    string         `hcl:"success_output,optional"`
	FailureOutput    string         `hcl:"failure_output,optional"`
	Validation       *hclValidation `hcl:"validation,block"`
	Checks           []*hclCheck    `hcl:"check,block"`
}

type hclValidation struct {
	Type        string `hcl:"type"`
	Expected    string `hcl:"expected"`
	Description string `hcl:"description,optional"`
}

type hclCheck struct {
	AllOf []string `hcl:"all_of"`
}

// Load parses every .hcl file below dir, sorted by path.
func Load(dir string) ([]*domain.Lab, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog files in %s: %w", dir, err)
	}
	sort.Strings(files)

	return loadFiles(files, os.ReadFile)
}

// LoadEmbedded returns the catalog compiled into the binary.
func LoadEmbedded() ([]*domain.Lab, error) {
	files, err := fs.Glob(builtin, "labs/*.hcl")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	return loadFiles(files, builtin.ReadFile)
}

func loadFiles(files []string, read func(string) ([]byte, error)) ([]*domain.Lab, error) {
	parser := hclparse.NewParser()
	seen := make(map[string]string)
	var labs []*domain.Lab

	for _, file := range files {
		src, err := read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", file, err)
		}
		parsed, err := parseFile(parser, file, src)
		if err != nil {
			return nil, err
		}
		for _, lab := range parsed {
			if prev, dup := seen[lab.ID]; dup {
				return nil, fmt.Errorf("duplicate lab id %q in %s (first defined in %s)", lab.ID, file, prev)
			}
			seen[lab.ID] = file
			labs = append(labs, lab)
		}
	}
	return labs, nil
}

// Parse decodes a single catalog document held in memory.
func Parse(filename string, src []byte) ([]*domain.Lab, error) {
	return parseFile(hclparse.NewParser(), filename, src)
}

func parseFile(parser *hclparse.Parser, filename string, src []byte) ([]*domain.Lab, error) {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", filename, diags)
	}

	var parsed hclCatalogFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", filename, diags)
	}

	labs := make([]*domain.Lab, 0, len(parsed.Labs))
	for _, l := range parsed.Labs {
		lab := l.toDomain()
		if err := lab.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		labs = append(labs, lab)
	}
	return labs, nil
}

func (l *hclLab) toDomain() *domain.Lab {
	lab := &domain.Lab{
		ID:               l.ID,
		Title:            l.Title,
		Category:         domain.Category(l.Category),
		Difficulty:       domain.Difficulty(l.Difficulty),
		Description:      l.Description,
		EstimatedMinutes: l.EstimatedMinutes,
		Instructions:     trimHeredoc(l.Instructions),
		StarterCode:      trimHeredoc(l.StarterCode),
		Solution:         trimHeredoc(l.Solution),
		SuccessOutput:    trimHeredoc(l.SuccessOutput),
		FailureOutput:    trimHeredoc(l.FailureOutput),
	}
	if l.Validation != nil {
		lab.Validation = domain.Validation{
			Type:        domain.ValidationType(l.Validation.Type),
			Expected:    l.Validation.Expected,
			Description: l.Validation.Description,
		}
	}
	for _, c := range l.Checks {
		lab.Checks = append(lab.Checks, domain.Check{AllOf: c.AllOf})
	}
	return lab
}

// heredocs always end with a newline
func trimHeredoc(s string) string {
	return strings.TrimSuffix(s, "\n")
}

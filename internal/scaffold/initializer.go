package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/hive/internal/config"
	"github.com/dyluth/hive/internal/printer"
	"github.com/dyluth/hive/internal/timespec"
	"github.com/dyluth/hive/internal/validate"
)

//go:embed templates/*
var templatesFS embed.FS

// StatePath is where the seed state document is written, relative to the project root.
var StatePath = filepath.Join("docs", "hive_state.json")

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path         string
	Content      []byte
	Permissions  os.FileMode
	KeepExisting bool // Never overwritten, even with force
}

// Outcome lists what Initialize did
type Outcome struct {
	Created []string
	Kept    []string
}

// Initializer creates hive projects on a filesystem
type Initializer struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewInitializer creates an initializer for the project rooted at dir
func NewInitializer(fs afero.Fs, dir string) *Initializer {
	return &Initializer{fs: fs, dir: dir, now: timespec.Now}
}

// Initialize creates hive.yml and a seed docs/hive_state.json.
// If force is true, an existing hive.yml is replaced. An existing state
// document is always kept.
func (i *Initializer) Initialize(force bool) (*Outcome, error) {
	if !force {
		if err := i.CheckExisting(); err != nil {
			return nil, err
		}
	}

	files, err := i.getTemplateFiles()
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for _, file := range files {
		path := filepath.Join(i.dir, file.Path)
		if file.KeepExisting {
			if exists, _ := afero.Exists(i.fs, path); exists {
				outcome.Kept = append(outcome.Kept, file.Path)
				continue
			}
		}
		if err := i.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(file.Path), err)
		}
		if err := afero.WriteFile(i.fs, path, file.Content, file.Permissions); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
		outcome.Created = append(outcome.Created, file.Path)
	}

	if err := i.validateCreatedFiles(); err != nil {
		return nil, err
	}
	return outcome, nil
}

// getTemplateFiles reads and renders all template files
func (i *Initializer) getTemplateFiles() ([]FileInfo, error) {
	hiveYml, err := templatesFS.ReadFile("templates/hive.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read hive.yml template: %w", err)
	}

	now := i.now()
	state, err := render("templates/hive_state.json.tmpl", map[string]string{
		"UpdatedAt": timespec.Format(now),
		"When":      now.UTC().Format(timespec.DisplayLayout),
	})
	if err != nil {
		return nil, err
	}

	return []FileInfo{
		{Path: config.FileName, Content: hiveYml, Permissions: 0644},
		{Path: StatePath, Content: state, Permissions: 0644, KeepExisting: true},
	}, nil
}

func render(name string, data any) ([]byte, error) {
	tmpl, err := template.ParseFS(templatesFS, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// validateCreatedFiles checks that hive.yml is a valid configuration and the
// state document validates without hard errors
func (i *Initializer) validateCreatedFiles() error {
	content, err := afero.ReadFile(i.fs, filepath.Join(i.dir, config.FileName))
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.FileName, err)
	}
	var cfg config.HiveConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", config.FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.FileName, err)
	}

	raw, err := validate.Load(i.fs, filepath.Join(i.dir, StatePath))
	if err != nil {
		return err
	}
	if report := validate.Check(raw); !report.OK() {
		return fmt.Errorf("%s does not validate: %w", StatePath, report.Err())
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess(outcome *Outcome) {
	printer.Println("\n✅ Successfully initialized hive project!")
	printer.Println("\nCreated:")
	for _, path := range outcome.Created {
		printer.Printf("  ✓ %s\n", path)
	}
	if len(outcome.Kept) > 0 {
		printer.Println("\nKept existing:")
		for _, path := range outcome.Kept {
			printer.Printf("  • %s\n", path)
		}
	}
	printer.Println("\nNext steps:")
	printer.Printf("  1. Edit %s to describe your hive\n", StatePath)
	printer.Println("  2. Run 'hive validate' to check it")
	printer.Println("  3. Run 'hive build' to write the site artifacts")
}

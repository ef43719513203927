package scaffold

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dyluth/hive/internal/config"
)

// CheckExisting checks if hive.yml or the state document already exist
// Returns an error if they do, nil otherwise
func (i *Initializer) CheckExisting() error {
	var existingFiles []string

	for _, name := range []string{config.FileName, StatePath} {
		if exists, _ := afero.Exists(i.fs, filepath.Join(i.dir, name)); exists {
			existingFiles = append(existingFiles, name)
		}
	}

	if len(existingFiles) > 0 {
		errMsg := "project already initialized\n\nFound existing"
		if len(existingFiles) == 1 {
			errMsg += fmt.Sprintf(": %s\n", existingFiles[0])
		} else {
			errMsg += " files:\n"
			for _, file := range existingFiles {
				errMsg += fmt.Sprintf("  - %s\n", file)
			}
		}
		errMsg += "\nUse 'hive init --force' to rewrite hive.yml (an existing state document is kept)"

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

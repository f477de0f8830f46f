package repo

import (
	"context"
	"fmt"

	"courier/internal/api/models"

	"github.com/BurntSushi/toml"
)

type userDirectoryFile struct {
	Users []models.UserDetails `toml:"users"`
}

// FileUserDirectory reads the sender directory from a TOML file of [[users]] tables.
// The file is read on every call so edits apply without a restart.
type FileUserDirectory struct {
	path string
}

func NewFileUserDirectory(path string) *FileUserDirectory {
	return &FileUserDirectory{path: path}
}

func (slf *FileUserDirectory) List(ctx context.Context) ([]models.UserDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var file userDirectoryFile
	if _, err := toml.DecodeFile(slf.path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", slf.path, err)
	}
	for i := range file.Users {
		file.Users[i].ID = uint(i + 1)
		if file.Users[i].EmailService == models.ProviderNone {
			file.Users[i].EmailService = models.ProviderGmail
		}
	}
	return file.Users, nil
}

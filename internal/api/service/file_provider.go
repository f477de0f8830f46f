package service

import "os"

// FileProvider is the file system as seen by the send and capture tasks
type FileProvider interface {
	Exists(path string) bool
	Delete(path string) bool
}

// OSFileProvider works on the local disk. Directories do not count as files.
type OSFileProvider struct{}

func (OSFileProvider) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Delete reports true only when a file was actually removed
func (p OSFileProvider) Delete(path string) bool {
	if !p.Exists(path) {
		return false
	}
	return os.Remove(path) == nil
}

func DoesFileExist(path string) bool {
	return OSFileProvider{}.Exists(path)
}

func DeleteFile(path string) bool {
	return OSFileProvider{}.Delete(path)
}

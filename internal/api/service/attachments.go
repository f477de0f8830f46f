package service

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveAttachments maps client supplied attachment paths onto files under root.
// Paths must be relative and may not climb out of root. An empty root refuses every attachment.
// Empty entries are kept so the composer can drop them.
func ResolveAttachments(root string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return paths, nil
	}
	base, err := filepath.Abs(root)
	if root == "" || err != nil {
		for _, p := range paths {
			if p != "" {
				return nil, fmt.Errorf("%w: attachments are disabled", ErrAttachmentOutside)
			}
		}
		return paths, nil
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			resolved = append(resolved, p)
			continue
		}
		native := filepath.FromSlash(p)
		if filepath.IsAbs(native) || filepath.VolumeName(native) != "" {
			return nil, fmt.Errorf("%w: %s is absolute", ErrAttachmentOutside, p)
		}
		joined := filepath.Join(base, native)
		rel, err := filepath.Rel(base, joined)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s", ErrAttachmentOutside, p)
		}
		resolved = append(resolved, joined)
	}
	return resolved, nil
}

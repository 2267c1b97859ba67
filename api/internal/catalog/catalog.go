// Package catalog enumerates the image files a run works on.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carinfo/api/internal/util"
)

// Extensions accepted as images, lower case.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Item is one image file. Items are never mutated after Scan.
type Item struct {
	Filename string
	Path     string
	MIME     string
}

func NewItem(dir, name string) Item {
	return Item{
		Filename: name,
		Path:     filepath.Join(dir, name),
		MIME:     util.MIMEFromExt(name),
	}
}

// Read returns the file content. It is called once per processing attempt.
func (it Item) Read() ([]byte, error) {
	return os.ReadFile(it.Path)
}

// Scan lists dir and keeps regular entries with an image extension, in the
// order os.ReadDir returns them.
func Scan(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read images dir: %w", err)
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		items = append(items, NewItem(dir, e.Name()))
	}
	return items, nil
}

func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, x := range Extensions {
		if ext == x {
			return true
		}
	}
	return false
}

package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var seedExts = map[string]bool{".xml": true, ".json": true, ".jsonc": true, ".yaml": true, ".yml": true}

// Seed saves every template file directly under dir, keyed by file name.
// Existing sources with the same name are replaced.
func Seed(s Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading template dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !seedExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		if err := s.Save(Source{Name: e.Name(), Body: string(body)}); err != nil {
			return n, fmt.Errorf("saving %s: %w", e.Name(), err)
		}
		n++
	}
	log.Printf("store: seeded %d template sources from %s", n, dir)
	return n, nil
}

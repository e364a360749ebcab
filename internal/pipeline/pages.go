package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var trailingNumber = regexp.MustCompile(`(\d+)\D*$`)

// LoadRenderedPages reads every page image in dir in render order. The
// renderer names files with a page number (page-001.png, 2.jpg, ...); files
// sort by that number, with a lexical fallback for unnumbered names. Hidden
// files are ignored.
func LoadRenderedPages(dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pages directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		ni, iOK := pageNumberOf(names[i])
		nj, jOK := pageNumberOf(names[j])
		if iOK && jOK && ni != nj {
			return ni < nj
		}
		if iOK != jOK {
			return iOK
		}
		return names[i] < names[j]
	})

	pages := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read page image %s: %w", name, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func pageNumberOf(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	match := trailingNumber.FindStringSubmatch(base)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

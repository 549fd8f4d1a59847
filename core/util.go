package core

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var slugStripRegex = regexp.MustCompile(`[^\w-]+`)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify lowers `s`, replaces every space with "-" and drops anything that is not a word character or "-".
func Slugify(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), " ", "-")
	return slugStripRegex.ReplaceAllString(s, "")
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests,
// so we walk up from the current directory. Falls back to the current directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

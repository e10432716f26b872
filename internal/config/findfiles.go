package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var configExtensions = []string{".hcl", ".yaml", ".yml"}

func findFilesInPath(configDir string) ([]string, error) {
	var matches []string

	err := filepath.Walk(configDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		for _, e := range configExtensions {
			if ext == e {
				matches = append(matches, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return matches, err
	}

	if len(matches) == 0 {
		return matches, fmt.Errorf("could not find any configuration files in %s", configDir)
	}

	sort.Strings(matches)
	return matches, nil
}

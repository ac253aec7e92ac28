package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// CatalogFile is the raw curriculum read from a YAML file:
//
//	semesters:
//	  "1": ["UG1101 Introduction to Linguistics", ...]
//	resource_types: ["Books", "Past Questions", "Syllabus", "Notes"]
type CatalogFile struct {
	Semesters     map[int][]string
	ResourceTypes []string
}

// LoadCatalog reads a curriculum override from path.
func LoadCatalog(path string) (*CatalogFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	raw := v.GetStringMapStringSlice("semesters")
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog file %s: no semesters defined", path)
	}

	file := &CatalogFile{
		Semesters:     make(map[int][]string, len(raw)),
		ResourceTypes: v.GetStringSlice("resource_types"),
	}
	for key, courses := range raw {
		semester, err := strconv.Atoi(key)
		if err != nil || semester <= 0 {
			return nil, fmt.Errorf("catalog file %s: invalid semester key %q", path, key)
		}
		file.Semesters[semester] = courses
	}
	return file, nil
}

package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultResourceTypes are the categories offered for every course.
var DefaultResourceTypes = []string{"Books", "Past Questions", "Syllabus", "Notes"}

var defaultSemesters = map[int][]string{
	1: {
		"UG1101 Introduction to Linguistics",
		"UG1102 Historical Linguistics",
		"UG1103 Academic Bangla",
		"UG1104 Academic English",
		"GEDC01 Sociology Anthropology",
	},
	2: {
		"UG1205 Morphology 1",
		"UG1206 Phonetics and Phonology 1",
		"UG1207 Writing System and Orthography",
		"GEDC02 ICT Fundamentals",
		"GEDC03 Psychology",
	},
	3: {
		"UG2301 Syntax 1",
		"UG2302 Semantics",
		"UG2303 Lexicology",
		"GEDC04 Bangla Literature",
	},
	4: {
		"UG2404 Morphology 2",
		"UG2405 Pragmatics",
		"UG2406 Sociolinguistics",
		"UG2407 Modern Schools of Linguistic Thought",
		"GEDN01 Leadership and Communication Development",
	},
	5: {
		"UG3501 Phonetics 2",
		"UG3502 Sign Language and Non-Verbal Communication",
		"UG3503 Semiotics and Communication Studies",
		"UG3504 Educational Linguistics",
		"GEDC05 Introduction to Statistics",
		"GEDC06 General Mathematics",
		"GEDN02 A Modern Language",
	},
	6: {
		"UG3605 Phonology 2",
		"UG3606 Research Methodology",
		"UG3607 Language Policy and Planning",
		"GEDC07 Bangla Literature 2",
		"GEDN03 Professional Ethics",
	},
	7: {
		"UG4701 Syntax 2",
		"UG4702 Language Documentation and Linguistic Field Methods",
		"UG4703 Stylistics",
		"GEDC08 Fundamentals of ICT",
	},
	8: {
		"UG4804 Psycholinguistics",
		"UG4805 Clinical Linguistics",
		"UG4806 Dialectology and Bangla Dialects",
		"GEDC09 Bangladesh Studies",
		"TC4810 Capstone Course/Thesis/Internship",
	},
}

// Catalog is the immutable semester → course → resource type taxonomy.
type Catalog struct {
	semesters     map[int][]string
	order         []int
	resourceTypes []string
}

// NewCatalog copies the given curriculum into an immutable Catalog.
func NewCatalog(semesters map[int][]string, resourceTypes []string) (*Catalog, error) {
	if len(semesters) == 0 {
		return nil, fmt.Errorf("catalog requires at least one semester")
	}
	if len(resourceTypes) == 0 {
		resourceTypes = DefaultResourceTypes
	}

	c := &Catalog{
		semesters:     make(map[int][]string, len(semesters)),
		order:         make([]int, 0, len(semesters)),
		resourceTypes: make([]string, 0, len(resourceTypes)),
	}
	for semester, courses := range semesters {
		if semester <= 0 {
			return nil, fmt.Errorf("invalid semester %d", semester)
		}
		c.semesters[semester] = append([]string(nil), courses...)
		c.order = append(c.order, semester)
	}
	sort.Ints(c.order)

	seen := make(map[string]struct{}, len(resourceTypes))
	for _, name := range resourceTypes {
		key := ResourceTypeKey(name)
		// Keys travel inside '_'-delimited action tokens.
		if key == "" || strings.Contains(key, "_") {
			return nil, fmt.Errorf("invalid resource type %q", name)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate resource type %q", name)
		}
		seen[key] = struct{}{}
		c.resourceTypes = append(c.resourceTypes, name)
	}
	return c, nil
}

// DefaultCatalog returns the built-in linguistics curriculum.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultSemesters, DefaultResourceTypes)
	if err != nil {
		panic(err)
	}
	return c
}

// Semesters returns the known semester keys in ascending order.
func (c *Catalog) Semesters() []int {
	return append([]int(nil), c.order...)
}

// CoursesFor returns the ordered course names of a semester; unknown semesters yield an empty slice.
func (c *Catalog) CoursesFor(semester int) []string {
	return append([]string{}, c.semesters[semester]...)
}

// Course resolves a course by positional index.
func (c *Catalog) Course(semester, index int) (string, bool) {
	courses := c.semesters[semester]
	if index < 0 || index >= len(courses) {
		return "", false
	}
	return courses[index], true
}

// ResourceTypes returns the fixed ordered category names.
func (c *Catalog) ResourceTypes() []string {
	return append([]string(nil), c.resourceTypes...)
}

// ResourceTypeByKey resolves the display name of a lowercase resource type key.
func (c *Catalog) ResourceTypeByKey(key string) (string, bool) {
	for _, name := range c.resourceTypes {
		if ResourceTypeKey(name) == key {
			return name, true
		}
	}
	return "", false
}

// MatchResourceType resolves a loosely typed argument such as "past_questions" or "Notes".
func (c *Catalog) MatchResourceType(arg string) (key string, name string, ok bool) {
	normalized := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(arg)))
	normalized = strings.Join(strings.Fields(normalized), " ")
	name, ok = c.ResourceTypeByKey(normalized)
	if !ok {
		return "", "", false
	}
	return normalized, name, true
}

// FindCourse resolves a course by index or by its exact code (the first word of
// the course name, case-insensitive). Partial codes and codes shared by several
// courses do not resolve.
func (c *Catalog) FindCourse(semester int, ref string) (int, string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, "", false
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		name, ok := c.Course(semester, idx)
		return idx, name, ok
	}
	found := -1
	for idx, name := range c.semesters[semester] {
		fields := strings.Fields(name)
		if len(fields) == 0 || !strings.EqualFold(fields[0], ref) {
			continue
		}
		if found >= 0 {
			return 0, "", false
		}
		found = idx
	}
	if found < 0 {
		return 0, "", false
	}
	return found, c.semesters[semester][found], true
}

// ResourceTypeKey is the lowercase form stored in the database and carried in action tokens.
func ResourceTypeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

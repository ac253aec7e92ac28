// Package navigation encodes menu actions as button tokens and renders the bot's menus.
package navigation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates button actions.
type Kind int

// Action kinds in token grammar order.
const (
	KindSemester Kind = iota + 1
	KindCourse
	KindResources
	KindFile
	KindUpload
	KindUploadType
	KindDelete
	KindConfirmDelete
	KindCancelDelete
	KindHelp
	KindBackToStart
)

const (
	prefixSemester      = "sem"
	prefixCourse        = "course"
	prefixResources     = "res"
	prefixFile          = "file"
	prefixUpload        = "upload"
	prefixUploadType    = "uploadtype"
	prefixDelete        = "delete"
	prefixConfirmDelete = "confirmdelete"
	prefixCancelDelete  = "canceldelete"
	tokenHelp           = "help"
	tokenBackToStart    = "back_to_start"
)

// ErrMalformedToken is returned for payloads outside the button grammar.
var ErrMalformedToken = errors.New("malformed action token")

// Action is a decoded button payload.
type Action struct {
	Kind         Kind
	Semester     int
	Course       int
	ResourceType string
	ResourceID   int64
}

// Semester navigates to a semester's course list.
func Semester(s int) Action { return Action{Kind: KindSemester, Semester: s} }

// Course navigates to a course's resource types.
func Course(s, c int) Action { return Action{Kind: KindCourse, Semester: s, Course: c} }

// Resources lists one resource bucket.
func Resources(s, c int, typeKey string) Action {
	return Action{Kind: KindResources, Semester: s, Course: c, ResourceType: typeKey}
}

// File requests the document of a resource.
func File(id int64) Action { return Action{Kind: KindFile, ResourceID: id} }

// Upload starts the admin upload flow for a course.
func Upload(s, c int) Action { return Action{Kind: KindUpload, Semester: s, Course: c} }

// UploadType picks the type of a pending upload.
func UploadType(typeKey string) Action { return Action{Kind: KindUploadType, ResourceType: typeKey} }

// Delete asks for confirmation before removing a resource.
func Delete(id int64) Action { return Action{Kind: KindDelete, ResourceID: id} }

// ConfirmDelete removes a resource.
func ConfirmDelete(id int64) Action { return Action{Kind: KindConfirmDelete, ResourceID: id} }

// CancelDelete abandons a pending delete.
func CancelDelete(id int64) Action { return Action{Kind: KindCancelDelete, ResourceID: id} }

// Help shows the help view.
func Help() Action { return Action{Kind: KindHelp} }

// BackToStart returns to the root menu.
func BackToStart() Action { return Action{Kind: KindBackToStart} }

// Token encodes the action as a button payload.
func (a Action) Token() string {
	switch a.Kind {
	case KindSemester:
		return fmt.Sprintf("%s_%d", prefixSemester, a.Semester)
	case KindCourse:
		return fmt.Sprintf("%s_%d_%d", prefixCourse, a.Semester, a.Course)
	case KindResources:
		return fmt.Sprintf("%s_%d_%d_%s", prefixResources, a.Semester, a.Course, a.ResourceType)
	case KindFile:
		return fmt.Sprintf("%s_%d", prefixFile, a.ResourceID)
	case KindUpload:
		return fmt.Sprintf("%s_%d_%d", prefixUpload, a.Semester, a.Course)
	case KindUploadType:
		return prefixUploadType + "_" + a.ResourceType
	case KindDelete:
		return fmt.Sprintf("%s_%d", prefixDelete, a.ResourceID)
	case KindConfirmDelete:
		return fmt.Sprintf("%s_%d", prefixConfirmDelete, a.ResourceID)
	case KindCancelDelete:
		return fmt.Sprintf("%s_%d", prefixCancelDelete, a.ResourceID)
	case KindHelp:
		return tokenHelp
	case KindBackToStart:
		return tokenBackToStart
	default:
		return ""
	}
}

// Parse decodes a button payload. Anything outside the grammar yields ErrMalformedToken.
func Parse(token string) (Action, error) {
	switch token {
	case tokenHelp:
		return Help(), nil
	case tokenBackToStart:
		return BackToStart(), nil
	}

	prefix, rest, ok := strings.Cut(token, "_")
	if !ok || rest == "" {
		return Action{}, ErrMalformedToken
	}

	switch prefix {
	case prefixSemester:
		s, err := parsePositive(rest)
		if err != nil {
			return Action{}, err
		}
		return Semester(s), nil
	case prefixCourse, prefixUpload:
		s, c, err := parseSemesterCourse(rest)
		if err != nil {
			return Action{}, err
		}
		if prefix == prefixCourse {
			return Course(s, c), nil
		}
		return Upload(s, c), nil
	case prefixResources:
		parts := strings.SplitN(rest, "_", 3)
		if len(parts) != 3 {
			return Action{}, ErrMalformedToken
		}
		s, c, err := parseSemesterCourse(parts[0] + "_" + parts[1])
		if err != nil {
			return Action{}, err
		}
		if !validTypeKey(parts[2]) {
			return Action{}, ErrMalformedToken
		}
		return Resources(s, c, parts[2]), nil
	case prefixUploadType:
		if !validTypeKey(rest) {
			return Action{}, ErrMalformedToken
		}
		return UploadType(rest), nil
	case prefixFile, prefixDelete, prefixConfirmDelete, prefixCancelDelete:
		id, err := parseID(rest)
		if err != nil {
			return Action{}, err
		}
		switch prefix {
		case prefixFile:
			return File(id), nil
		case prefixDelete:
			return Delete(id), nil
		case prefixConfirmDelete:
			return ConfirmDelete(id), nil
		default:
			return CancelDelete(id), nil
		}
	}
	return Action{}, ErrMalformedToken
}

func parseSemesterCourse(s string) (int, int, error) {
	semRaw, courseRaw, ok := strings.Cut(s, "_")
	if !ok {
		return 0, 0, ErrMalformedToken
	}
	sem, err := parsePositive(semRaw)
	if err != nil {
		return 0, 0, err
	}
	course, err := parseIndex(courseRaw)
	if err != nil {
		return 0, 0, err
	}
	return sem, course, nil
}

// canonical rejects encodings that would not round-trip, such as "+1" or "01".
func canonical(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s == "0" || s[0] != '0'
}

func parsePositive(s string) (int, error) {
	n, err := parseIndex(s)
	if err != nil || n == 0 {
		return 0, ErrMalformedToken
	}
	return n, nil
}

func parseIndex(s string) (int, error) {
	if !canonical(s) {
		return 0, ErrMalformedToken
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformedToken
	}
	return n, nil
}

func parseID(s string) (int64, error) {
	if !canonical(s) {
		return 0, ErrMalformedToken
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedToken
	}
	return id, nil
}

func validTypeKey(s string) bool {
	return s != "" && !strings.Contains(s, "_") && s == strings.ToLower(s)
}

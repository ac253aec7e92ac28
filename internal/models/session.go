package models

// Session holds the transient state of one user's admin workflow.
type Session struct {
	Semester        int
	CourseIndex     int
	Course          string
	ResourceType    string
	AwaitingFile    bool
	PendingDeleteID int64
}

// UploadTarget returns the stored upload coordinates and whether they are complete.
func (s Session) UploadTarget() (semester int, course, resourceType string, ok bool) {
	if s.Semester <= 0 || s.Course == "" || s.ResourceType == "" {
		return 0, "", "", false
	}
	return s.Semester, s.Course, s.ResourceType, true
}

// ClearUpload resets the fields that feed the upload workflow.
func (s *Session) ClearUpload() {
	s.Semester = 0
	s.CourseIndex = 0
	s.Course = ""
	s.ResourceType = ""
	s.AwaitingFile = false
}

// Empty reports whether no workflow is in progress.
func (s Session) Empty() bool {
	return s == Session{}
}

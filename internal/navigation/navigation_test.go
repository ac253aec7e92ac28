package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

func TestActionTokensRoundTrip(t *testing.T) {
	actions := []Action{
		Semester(3),
		Course(3, 0),
		Resources(3, 0, "books"),
		Resources(8, 4, "past questions"),
		File(42),
		Upload(1, 2),
		UploadType("notes"),
		Delete(7),
		ConfirmDelete(7),
		CancelDelete(7),
		Help(),
		BackToStart(),
	}
	for _, a := range actions {
		token := a.Token()
		got, err := Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, a, got, token)
		assert.Equal(t, token, got.Token())
	}
}

func TestParseKnownTokens(t *testing.T) {
	cases := map[string]Action{
		"sem_3":                  Semester(3),
		"course_3_0":             Course(3, 0),
		"res_3_0_books":          Resources(3, 0, "books"),
		"res_2_1_past questions": Resources(2, 1, "past questions"),
		"file_12":                File(12),
		"upload_3_0":             Upload(3, 0),
		"uploadtype_books":       UploadType("books"),
		"delete_5":               Delete(5),
		"confirmdelete_5":        ConfirmDelete(5),
		"canceldelete_5":         CancelDelete(5),
		"help":                   Help(),
		"back_to_start":          BackToStart(),
	}
	for token, want := range cases {
		got, err := Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	garbage := []string{
		"",
		"sem",
		"sem_",
		"sem_0",
		"sem_-1",
		"sem_x",
		"sem_03",
		"sem_+3",
		"course_3",
		"course_3_x",
		"course_3_-1",
		"res_3_0",
		"res_3_0_",
		"res_3_0_Books",
		"res_3_0_past_questions",
		"file_0",
		"file_abc",
		"file_99999999999999999999",
		"uploadtype_",
		"delete_",
		"help_me",
		"back",
		"unknown_1",
		"confirmdelete_1_2",
	}
	for _, token := range garbage {
		_, err := Parse(token)
		assert.ErrorIs(t, err, ErrMalformedToken, token)
	}
}

func TestRootView(t *testing.T) {
	view := Root(models.DefaultCatalog())

	require.Len(t, view.Keyboard, 2)
	assert.Len(t, view.Keyboard[0], 8)
	assert.Equal(t, "sem_1", view.Keyboard[0][0].Data)
	assert.Equal(t, "sem_8", view.Keyboard[0][7].Data)
	assert.Equal(t, []dto.Button{{Text: LabelHelp, Data: "help"}}, view.Keyboard[1])
	assert.Equal(t, RootText, view.Text)
}

func TestSemesterViewUnknownSemesterHasOnlyBack(t *testing.T) {
	view := SemesterView(models.DefaultCatalog(), 42)
	assert.Equal(t, []string{"back_to_start"}, view.Tokens())
}

func TestSemesterViewListsCourses(t *testing.T) {
	cat := models.DefaultCatalog()
	view := SemesterView(cat, 3)

	courses := cat.CoursesFor(3)
	require.Len(t, view.Keyboard, len(courses)+1)
	assert.Equal(t, courses[0], view.Keyboard[0][0].Text)
	assert.Equal(t, "course_3_0", view.Keyboard[0][0].Data)
	assert.Equal(t, "back_to_start", view.Keyboard[len(courses)][0].Data)
}

func TestCourseViewUploadOnlyForAdmins(t *testing.T) {
	cat := models.DefaultCatalog()

	user := CourseView(cat, 3, 0, false)
	assert.Equal(t, []string{"res_3_0_books", "res_3_0_past questions", "res_3_0_syllabus", "res_3_0_notes", "sem_3"}, user.Tokens())

	admin := CourseView(cat, 3, 0, true)
	assert.Contains(t, admin.Tokens(), "upload_3_0")
	assert.Equal(t, "sem_3", admin.Tokens()[len(admin.Tokens())-1])
}

func TestCourseViewOutOfRange(t *testing.T) {
	view := CourseView(models.DefaultCatalog(), 3, 99, true)
	assert.Equal(t, []string{"sem_3"}, view.Tokens())
}

func TestResourceListViewEmptyShowsOnlyBack(t *testing.T) {
	view := ResourceListView(models.DefaultCatalog(), 3, 0, "books", nil, false)
	assert.Equal(t, []string{"course_3_0"}, view.Tokens())
}

func TestResourceListViewAdminDeleteButtons(t *testing.T) {
	items := []models.ResourceSummary{{ID: 2, FileName: "b.pdf"}, {ID: 1, FileName: "a.pdf"}}

	user := ResourceListView(models.DefaultCatalog(), 1, 0, "notes", items, false)
	assert.Equal(t, []string{"file_2", "file_1", "course_1_0"}, user.Tokens())

	admin := ResourceListView(models.DefaultCatalog(), 1, 0, "notes", items, true)
	assert.Equal(t, []string{"file_2", "delete_2", "file_1", "delete_1", "course_1_0"}, admin.Tokens())
	assert.Contains(t, admin.Text, "Notes for UG1101 Introduction to Linguistics")
}

func TestUploadTypeSelectAndDeleteConfirm(t *testing.T) {
	cat := models.DefaultCatalog()
	view := UploadTypeSelect(cat, 2, 1)
	assert.Equal(t, []string{"uploadtype_books", "uploadtype_past questions", "uploadtype_syllabus", "uploadtype_notes", "course_2_1"}, view.Tokens())

	confirm := DeleteConfirm(&models.Resource{ID: 9, FileName: "x.pdf", Course: "UG1205 Morphology 1"})
	assert.Equal(t, []string{"confirmdelete_9", "canceldelete_9"}, confirm.Tokens())
}

func TestEveryViewLeadsBackToRoot(t *testing.T) {
	cat := models.DefaultCatalog()
	views := []dto.View{
		HelpView(true),
		SemesterView(cat, 1),
		AwaitingFile("UG1101 Introduction to Linguistics", "Books"),
		Notice("done"),
		DeleteCancelled(),
	}
	for _, v := range views {
		assert.Contains(t, v.Tokens(), "back_to_start", v.Text)
	}
	assert.Contains(t, HelpView(true).Text, "/upload")
	assert.NotContains(t, HelpView(false).Text, "/upload")
}

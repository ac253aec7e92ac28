package navigation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

// Button labels.
const (
	LabelBack        = "Back"
	LabelHelp        = "Help"
	LabelUpload      = "Upload"
	LabelDelete      = "Delete"
	LabelConfirm     = "Confirm delete"
	LabelCancel      = "Cancel"
	LabelBackToStart = "Back to start"
)

// Prompt texts.
const (
	RootText     = "Select a semester:"
	HelpText     = "Help:\nUse the buttons to browse/download resources.\nSelect a semester, then a course, then the type of resource you want."
	adminHelp    = "\n\nAdmins:\n/upload <semester> <course> <resource_type> (reply to a file)\n/delete <resource_id>\n/broadcast <text>\n/inventory [csv|pdf]\n/stats\nor use the Upload and Delete buttons in the menus."
	cancelledMsg = "Deletion cancelled."
)

func button(text string, a Action) dto.Button {
	return dto.Button{Text: text, Data: a.Token()}
}

func row(buttons ...dto.Button) []dto.Button {
	return buttons
}

// Root renders the semester picker.
func Root(cat *models.Catalog) dto.View {
	semesters := cat.Semesters()
	buttons := make([]dto.Button, 0, len(semesters))
	for _, s := range semesters {
		buttons = append(buttons, button(strconv.Itoa(s), Semester(s)))
	}
	return dto.View{
		Text:     RootText,
		Keyboard: dto.Keyboard{buttons, row(button(LabelHelp, Help()))},
	}
}

// HelpView renders usage help. Admins also see their commands.
func HelpView(admin bool) dto.View {
	text := HelpText
	if admin {
		text += adminHelp
	}
	return dto.View{Text: text, Keyboard: dto.Keyboard{row(button(LabelBack, BackToStart()))}}
}

// SemesterView lists the courses of a semester. Unknown semesters list nothing.
func SemesterView(cat *models.Catalog, semester int) dto.View {
	courses := cat.CoursesFor(semester)
	kb := make(dto.Keyboard, 0, len(courses)+1)
	for i, name := range courses {
		kb = append(kb, row(button(name, Course(semester, i))))
	}
	kb = append(kb, row(button(LabelBack, BackToStart())))
	return dto.View{Text: fmt.Sprintf("Semester %d Courses:", semester), Keyboard: kb}
}

// CourseView lists the resource types of a course. Admins also get an Upload button.
func CourseView(cat *models.Catalog, semester, course int, admin bool) dto.View {
	name, ok := cat.Course(semester, course)
	if !ok {
		return dto.View{
			Text:     fmt.Sprintf("Semester %d has no such course.", semester),
			Keyboard: dto.Keyboard{row(button(LabelBack, Semester(semester)))},
		}
	}
	types := cat.ResourceTypes()
	kb := make(dto.Keyboard, 0, len(types)+2)
	for _, t := range types {
		kb = append(kb, row(button(t, Resources(semester, course, models.ResourceTypeKey(t)))))
	}
	if admin {
		kb = append(kb, row(button(LabelUpload, Upload(semester, course))))
	}
	kb = append(kb, row(button(LabelBack, Semester(semester))))
	return dto.View{Text: fmt.Sprintf("Course: %s", name), Keyboard: kb}
}

// ResourceListView lists the files of one bucket. Admins get a delete button beside each file.
func ResourceListView(cat *models.Catalog, semester, course int, typeKey string, items []models.ResourceSummary, admin bool) dto.View {
	name, _ := cat.Course(semester, course)
	typeName, ok := cat.ResourceTypeByKey(typeKey)
	if !ok {
		typeName = typeKey
	}
	kb := make(dto.Keyboard, 0, len(items)+1)
	for _, item := range items {
		r := row(button(item.FileName, File(item.ID)))
		if admin {
			r = append(r, button(LabelDelete, Delete(item.ID)))
		}
		kb = append(kb, r)
	}
	kb = append(kb, row(button(LabelBack, Course(semester, course))))

	text := fmt.Sprintf("%s for %s:", typeName, name)
	if name == "" {
		text = fmt.Sprintf("%s:", typeName)
	}
	if len(items) == 0 {
		text += "\nNothing uploaded yet."
	}
	return dto.View{Text: text, Keyboard: kb}
}

// UploadTypeSelect asks an admin which type the upload belongs to.
func UploadTypeSelect(cat *models.Catalog, semester, course int) dto.View {
	name, _ := cat.Course(semester, course)
	types := cat.ResourceTypes()
	kb := make(dto.Keyboard, 0, len(types)+1)
	for _, t := range types {
		kb = append(kb, row(button(t, UploadType(models.ResourceTypeKey(t)))))
	}
	kb = append(kb, row(button(LabelBack, Course(semester, course))))
	return dto.View{Text: fmt.Sprintf("Upload to %s\nChoose the resource type:", name), Keyboard: kb}
}

// AwaitingFile prompts an admin to send the document.
func AwaitingFile(course, typeName string) dto.View {
	return dto.View{
		Text:     fmt.Sprintf("Send the %s file for %s as a document.", strings.ToLower(typeName), course),
		Keyboard: dto.Keyboard{row(button(LabelCancel, BackToStart()))},
	}
}

// DeleteConfirm asks an admin to confirm removing a resource.
func DeleteConfirm(res *models.Resource) dto.View {
	return dto.View{
		Text: fmt.Sprintf("Delete \"%s\" (ID %d) from %s?", res.FileName, res.ID, res.Course),
		Keyboard: dto.Keyboard{row(
			button(LabelConfirm, ConfirmDelete(res.ID)),
			button(LabelCancel, CancelDelete(res.ID)),
		)},
	}
}

// DeleteCancelled is shown after a delete is abandoned.
func DeleteCancelled() dto.View {
	return Notice(cancelledMsg)
}

// Notice is a neutral message with a way back to the root menu.
func Notice(text string) dto.View {
	return dto.View{Text: text, Keyboard: dto.Keyboard{row(button(LabelBackToStart, BackToStart()))}}
}

package models

import "ndara/internal/store"

// Collection names
const (
	CollUsers         = "users"
	CollRoles         = "roles"
	CollCourses       = "courses"
	CollSections      = "sections"
	CollLectures      = "lectures"
	CollQuizzes       = "quizzes"
	CollQuestions     = "questions"
	CollAssignments   = "assignments"
	CollSubmissions   = "submissions"
	CollResources     = "resources"
	CollEnrollments   = "enrollments"
	CollAuditLogs     = "auditLogs"
	CollSecurityLogs  = "securityLogs"
	CollNotifications = "notifications"
	CollActivities    = "activities"
	CollSettings      = "settings"
)

const GlobalSettingsID = "global"

func UserPath(id string) string { return store.Doc(CollUsers, id) }

func RolePath(id string) string { return store.Doc(CollRoles, id) }

func CoursePath(courseID string) string { return store.Doc(CollCourses, courseID) }

func SectionsOf(courseID string) string { return store.Doc(CollCourses, courseID, CollSections) }

func SectionPath(courseID, sectionID string) string {
	return store.Doc(SectionsOf(courseID), sectionID)
}

func LecturesOf(courseID, sectionID string) string {
	return store.Doc(SectionPath(courseID, sectionID), CollLectures)
}

func LecturePath(courseID, sectionID, lectureID string) string {
	return store.Doc(LecturesOf(courseID, sectionID), lectureID)
}

func QuizzesOf(courseID, sectionID string) string {
	return store.Doc(SectionPath(courseID, sectionID), CollQuizzes)
}

func QuizPath(courseID, sectionID, quizID string) string {
	return store.Doc(QuizzesOf(courseID, sectionID), quizID)
}

func QuestionsOf(courseID, sectionID, quizID string) string {
	return store.Doc(QuizPath(courseID, sectionID, quizID), CollQuestions)
}

func QuestionPath(courseID, sectionID, quizID, questionID string) string {
	return store.Doc(QuestionsOf(courseID, sectionID, quizID), questionID)
}

func AssignmentPath(courseID, sectionID, assignmentID string) string {
	return store.Doc(SectionPath(courseID, sectionID), CollAssignments, assignmentID)
}

func SubmissionPath(courseID, sectionID, assignmentID, studentID string) string {
	return store.Doc(AssignmentPath(courseID, sectionID, assignmentID), CollSubmissions, studentID)
}

func ResourcePath(courseID, resourceID string) string {
	return store.Doc(CoursePath(courseID), CollResources, resourceID)
}

// EnrollmentID is the composite key allowing one enrollment per student and course
func EnrollmentID(studentID, courseID string) string {
	return studentID + "_" + courseID
}

func EnrollmentPath(studentID, courseID string) string {
	return store.Doc(CollEnrollments, EnrollmentID(studentID, courseID))
}

func AuditLogPath(id string) string { return store.Doc(CollAuditLogs, id) }

func SecurityLogPath(id string) string { return store.Doc(CollSecurityLogs, id) }

func NotificationPath(id string) string { return store.Doc(CollNotifications, id) }

func ActivityPath(id string) string { return store.Doc(CollActivities, id) }

func SettingsPath() string { return store.Doc(CollSettings, GlobalSettingsID) }

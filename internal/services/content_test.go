package services

import (
	"errors"
	"testing"

	"ndara/internal/apperr"
	"ndara/internal/models"
	"ndara/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSections(t *testing.T, f *fixture, ids ...string) {
	t.Helper()
	f.course(t, "c1")
	for i, id := range ids {
		f.put(t, models.SectionPath("c1", id), map[string]any{"id": id, "title": "Section " + id, "order": i})
	}
}

func version(t *testing.T, f *fixture, path string) int64 {
	t.Helper()
	doc, err := f.st.Get(f.ctx, path)
	require.NoError(t, err)
	return int64(doc.Version)
}

func TestReorderSections(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "a", "b", "c")

	res := f.svc.ReorderSections(f.ctx, instructor, "c1", validator.ReorderInput{Items: []validator.OrderItem{
		{ID: "c", Order: 0}, {ID: "a", Order: 1}, {ID: "b", Order: 2},
	}})
	require.True(t, res.Success, "%v", res.Error)

	assert.Equal(t, 1, f.order(t, models.SectionPath("c1", "a")))
	assert.Equal(t, 2, f.order(t, models.SectionPath("c1", "b")))
	assert.Equal(t, 0, f.order(t, models.SectionPath("c1", "c")))

	entries := f.auditsOf(t, "section.reorder")
	require.Len(t, entries, 1)
	assert.Equal(t, "c1", entries[0].Target.ID)
	assert.Contains(t, entries[0].Details, "a:1, b:2, c:0")
}

func TestReorderSectionsTouchesOnlyRequested(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "a", "b", "c")
	untouched := version(t, f, models.SectionPath("c1", "c"))

	res := f.svc.ReorderSections(f.ctx, instructor, "c1", validator.ReorderInput{Items: []validator.OrderItem{
		{ID: "b", Order: 0}, {ID: "a", Order: 1},
	}})
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 0, f.order(t, models.SectionPath("c1", "b")))
	assert.Equal(t, 1, f.order(t, models.SectionPath("c1", "a")))
	assert.Equal(t, untouched, version(t, f, models.SectionPath("c1", "c")))
}

func TestReorderSectionsRejected(t *testing.T) {
	tests := []struct {
		name  string
		items []validator.OrderItem
	}{
		{"duplicate order", []validator.OrderItem{{ID: "a", Order: 1}}},
		{"gap", []validator.OrderItem{{ID: "a", Order: 0}, {ID: "b", Order: 1}, {ID: "c", Order: 5}}},
		{"unknown id", []validator.OrderItem{{ID: "z", Order: 0}}},
		{"repeated id", []validator.OrderItem{{ID: "a", Order: 1}, {ID: "a", Order: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			seedSections(t, f, "a", "b", "c")
			commits := f.mem.Commits()

			res := f.svc.ReorderSections(f.ctx, instructor, "c1", validator.ReorderInput{Items: tt.items})
			assert.Equal(t, apperr.KindValidation, res.Kind)
			assert.Contains(t, res.Error, "items")
			assert.Equal(t, commits, f.mem.Commits())
		})
	}
}

func TestCreateAndDeleteSectionKeepOrderDense(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "a", "b", "c")

	res := f.svc.CreateSection(f.ctx, instructor, "c1", validator.SectionInput{Title: "Conclusion"})
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 3, f.order(t, models.SectionPath("c1", res.ID)))

	f.put(t, models.LecturePath("c1", "a", "l1"), map[string]any{"order": 0, "assetKey": "courses/c1/a/l1.pdf"})
	res = f.svc.DeleteSection(f.ctx, instructor, "c1", "a")
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 2, res.Deleted)

	assert.False(t, exists(t, f, models.LecturePath("c1", "a", "l1")))
	assert.Equal(t, 0, f.order(t, models.SectionPath("c1", "b")))
	assert.Equal(t, 1, f.order(t, models.SectionPath("c1", "c")))
	assert.Equal(t, []string{"courses/c1/a/l1.pdf"}, f.blobs.deleted)
}

func TestLectureLifecycle(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")

	res := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{Title: "Le bilan", Type: models.LectureTypeVideo})
	assert.Equal(t, apperr.KindValidation, res.Kind, "video lectures need a url")
	assert.Contains(t, res.Error, "videoUrl")

	first := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{
		Title: "Le bilan", Type: models.LectureTypeVideo, VideoURL: "https://cdn.ndara.test/bilan.mp4",
	})
	require.True(t, first.Success, "%v", first.Error)
	second := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{
		Title: "Le compte de résultat", Type: models.LectureTypeText, TextContent: "Produits moins charges.",
	})
	require.True(t, second.Success, "%v", second.Error)
	assert.Equal(t, 1, f.order(t, models.LecturePath("c1", "s1", second.ID)))

	res = f.svc.SetLectureAsset(f.ctx, instructor, "c1", "s1", first.ID, "video/mp4", "k1", "https://cdn.ndara.test/k1")
	require.True(t, res.Success, "%v", res.Error)
	f.blobs.err = errors.New("bucket offline")
	res = f.svc.SetLectureAsset(f.ctx, instructor, "c1", "s1", first.ID, "video/mp4", "k2", "https://cdn.ndara.test/k2")
	require.True(t, res.Success, "a failed blob delete does not fail the action")
	require.Len(t, f.queue.blobs, 1)
	assert.Equal(t, "k1", f.queue.blobs[0].Key)

	lecture, _, err := getAs[models.Lecture](f.ctx, f.st, models.LecturePath("c1", "s1", first.ID), "leçon")
	require.NoError(t, err)
	assert.Equal(t, "k2", lecture.AssetKey)
	assert.Equal(t, "https://cdn.ndara.test/k2", lecture.VideoURL)

	f.blobs.err = nil
	res = f.svc.DeleteLecture(f.ctx, instructor, "c1", "s1", first.ID)
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, []string{"k2"}, f.blobs.deleted)
	assert.Equal(t, 0, f.order(t, models.LecturePath("c1", "s1", second.ID)))

	res = f.svc.DeleteLecture(f.ctx, rival, "c1", "s1", second.ID)
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind)
}

func TestLectureAssetMatchesType(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")
	video := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{
		Title: "Le bilan", Type: models.LectureTypeVideo, VideoURL: "https://cdn.ndara.test/bilan.mp4",
	})
	require.True(t, video.Success, "%v", video.Error)
	text := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{
		Title: "Le compte de résultat", Type: models.LectureTypeText, TextContent: "Produits moins charges.",
	})
	require.True(t, text.Success, "%v", text.Error)
	pdf := f.svc.CreateLecture(f.ctx, instructor, "c1", "s1", validator.LectureInput{
		Title: "Fiche", Type: models.LectureTypePDF, PDFURL: "https://cdn.ndara.test/fiche.pdf",
	})
	require.True(t, pdf.Success, "%v", pdf.Error)

	tests := []struct {
		name        string
		actor       Actor
		lectureID   string
		contentType string
		wantKind    apperr.Kind
		ok          bool
	}{
		{"video on video", instructor, video.ID, "video/mp4", 0, true},
		{"pdf on pdf", instructor, pdf.ID, "application/pdf", 0, true},
		{"anything on text", instructor, text.ID, "video/mp4", apperr.KindValidation, false},
		{"pdf on video", instructor, video.ID, "application/pdf", apperr.KindValidation, false},
		{"video on pdf", instructor, pdf.ID, "video/webm", apperr.KindValidation, false},
		{"other instructor", rival, video.ID, "video/mp4", apperr.KindPermissionDenied, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := f.svc.CheckLectureAsset(f.ctx, tt.actor, "c1", "s1", tt.lectureID, tt.contentType)
			assert.Equal(t, tt.ok, check.Success, "%v", check.Error)
			res := f.svc.SetLectureAsset(f.ctx, tt.actor, "c1", "s1", tt.lectureID, tt.contentType, "k-"+tt.name, "https://cdn.ndara.test/x")
			assert.Equal(t, tt.ok, res.Success, "%v", res.Error)
			if !tt.ok {
				assert.Equal(t, tt.wantKind, check.Kind)
				assert.Equal(t, tt.wantKind, res.Kind)
			}
		})
	}

	lecture, _, err := getAs[models.Lecture](f.ctx, f.st, models.LecturePath("c1", "s1", text.ID), "leçon")
	require.NoError(t, err)
	assert.Empty(t, lecture.VideoURL)
	assert.Empty(t, lecture.PDFURL)
	assert.Empty(t, lecture.AssetKey)
	assert.Equal(t, "Produits moins charges.", lecture.TextContent)
}

func TestDeleteQuizRemovesQuestions(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")
	created := f.svc.CreateQuiz(f.ctx, instructor, "c1", "s1", validator.QuizInput{Title: "Q1"})
	require.True(t, created.Success, "%v", created.Error)
	quizID := created.ID

	for _, text := range []string{"Qu'est-ce qu'un actif ?", "Qu'est-ce qu'un passif ?", "Que contient le bilan ?"} {
		res := f.svc.AddQuestion(f.ctx, instructor, "c1", "s1", quizID, validator.QuestionInput{
			Text: text,
			Options: []validator.OptionInput{
				{Text: "Une ressource", IsCorrect: true},
				{Text: "Une dette"},
			},
		})
		require.True(t, res.Success, "%v", res.Error)
	}
	require.Len(t, f.mem.Paths(models.QuestionsOf("c1", "s1", quizID)), 3)

	res := f.svc.DeleteQuiz(f.ctx, instructor, "c1", "s1", quizID)
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 4, res.Deleted)
	assert.Empty(t, f.mem.Paths(models.QuestionsOf("c1", "s1", quizID)))
	assert.False(t, exists(t, f, models.QuizPath("c1", "s1", quizID)))
	assert.Len(t, f.auditsOf(t, "quiz.delete"), 1)
}

func TestAddQuestionNeedsCorrectOption(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")
	f.put(t, models.QuizPath("c1", "s1", "q1"), map[string]any{"title": "Q1"})

	res := f.svc.AddQuestion(f.ctx, instructor, "c1", "s1", "q1", validator.QuestionInput{
		Text:    "Que contient le bilan ?",
		Options: []validator.OptionInput{{Text: "Rien"}, {Text: "Tout"}},
	})
	assert.Equal(t, apperr.KindValidation, res.Kind)
	assert.Contains(t, res.Error, "options")
}

func TestDeleteQuestionCompacts(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")
	f.put(t, models.QuizPath("c1", "s1", "q1"), map[string]any{"title": "Q1"})
	for i, id := range []string{"x", "y", "z"} {
		f.put(t, models.QuestionPath("c1", "s1", "q1", id), map[string]any{"order": i})
	}

	res := f.svc.DeleteQuestion(f.ctx, instructor, "c1", "s1", "q1", "x")
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 0, f.order(t, models.QuestionPath("c1", "s1", "q1", "y")))
	assert.Equal(t, 1, f.order(t, models.QuestionPath("c1", "s1", "q1", "z")))

	res = f.svc.ReorderQuestions(f.ctx, instructor, "c1", "s1", "q1", validator.ReorderInput{Items: []validator.OrderItem{
		{ID: "z", Order: 0}, {ID: "y", Order: 1},
	}})
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 0, f.order(t, models.QuestionPath("c1", "s1", "q1", "z")))
}

func TestResources(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")

	res := f.svc.CreateResource(f.ctx, instructor, "c1", validator.ResourceInput{
		Title: "Plan comptable", Type: models.ResourceTypeLink, URL: "https://ohada.test/plan",
	})
	require.True(t, res.Success, "%v", res.Error)
	assert.True(t, exists(t, f, models.ResourcePath("c1", res.ID)))

	bad := f.svc.CreateResource(f.ctx, instructor, "c1", validator.ResourceInput{Title: "Plan", Type: "podcast", URL: "nope"})
	assert.Equal(t, apperr.KindValidation, bad.Kind)
	assert.Contains(t, bad.Error, "type")
	assert.Contains(t, bad.Error, "url")

	del := f.svc.DeleteResource(f.ctx, instructor, "c1", res.ID)
	require.True(t, del.Success, "%v", del.Error)
	assert.False(t, exists(t, f, models.ResourcePath("c1", res.ID)))
}

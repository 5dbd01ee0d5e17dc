package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"ndara/internal/apperr"
	"ndara/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivator struct {
	got []services.PaymentEvent
	res services.Activation
	err error
}

func (f *fakeActivator) Activate(_ context.Context, ev services.PaymentEvent) (services.Activation, error) {
	f.got = append(f.got, ev)
	return f.res, f.err
}

func newRequest(e *echo.Echo, method, path string, body []byte) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestMonerooMapsPayload(t *testing.T) {
	act := &fakeActivator{res: services.Activation{Activated: true}}
	h := NewWebhookHandler(act, nil, "")
	body := []byte(`{"event":"payment.success","data":{"id":"tx9","status":"success","amount":25000,"currency_code":"XOF",
		"metadata":{"userId":"u7","courseId":"c3"},"customer":{"email":"awa@ndara.test","first_name":"Awa","last_name":"Diop"}}}`)

	c, rec := newRequest(echo.New(), http.MethodPost, "/webhooks/moneroo", body)
	require.NoError(t, h.Moneroo(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"received": true, "activated": true}, decode(t, rec))

	require.Len(t, act.got, 1)
	assert.Equal(t, services.PaymentEvent{
		TransactionID: "tx9",
		Status:        "success",
		UserID:        "u7",
		CourseID:      "c3",
		Amount:        25000,
		Currency:      "XOF",
		CustomerEmail: "awa@ndara.test",
		CustomerName:  "Awa Diop",
	}, act.got[0])
}

func TestMonerooErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantKeys []string
	}{
		{"bad json", `{"data":`, nil, http.StatusBadRequest, []string{"error"}},
		{"validation", `{"data":{"id":"tx1","status":"success"}}`,
			apperr.Validation(map[string]string{"metadata.userId": "requis", "metadata.courseId": "requis"}),
			http.StatusBadRequest, []string{"error"}},
		{"store failure", `{"data":{"id":"tx1","status":"success"}}`,
			apperr.WriteFailed(errors.New("connection reset")),
			http.StatusInternalServerError, []string{"error", "details"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&fakeActivator{err: tt.err}, nil, "")
			c, rec := newRequest(echo.New(), http.MethodPost, "/webhooks/moneroo", []byte(tt.body))
			require.NoError(t, h.Moneroo(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			out := decode(t, rec)
			for _, k := range tt.wantKeys {
				assert.NotEmpty(t, out[k], k)
			}
		})
	}
}

func TestDescribeFieldsIsStable(t *testing.T) {
	got := describeFields(map[string]string{"metadata.userId": "requis", "id": "requis"})
	assert.Equal(t, "id : requis; metadata.userId : requis", got)
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadFile(_ context.Context, _ []byte, key string, _ string) (string, error) {
	f.uploaded = append(f.uploaded, key)
	return "https://cdn.ndara.test/" + key, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type signingStorage struct {
	fakeStorage
}

func (s *signingStorage) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.ndara.test/" + key + "?sig=abc", nil
}

type fakeLectures struct {
	check       *services.Result
	res         services.Result
	key         string
	contentType string
}

func (f *fakeLectures) CheckLectureAsset(_ context.Context, _ services.Actor, _, _, lectureID, _ string) services.Result {
	if f.check != nil {
		return *f.check
	}
	return services.Result{Success: true, ID: lectureID}
}

func (f *fakeLectures) SetLectureAsset(_ context.Context, _ services.Actor, _, _, _, contentType, key, _ string) services.Result {
	f.key = key
	f.contentType = contentType
	return f.res
}

func uploadRequest(t *testing.T, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="bilan.mp4"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/c1/sections/s1/lectures/l1/asset", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("courseId", "sectionId", "lectureId")
	c.SetParamValues("c1", "s1", "l1")
	return c, rec
}

func TestUploadLectureAsset(t *testing.T) {
	storage := &fakeStorage{}
	lectures := &fakeLectures{res: services.Result{Success: true, ID: "l1"}}
	h := NewUploadHandler(storage, lectures)

	c, rec := uploadRequest(t, "video/mp4")
	require.NoError(t, h.UploadLectureAsset(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, storage.uploaded, 1)
	assert.True(t, strings.HasPrefix(storage.uploaded[0], "courses/c1/lectures/l1/"))
	assert.True(t, strings.HasSuffix(storage.uploaded[0], ".mp4"))
	assert.Equal(t, storage.uploaded[0], lectures.key)
	assert.Equal(t, "video/mp4", lectures.contentType)
	assert.Empty(t, storage.deleted)
	assert.NotContains(t, decode(t, rec), "previewUrl")
}

func TestUploadLectureAssetSignsPreview(t *testing.T) {
	storage := &signingStorage{}
	h := NewUploadHandler(storage, &fakeLectures{res: services.Result{Success: true, ID: "l1"}})

	c, rec := uploadRequest(t, "application/pdf")
	require.NoError(t, h.UploadLectureAsset(c))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Len(t, storage.uploaded, 1)
	assert.Equal(t, storage.uploaded[0], out["key"])
	assert.Equal(t, "https://cdn.ndara.test/"+storage.uploaded[0]+"?sig=abc", out["previewUrl"])
}

func TestUploadLectureAssetRefused(t *testing.T) {
	storage := &fakeStorage{}
	lectures := &fakeLectures{res: services.Result{Error: "Action non autorisée : seul le formateur du cours peut le modifier", Kind: apperr.KindPermissionDenied}}
	h := NewUploadHandler(storage, lectures)

	c, rec := uploadRequest(t, "video/mp4")
	require.NoError(t, h.UploadLectureAsset(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, storage.uploaded, storage.deleted, "refused uploads are discarded")
}

func TestUploadLectureAssetCheckedBeforeStorage(t *testing.T) {
	tests := []struct {
		name     string
		check    services.Result
		wantCode int
	}{
		{"not the author", services.Result{Error: "Action non autorisée : seul le formateur du cours peut le modifier", Kind: apperr.KindPermissionDenied}, http.StatusForbidden},
		{"wrong lecture type", services.Result{Error: map[string]string{"type": "une leçon texte n'accepte pas de fichier"}, Kind: apperr.KindValidation}, http.StatusBadRequest},
		{"missing lecture", services.Result{Error: "leçon introuvable", Kind: apperr.KindNotFound}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeStorage{}
			lectures := &fakeLectures{check: &tt.check, res: services.Result{Success: true}}
			h := NewUploadHandler(storage, lectures)

			c, rec := uploadRequest(t, "video/mp4")
			require.NoError(t, h.UploadLectureAsset(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, storage.uploaded, "refused uploads never reach the bucket")
			assert.Empty(t, lectures.key)
		})
	}
}

func TestUploadLectureAssetRejectsInput(t *testing.T) {
	h := NewUploadHandler(&fakeStorage{}, &fakeLectures{})
	c, rec := uploadRequest(t, "image/png")
	require.NoError(t, h.UploadLectureAsset(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRequest(echo.New(), http.MethodPost, "/asset", []byte(`{}`))
	require.NoError(t, h.UploadLectureAsset(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = uploadRequest(t, "video/mp4")
	require.NoError(t, NewUploadHandler(nil, &fakeLectures{}).UploadLectureAsset(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

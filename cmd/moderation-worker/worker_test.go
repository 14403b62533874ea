package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type fakeModerator struct {
	url   string
	err   error
	calls []string
}

func (f *fakeModerator) ModerateAndPromote(ctx context.Context, path, email string) (string, error) {
	f.calls = append(f.calls, path+"|"+email)
	return f.url, f.err
}

func newTestWorker(t *testing.T, mod *fakeModerator, md map[string]string, mdErr error) (*worker, *services.BiodataService, int) {
	t.Helper()
	biodatas := services.NewBiodataService()
	name, img := "Rina", "pending/u1/photo.jpg"
	age := 25
	typ, dob, occ := "Female", "1999-01-01", "Teacher"
	b, err := biodatas.Create(context.Background(), "rina@example.com", &models.BiodataInput{
		BiodataType: &typ, Name: &name, DateOfBirth: &dob, Age: &age, Occupation: &occ, ProfileImage: &img,
	})
	require.NoError(t, err)

	return &worker{
		biodatas:  biodatas,
		moderator: func(string) services.ImageModerator { return mod },
		metadata: func(ctx context.Context, bucket, name string) (map[string]string, error) {
			return md, mdErr
		},
	}, biodatas, b.BiodataID
}

func post(wk *worker, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	wk.handleFinalize(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))
	return rec
}

func TestWorkerApprovesPendingProfilePhoto(t *testing.T) {
	mod := &fakeModerator{url: "https://cdn.example/u1/photo.jpg"}
	wk, biodatas, id := newTestWorker(t, mod, nil, nil)

	rec := post(wk, `{"data":{"bucket":"b","name":"pending/u1/photo.jpg","metadata":{"email":"Rina@example.com","type":"profile_photo"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pending/u1/photo.jpg|rina@example.com"}, mod.calls)

	b, err := biodatas.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/u1/photo.jpg", b.ProfileImage)
}

func TestWorkerClearsRejectedImage(t *testing.T) {
	mod := &fakeModerator{err: services.ErrImageRejected}
	wk, biodatas, id := newTestWorker(t, mod, map[string]string{"email": "rina@example.com"}, nil)

	rec := post(wk, `{"bucket":"b","name":"pending/u1/photo.jpg"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := biodatas.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, b.ProfileImage)
}

func TestWorkerSkipsAndRetries(t *testing.T) {
	t.Run("non pending object", func(t *testing.T) {
		mod := &fakeModerator{}
		wk, _, _ := newTestWorker(t, mod, nil, nil)
		assert.Equal(t, http.StatusOK, post(wk, `{"bucket":"b","name":"u1/photo.jpg"}`).Code)
		assert.Empty(t, mod.calls)
	})

	t.Run("object already gone", func(t *testing.T) {
		mod := &fakeModerator{}
		wk, _, _ := newTestWorker(t, mod, nil, storage.ErrObjectNotExist)
		assert.Equal(t, http.StatusOK, post(wk, `{"bucket":"b","name":"pending/u1/photo.jpg"}`).Code)
		assert.Empty(t, mod.calls)
	})

	t.Run("other upload type", func(t *testing.T) {
		mod := &fakeModerator{}
		wk, _, _ := newTestWorker(t, mod, nil, nil)
		rec := post(wk, `{"bucket":"b","name":"pending/x.jpg","metadata":{"type":"story_photo"}}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, mod.calls)
	})

	t.Run("detector failure is redelivered", func(t *testing.T) {
		mod := &fakeModerator{err: errors.New("vision down")}
		wk, _, _ := newTestWorker(t, mod, map[string]string{"email": "rina@example.com"}, nil)
		assert.Equal(t, http.StatusInternalServerError, post(wk, `{"bucket":"b","name":"pending/u1/photo.jpg"}`).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		wk, _, _ := newTestWorker(t, &fakeModerator{}, nil, nil)
		assert.Equal(t, http.StatusBadRequest, post(wk, `not json`).Code)
	})
}

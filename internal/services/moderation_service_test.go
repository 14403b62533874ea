package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengalmatrimony/backend/internal/models"
)

type fakeDetector struct {
	result *SafeSearchResult
	err    error
	uris   []string
}

func (d *fakeDetector) DetectSafeSearch(ctx context.Context, gcsURI string) (*SafeSearchResult, error) {
	d.uris = append(d.uris, gcsURI)
	return d.result, d.err
}

type fakeObjects struct {
	promoted [][3]string
	deleted  []string
}

func (o *fakeObjects) Promote(ctx context.Context, from, to, token string) error {
	o.promoted = append(o.promoted, [3]string{from, to, token})
	return nil
}

func (o *fakeObjects) Delete(ctx context.Context, name string) error {
	o.deleted = append(o.deleted, name)
	return nil
}

func TestModerationPassesThroughApprovedPaths(t *testing.T) {
	det := &fakeDetector{}
	m := NewModerationService(det, &fakeObjects{}, "bkt", nil)

	got, err := m.ModerateAndPromote(context.Background(), "https://cdn.example/a.jpg", "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.jpg", got)
	assert.Empty(t, det.uris)
}

func TestModerationPromotesSafeImage(t *testing.T) {
	det := &fakeDetector{result: &SafeSearchResult{Adult: "VERY_UNLIKELY", Violence: "UNLIKELY", Racy: "POSSIBLE"}}
	objs := &fakeObjects{}
	m := NewModerationService(det, objs, "bkt", nil)

	got, err := m.ModerateAndPromote(context.Background(), "pending/a.jpg", "u@example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"gs://bkt/pending/a.jpg"}, det.uris)
	require.Len(t, objs.promoted, 1)
	assert.Equal(t, "pending/a.jpg", objs.promoted[0][0])
	assert.Equal(t, "a.jpg", objs.promoted[0][1])
	assert.True(t, strings.HasPrefix(got, "https://firebasestorage.googleapis.com/v0/b/bkt/o/a.jpg?alt=media&token="))
	assert.True(t, strings.HasSuffix(got, objs.promoted[0][2]))
}

func TestModerationRejectsUnsafeImage(t *testing.T) {
	ctx := context.Background()
	users := NewUserService()
	_, err := users.Create(ctx, &models.User{Email: "u@example.com"})
	require.NoError(t, err)

	det := &fakeDetector{result: &SafeSearchResult{Adult: "LIKELY"}}
	objs := &fakeObjects{}
	m := NewModerationService(det, objs, "bkt", users)

	_, err = m.ModerateAndPromote(ctx, "pending/bad.jpg", "u@example.com")
	assert.ErrorIs(t, err, ErrImageRejected)
	assert.Equal(t, []string{"pending/bad.jpg"}, objs.deleted)
	assert.Empty(t, objs.promoted)

	u, err := users.GetByEmail(ctx, "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ImageStrikes)
}

func TestModerationDetectorFailure(t *testing.T) {
	det := &fakeDetector{err: errors.New("quota exceeded")}
	objs := &fakeObjects{}
	m := NewModerationService(det, objs, "bkt", nil)

	_, err := m.ModerateAndPromote(context.Background(), "pending/a.jpg", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrImageRejected)
	assert.Empty(t, objs.promoted)
	assert.Empty(t, objs.deleted)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/notify"
)

func TestSystemStatus(t *testing.T) {
	svc := NewSystemService("production", fakeStore{}, &fakeNotifier{enabled: true}, discardLogger())

	assert.Equal(t, Status{
		Status:       "ok",
		Environment:  "production",
		StorageType:  "in-memory",
		EmailEnabled: true,
	}, svc.Status())
}

func TestSystemHealth(t *testing.T) {
	ok := NewSystemService("dev", fakeStore{}, notify.Disabled{}, discardLogger())
	assert.NoError(t, ok.Health(context.Background()))

	down := NewSystemService("dev", fakeStore{pingErr: errDB}, notify.Disabled{}, discardLogger())
	assert.ErrorIs(t, down.Health(context.Background()), errDB)
}

func TestSystemCategories(t *testing.T) {
	svc := NewSystemService("dev", fakeStore{}, notify.Disabled{}, discardLogger())

	cats := svc.Categories()
	assert.Len(t, cats, len(model.Categories))
	assert.Equal(t, CategoryInfo{Value: model.CategoryHTMLCSS, DisplayName: "HTML & CSS"}, cats[0])
}

func TestSendTestEmail(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc := NewSystemService("dev", fakeStore{}, notify.Disabled{}, discardLogger())
		assert.ErrorIs(t, svc.SendTestEmail(context.Background()), apperror.ErrValidation)
	})

	t.Run("smtp failure", func(t *testing.T) {
		n := &fakeNotifier{enabled: true, err: errors.New("535 auth failed")}
		svc := NewSystemService("dev", fakeStore{}, n, discardLogger())

		err := svc.SendTestEmail(context.Background())
		assert.ErrorContains(t, err, "535 auth failed")
		assert.NotErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("sent", func(t *testing.T) {
		n := &fakeNotifier{enabled: true}
		svc := NewSystemService("dev", fakeStore{}, n, discardLogger())

		assert.NoError(t, svc.SendTestEmail(context.Background()))
		assert.Equal(t, 1, n.tests)
	})
}

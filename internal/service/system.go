package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/notify"
)

// Store is what the system service needs to know about storage.
type Store interface {
	StorageType() string
	Ping(ctx context.Context) error
}

// Status is the payload of GET /api/status.
type Status struct {
	Status       string `json:"status"`
	Environment  string `json:"environment"`
	StorageType  string `json:"storageType"`
	EmailEnabled bool   `json:"emailEnabled"`
}

// CategoryInfo describes one known category for clients building a picker.
type CategoryInfo struct {
	Value       model.Category `json:"value"`
	DisplayName string         `json:"displayName"`
}

// SystemService answers operational questions: status, health, email check.
type SystemService struct {
	env      string
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewSystemService(env string, store Store, notifier notify.Notifier, logger *slog.Logger) *SystemService {
	return &SystemService{env: env, store: store, notifier: notifier, logger: logger}
}

func (s *SystemService) Status() Status {
	return Status{
		Status:       "ok",
		Environment:  s.env,
		StorageType:  s.store.StorageType(),
		EmailEnabled: s.notifier.Enabled(),
	}
}

// Health fails when the database is unreachable.
func (s *SystemService) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("health: database: %w", err)
	}
	return nil
}

func (s *SystemService) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, CategoryInfo{Value: c, DisplayName: c.DisplayName()})
	}
	return out
}

// SendTestEmail sends a test message synchronously so the caller sees
// SMTP errors directly.
func (s *SystemService) SendTestEmail(ctx context.Context) error {
	if err := s.notifier.SendTest(ctx); err != nil {
		if errors.Is(err, notify.ErrDisabled) {
			return apperror.ValidationFailed("email", "email notifications are not configured")
		}
		s.logger.Error("test email failed", slog.String("error", err.Error()))
		return fmt.Errorf("sending test email: %w", err)
	}
	s.logger.Info("test email sent")
	return nil
}

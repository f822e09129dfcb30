// Package export renders one account's complete data as a single JSON
// document: profile, generation history, activity history and login history,
// with every datetime as an RFC 3339 string.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
)

// Exporter assembles user data exports from the audit repositories
type Exporter struct {
	loginLogs    database.LoginLogRepositoryInterface
	activityLogs database.ActivityLogRepositoryInterface
	texts        database.GeneratedTextRepositoryInterface
}

// NewExporter creates a user data exporter
func NewExporter(
	loginLogs database.LoginLogRepositoryInterface,
	activityLogs database.ActivityLogRepositoryInterface,
	texts database.GeneratedTextRepositoryInterface,
) *Exporter {
	return &Exporter{
		loginLogs:    loginLogs,
		activityLogs: activityLogs,
		texts:        texts,
	}
}

// Build assembles the export document for one account. A limit of 0 includes
// the full history of every record type; a positive limit bounds each history
// to its most recent entries (the CLI uses this for stdout exports).
func (e *Exporter) Build(ctx context.Context, user *models.User, limit int) (*models.UserExport, error) {
	texts, err := e.texts.ListByUser(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated texts: %w", err)
	}

	activities, err := e.activityLogs.ListByUser(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity history: %w", err)
	}

	logins, err := e.loginLogs.ListByUser(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load login history: %w", err)
	}

	doc := &models.UserExport{
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Profile: models.ExportProfile{
			ID:        user.ID.String(),
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		},
		Texts:      make([]models.ExportedText, 0, len(texts)),
		Activities: make([]models.ExportedActivity, 0, len(activities)),
		Logins:     make([]models.ExportedLogin, 0, len(logins)),
	}

	for _, t := range texts {
		doc.Texts = append(doc.Texts, models.ExportedText{
			InputText:  t.InputText,
			OutputText: t.OutputText,
			IPAddress:  t.IPAddress,
			CreatedAt:  t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	for _, a := range activities {
		doc.Activities = append(doc.Activities, models.ExportedActivity{
			Action:      a.Action.String(),
			Description: a.Description,
			IPAddress:   a.IPAddress,
			UserAgent:   a.UserAgent,
			Timestamp:   a.Timestamp.UTC().Format(time.RFC3339),
			Data:        a.Data,
		})
	}

	for _, l := range logins {
		exported := models.ExportedLogin{
			LoginTime:  l.LoginTime.UTC().Format(time.RFC3339),
			IPAddress:  l.IPAddress,
			UserAgent:  l.UserAgent,
			SessionKey: l.SessionKey,
			Successful: l.Successful,
		}
		if l.LogoutTime != nil {
			logout := l.LogoutTime.UTC().Format(time.RFC3339)
			exported.LogoutTime = &logout
		}
		doc.Logins = append(doc.Logins, exported)
	}

	return doc, nil
}

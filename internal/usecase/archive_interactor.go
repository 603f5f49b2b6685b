package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type eventArchiver struct {
	files  FileStorage
	logger *slog.Logger
}

// NewEventArchiver создает архиватор событий. Если files == nil,
// события только логируются.
func NewEventArchiver(files FileStorage, logger *slog.Logger) EventArchiver {
	return &eventArchiver{files: files, logger: logger}
}

// ArchiveKey возвращает ключ объекта для события: library-events/YYYY/MM/DD/<id>.json
func ArchiveKey(event payloads.LibraryEvent) string {
	return fmt.Sprintf("library-events/%s/%s.json", event.OccurredAt.UTC().Format("2006/01/02"), event.ID)
}

func (a *eventArchiver) ArchiveEvent(ctx context.Context, event payloads.LibraryEvent) error {
	if event.ID == "" || event.Type == "" {
		// повторная доставка не исправит такое сообщение
		a.logger.Warn("dropping malformed library event", "event", event)
		return nil
	}

	a.logger.Info("library event received",
		"id", event.ID,
		"type", event.Type,
		"user_id", event.UserID,
		"book_id", event.BookID,
	)

	if a.files == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("usecase: сериализация события %s: %w", event.ID, err)
	}

	key := ArchiveKey(event)
	location, err := a.files.UploadFile(ctx, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("usecase: загрузка события %s в хранилище: %w", event.ID, err)
	}

	a.logger.Info("library event archived", "id", event.ID, "location", location)
	return nil
}

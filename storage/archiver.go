package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// SeasonArchiver writes closed season reports to a bucket.
type SeasonArchiver struct {
	uploader FileUploader
	prefix   string
}

func NewSeasonArchiver(uploader FileUploader) *SeasonArchiver {
	return &SeasonArchiver{uploader: uploader, prefix: "seasons"}
}

func SeasonKey(prefix string, season int) string {
	return fmt.Sprintf("%s/%d.json", prefix, season)
}

// ArchiveSeason uploads report as seasons/<season>.json and returns its key.
func (a *SeasonArchiver) ArchiveSeason(ctx context.Context, season int, report any) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode season %d report: %w", season, err)
	}
	key := SeasonKey(a.prefix, season)
	res, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to archive season %d: %w", season, err)
	}
	return res.Key, nil
}

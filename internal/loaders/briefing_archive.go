package loaders

import (
	"context"
	"fmt"

	"github.com/gobapps/gob-api/internal/types"
)

func (c *PostgresClient) InsertBriefingArchive(ctx context.Context, archive types.BriefingArchive) error {
	recipients := archive.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO briefing_archive (id, type, json, html, recipients, sent_at)
		VALUES ($1::uuid, $2, $3::jsonb, $4, $5, $6)`,
		archive.ID, archive.Type, string(archive.JSON), archive.HTML, recipients, archive.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert briefing_archive: %w", err)
	}
	return nil
}

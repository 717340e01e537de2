package submission

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"welfare-committee-backend/src/repositories"
)

// CopyAll copies every submission from src into dst as new records. Ids
// are reassigned by dst; submissionDate, photoPath and children carry over.
// It stops at the first failed write and reports how many were copied.
func CopyAll(ctx context.Context, src, dst repositories.SubmissionStore, log *zap.Logger) (int, error) {
	subs, err := src.ListAll(ctx, repositories.ListOptions{Sort: repositories.SortOldest, WithChildren: true})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", src.Name(), err)
	}

	copied := 0
	for i := range subs {
		sub := subs[i]
		oldID := sub.ID
		sub.ID = ""
		sub.SetChildren(sub.Children)
		newID, err := dst.CreateOrUpdate(ctx, &sub)
		if err != nil {
			return copied, fmt.Errorf("copy submission %s: %w", oldID, err)
		}
		copied++
		log.Debug("Copied submission", zap.String("from", oldID), zap.String("to", newID))
	}
	return copied, nil
}

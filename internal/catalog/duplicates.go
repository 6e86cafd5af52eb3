package catalog

import (
	"context"
	"fmt"

	"casefile/internal/model"
)

// groupDuplicates links freshly inserted files that share a fingerprint
// with existing local entries of the same case. The group id is the
// fingerprint itself. When a group is first materialized, the existing
// entries join it with the earliest-created one as primary; later members
// are always appended as non-primary. Primaries are never re-elected.
func (s *Service) groupDuplicates(ctx context.Context, caseID string, inserted []*model.FileRecord) error {
	now := s.clock.Now()

	for _, rec := range inserted {
		if rec.Fingerprint == "" {
			continue
		}

		peers, err := s.store.FindLocalFilesByFingerprint(ctx, caseID, rec.Fingerprint, rec.ID)
		if err != nil {
			return fmt.Errorf("searching duplicates: %w", err)
		}
		if len(peers) == 0 {
			continue
		}

		groupID := rec.Fingerprint

		count, err := s.store.GroupMemberCount(ctx, groupID)
		if err != nil {
			return fmt.Errorf("checking group %s: %w", groupID, err)
		}

		var members []*model.GroupMember
		if count == 0 {
			// First materialization: existing entries join with the
			// earliest-created as primary (peers arrive in that order).
			for i, peer := range peers {
				members = append(members, &model.GroupMember{
					GroupID:   groupID,
					FileID:    peer.ID,
					IsPrimary: i == 0,
					CreatedAt: now,
				})
			}
		}
		members = append(members, &model.GroupMember{
			GroupID:   groupID,
			FileID:    rec.ID,
			IsPrimary: false,
			CreatedAt: now,
		})

		if err := s.store.AddGroupMembers(ctx, members); err != nil {
			return fmt.Errorf("adding group members: %w", err)
		}

		s.logger.Debug("duplicate grouped", "group_id", groupID, "file_id", rec.ID, "peers", len(peers))
	}

	return nil
}

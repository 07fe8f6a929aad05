package leave

import (
	"context"
	"time"
)

// OverlapChecker finds an author's requests that intersect a date range.
// Two ranges overlap iff existing.start <= new.end && existing.end >= new.start.
type OverlapChecker struct{}

// FindOverlapping returns the author's requests in one of statuses that
// overlap [start, end].
func (OverlapChecker) FindOverlapping(ctx context.Context, s RequestStore, authorID int64, start, end time.Time, statuses ...Status) ([]Request, error) {
	return s.FindRequests(ctx, RequestFilter{
		AuthorIDs: []int64{authorID},
		Statuses:  statuses,
		From:      Day(start),
		To:        Day(end),
	})
}

// Check fails with ErrOverlapPending or ErrOverlapApproved, in that order,
// when [start, end] collides with another live request of the author.
// excludeID skips the request being edited (0 for none).
func (c OverlapChecker) Check(ctx context.Context, s RequestStore, authorID int64, start, end time.Time, excludeID int64) error {
	for _, st := range []Status{StatusPending, StatusApproved} {
		found, err := s.FindRequests(ctx, RequestFilter{
			AuthorIDs: []int64{authorID},
			Statuses:  []Status{st},
			From:      Day(start),
			To:        Day(end),
			ExcludeID: excludeID,
		})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			continue
		}
		if st == StatusPending {
			return errOverlapPending()
		}
		return errOverlapApproved()
	}
	return nil
}

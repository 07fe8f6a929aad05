/*
lifecycle.go - Request lifecycle engine

PURPOSE:
  Creates, updates and deletes vacation requests while keeping the author's
  holiday balance consistent. Every operation is one store transaction:
  validation reads, the request write and the balance mutation commit or
  roll back together.

STATE MACHINE:
  PENDING --approve--> APPROVED   (no balance change, days were taken on create)
  PENDING --deny-----> DENIED     (days restored)
  APPROVED, DENIED: no further edits; deletion only

CREATE ORDER:
  1. start > end                     -> ErrInvalidRange
  2. status other than PENDING       -> ErrWrongStatusOnCreate
  3. author == manager               -> ErrAuthorIsManager
  4. dates outside enrollment window -> ErrOutOfWindow
  5. in transaction: author, manager, relation, pending overlap, approved
     overlap, balance, insert, deduct

CONCURRENCY:
  Each transaction first locks the author's balance row, which serialises
  all creates/updates/deletes for one employee, so the overlap check and
  the insert cannot interleave with a competing request. Transactions that
  lose a race (ErrConcurrentModification) are retried per RetryPolicy.

SEE ALSO:
  - ledger.go: BalanceLedger
  - overlap.go: OverlapChecker
  - store.go: TxStore contract
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/warp/leave-engine/leave"

// RequestService enforces the request lifecycle.
type RequestService struct {
	Store   TxStore
	Ledger  *BalanceLedger
	Overlap OverlapChecker
	Window  Window
	Retry   RetryPolicy
	Now     func() time.Time
	Logger  *zap.Logger

	tracer trace.Tracer
}

// NewRequestService wires a service over store. A zero retry policy falls
// back to DefaultRetryPolicy; a nil logger discards output.
func NewRequestService(store TxStore, window Window, retry RetryPolicy, logger *zap.Logger) *RequestService {
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		Store:  store,
		Ledger: NewBalanceLedger(),
		Window: window,
		Retry:  retry,
		Now:    time.Now,
		Logger: logger.Named("requests"),
		tracer: otel.Tracer(tracerName),
	}
}

// CreateInput carries the fields of a new request. An empty Status means PENDING.
type CreateInput struct {
	AuthorID           int64
	ManagerID          int64
	Status             Status
	RequestCreatedDate *time.Time
	Start              time.Time
	End                time.Time
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Status    *Status
	ManagerID *int64
	Start     *time.Time
	End       *time.Time
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates and stores a new PENDING request, deducting its business
// days from the author's balance.
func (rs *RequestService) Create(ctx context.Context, in CreateInput) (*Request, error) {
	ctx, span := rs.tracer.Start(ctx, "leave.CreateRequest", trace.WithAttributes(
		attribute.Int64("leave.author_id", in.AuthorID),
		attribute.Int64("leave.manager_id", in.ManagerID),
	))
	defer span.End()

	start, end := Day(in.Start), Day(in.End)
	if start.After(end) {
		return nil, rs.finish(span, "create request", errInvalidRange())
	}
	if in.Status != "" && in.Status != StatusPending {
		return nil, rs.finish(span, "create request", errWrongStatusOnCreate())
	}
	if in.AuthorID == in.ManagerID {
		return nil, rs.finish(span, "create request", errAuthorIsManager())
	}
	if err := rs.Window.Check(start, end); err != nil {
		return nil, rs.finish(span, "create request", err)
	}

	days, err := CountBusinessDays(start, end)
	if err != nil {
		return nil, rs.finish(span, "create request", err)
	}
	created := rs.Now().UTC()
	if in.RequestCreatedDate != nil {
		created = in.RequestCreatedDate.UTC()
	}

	var out Request
	err = rs.Retry.run(ctx, rs.Logger, "create request", func() error {
		return rs.Store.WithTx(ctx, func(s Store) error {
			author, err := s.GetEmployee(ctx, in.AuthorID)
			if err != nil {
				return err
			}
			if author == nil {
				return NotFound(EntityEmployee)
			}
			manager, err := s.GetEmployee(ctx, in.ManagerID)
			if err != nil {
				return err
			}
			if manager == nil {
				return NotFound(EntityManager)
			}
			ok, err := s.IsManagerOf(ctx, in.ManagerID, in.AuthorID)
			if err != nil {
				return err
			}
			if !ok {
				return errNotManagerOfEmployee()
			}

			balance, err := s.LockBalance(ctx, in.AuthorID)
			if err != nil {
				return err
			}
			if err := rs.Overlap.Check(ctx, s, in.AuthorID, start, end, 0); err != nil {
				return err
			}
			if days > balance {
				return errInsufficientBalance()
			}

			req := Request{
				AuthorID:           in.AuthorID,
				ManagerID:          in.ManagerID,
				Status:             StatusPending,
				RequestCreatedDate: created,
				VacationStartDate:  start,
				VacationEndDate:    end,
			}
			id, err := s.InsertRequest(ctx, req)
			if err != nil {
				return err
			}
			req.ID = id

			if _, err := rs.Ledger.Deduct(ctx, s, in.AuthorID, days, Ref{RequestID: id, Reason: "request created"}); err != nil {
				return err
			}
			out = req
			return nil
		})
	})
	if err != nil {
		return nil, rs.finish(span, "create request", err)
	}

	span.SetAttributes(attribute.Int64("leave.request_id", out.ID), attribute.Int("leave.days", days))
	rs.Logger.Info("request created",
		zap.Int64("request_id", out.ID),
		zap.Int64("author_id", out.AuthorID),
		zap.Int("days", days))
	return &out, nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update applies a partial update to a PENDING request. Denying restores the
// days deducted at creation; approving leaves the balance alone. Changed
// dates are re-validated and the balance follows the new day count.
func (rs *RequestService) Update(ctx context.Context, id int64, in UpdateInput) (*Request, error) {
	ctx, span := rs.tracer.Start(ctx, "leave.UpdateRequest", trace.WithAttributes(
		attribute.Int64("leave.request_id", id),
	))
	defer span.End()

	if in.Status != nil && !in.Status.Valid() {
		return nil, rs.finish(span, "update request", errInvalidStatus(*in.Status))
	}

	var out Request
	err := rs.Retry.run(ctx, rs.Logger, "update request", func() error {
		return rs.Store.WithTx(ctx, func(s Store) error {
			cur, err := s.GetRequest(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return NotFound(EntityRequest)
			}
			if cur.Status.Terminal() {
				return InvalidTransition(cur.Status)
			}
			if _, err := s.LockBalance(ctx, cur.AuthorID); err != nil {
				return err
			}

			next := *cur
			if in.Status != nil {
				next.Status = *in.Status
			}
			if in.ManagerID != nil {
				next.ManagerID = *in.ManagerID
			}
			if in.Start != nil {
				next.VacationStartDate = Day(*in.Start)
			}
			if in.End != nil {
				next.VacationEndDate = Day(*in.End)
			}

			if err := rs.checkManagerChange(ctx, s, cur, next); err != nil {
				return err
			}
			datesChanged := !next.VacationStartDate.Equal(cur.VacationStartDate) ||
				!next.VacationEndDate.Equal(cur.VacationEndDate)
			if datesChanged {
				if err := rs.rebook(ctx, s, cur, next); err != nil {
					return err
				}
			}

			if err := s.UpdateRequest(ctx, next); err != nil {
				return err
			}

			if next.Status == StatusDenied {
				days, err := CountBusinessDays(cur.VacationStartDate, cur.VacationEndDate)
				if err != nil {
					return err
				}
				if _, err := rs.Ledger.Restore(ctx, s, cur.AuthorID, days, Ref{RequestID: id, Reason: "request denied"}); err != nil {
					return err
				}
			}
			out = next
			return nil
		})
	})
	if err != nil {
		return nil, rs.finish(span, "update request", err)
	}

	span.SetAttributes(attribute.String("leave.status", string(out.Status)))
	rs.Logger.Info("request updated",
		zap.Int64("request_id", out.ID),
		zap.String("status", string(out.Status)))
	return &out, nil
}

func (rs *RequestService) checkManagerChange(ctx context.Context, s Store, cur *Request, next Request) error {
	if next.ManagerID == cur.ManagerID {
		return nil
	}
	if next.ManagerID == next.AuthorID {
		return errAuthorIsManager()
	}
	manager, err := s.GetEmployee(ctx, next.ManagerID)
	if err != nil {
		return err
	}
	if manager == nil {
		return NotFound(EntityManager)
	}
	ok, err := s.IsManagerOf(ctx, next.ManagerID, next.AuthorID)
	if err != nil {
		return err
	}
	if !ok {
		return errNotManagerOfEmployee()
	}
	return nil
}

// rebook validates new dates of a pending request and moves the balance by
// the difference in business days. A request being denied in the same
// update only has its original deduction restored.
func (rs *RequestService) rebook(ctx context.Context, s Store, cur *Request, next Request) error {
	if next.VacationStartDate.After(next.VacationEndDate) {
		return errInvalidRange()
	}
	if err := rs.Window.Check(next.VacationStartDate, next.VacationEndDate); err != nil {
		return err
	}
	if next.Status == StatusDenied {
		return nil
	}
	if err := rs.Overlap.Check(ctx, s, next.AuthorID, next.VacationStartDate, next.VacationEndDate, cur.ID); err != nil {
		return err
	}

	oldDays, err := CountBusinessDays(cur.VacationStartDate, cur.VacationEndDate)
	if err != nil {
		return err
	}
	newDays, err := CountBusinessDays(next.VacationStartDate, next.VacationEndDate)
	if err != nil {
		return err
	}

	ref := Ref{RequestID: cur.ID, Reason: "request dates changed"}
	switch delta := newDays - oldDays; {
	case delta > 0:
		_, err = rs.Ledger.Deduct(ctx, s, cur.AuthorID, delta, ref)
	case delta < 0:
		_, err = rs.Ledger.Restore(ctx, s, cur.AuthorID, -delta, ref)
	}
	return err
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a request, restoring its days unless it was already denied.
func (rs *RequestService) Delete(ctx context.Context, id int64) error {
	ctx, span := rs.tracer.Start(ctx, "leave.DeleteRequest", trace.WithAttributes(
		attribute.Int64("leave.request_id", id),
	))
	defer span.End()

	var restored int
	err := rs.Retry.run(ctx, rs.Logger, "delete request", func() error {
		restored = 0
		return rs.Store.WithTx(ctx, func(s Store) error {
			cur, err := s.GetRequest(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return NotFound(EntityRequest)
			}

			if cur.Status == StatusPending || cur.Status == StatusApproved {
				days, err := CountBusinessDays(cur.VacationStartDate, cur.VacationEndDate)
				if err != nil {
					return err
				}
				_, err = rs.Ledger.Restore(ctx, s, cur.AuthorID, days, Ref{RequestID: id, Reason: "request deleted"})
				switch {
				case IsNotFound(err):
					// author already gone; nothing to give back
				case err != nil:
					return err
				default:
					restored = days
				}
			}
			return s.DeleteRequest(ctx, id)
		})
	})
	if err != nil {
		return rs.finish(span, "delete request", err)
	}

	rs.Logger.Info("request deleted", zap.Int64("request_id", id), zap.Int("restored_days", restored))
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns one request.
func (rs *RequestService) Get(ctx context.Context, id int64) (*Request, error) {
	req, err := rs.Store.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, NotFound(EntityRequest)
	}
	return req, nil
}

// List returns every request.
func (rs *RequestService) List(ctx context.Context) ([]Request, error) {
	reqs, err := rs.Store.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

// ListByEmployee returns the requests authored by employeeID.
func (rs *RequestService) ListByEmployee(ctx context.Context, employeeID int64) ([]Request, error) {
	emp, err := rs.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list requests by employee: %w", err)
	}
	if emp == nil {
		return nil, NotFound(EntityEmployee)
	}
	reqs, err := rs.Store.FindRequests(ctx, RequestFilter{AuthorIDs: []int64{employeeID}})
	if err != nil {
		return nil, fmt.Errorf("list requests by employee: %w", err)
	}
	return reqs, nil
}

// finish records the outcome of op on span and the log. Rule errors are
// returned untouched so their message reaches the caller verbatim.
func (rs *RequestService) finish(span trace.Span, op string, err error) error {
	var rule *RuleError
	if errors.As(err, &rule) {
		span.SetAttributes(attribute.String("leave.rejection", rule.Message))
		rs.Logger.Info("request rejected", zap.String("op", op), zap.String("reason", rule.Message))
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	rs.Logger.Error("request operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

package service

import (
	"context"
	"time"

	"strive/internal/models"
	"strive/internal/observability"
	"strive/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalKind identifies which votable entity a vote targets.
type ApprovalKind string

const (
	// KindProof routes votes to the proofs table.
	KindProof ApprovalKind = "proof"
	// KindIntervalChange routes votes to the interval_change_requests table.
	KindIntervalChange ApprovalKind = "interval_change"
)

// Decide returns the status a pending submission reaches after one more
// vote. A single rejection is a veto. Approval resolves exactly when the
// approval count reaches the frozen requirement.
func Decide(approve bool, priorApprovals, required int) models.ApprovalStatus {
	if !approve {
		return models.ApprovalStatusRejected
	}
	if priorApprovals+1 >= required {
		return models.ApprovalStatusApproved
	}
	return models.ApprovalStatusPending
}

// VoteResult describes the submission after a vote was recorded.
type VoteResult struct {
	Status    models.ApprovalStatus `json:"status"`
	Approvals int                   `json:"approvals"`
	Required  int                   `json:"required"`
}

// Resolved reports whether the vote brought the submission to a terminal
// status.
func (r *VoteResult) Resolved() bool {
	return r.Status.Terminal()
}

// ApprovalEngine runs the shared vote transaction for every votable kind.
// Eligibility is recomputed from the live friend graph on each vote; only
// the required approval count is frozen at submission time.
type ApprovalEngine struct {
	db       *gorm.DB
	goalRepo repository.GoalRepository
	scope    *ScopeService
}

// NewApprovalEngine returns a new ApprovalEngine.
func NewApprovalEngine(db *gorm.DB, goalRepo repository.GoalRepository, scope *ScopeService) *ApprovalEngine {
	return &ApprovalEngine{db: db, goalRepo: goalRepo, scope: scope}
}

// subjectState is the kind-independent view of a locked submission row.
type subjectState struct {
	id          uint
	goalID      uint
	submitterID uint
	status      models.ApprovalStatus
	required    int
}

// CastVote records one verifier vote inside a single transaction. The
// subject row is locked for the duration so concurrent votes serialize; the
// pending status is re-checked after the lock is taken. onResolve runs
// inside the same transaction when the vote is terminal, so resolution side
// effects commit atomically with the vote.
func (e *ApprovalEngine) CastVote(
	ctx context.Context,
	kind ApprovalKind,
	subjectID uint,
	voterID uint,
	approve bool,
	comment string,
	onResolve func(tx *gorm.DB, status models.ApprovalStatus) error,
) (*VoteResult, error) {
	var result *VoteResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject, err := e.lockSubject(tx, kind, subjectID)
		if err != nil {
			return err
		}

		// Re-check after the lock: a concurrent vote may have resolved it.
		if subject.status.Terminal() {
			return models.NewInvalidStateError("Submission is already resolved")
		}

		if subject.submitterID == voterID {
			return models.NewForbiddenError("You cannot vote on your own submission")
		}

		goal, err := e.goalRepo.GetByID(ctx, subject.goalID)
		if err != nil {
			return err
		}
		eligible, err := e.scope.IsEligibleVoter(ctx, goal, voterID)
		if err != nil {
			return err
		}
		if !eligible {
			return models.NewForbiddenError("You are not allowed to verify this goal")
		}

		voted, err := e.hasVoted(tx, kind, subjectID, voterID)
		if err != nil {
			return err
		}
		if voted {
			return models.NewConflictError("You have already voted on this submission")
		}

		priorApprovals, err := e.countApprovals(tx, kind, subjectID)
		if err != nil {
			return err
		}

		if err := e.insertVote(tx, kind, subjectID, voterID, approve, comment); err != nil {
			return err
		}

		status := Decide(approve, priorApprovals, subject.required)
		approvals := priorApprovals
		if approve {
			approvals++
		}

		if status.Terminal() {
			if err := e.resolveSubject(tx, kind, subjectID, status); err != nil {
				return err
			}
			if onResolve != nil {
				if err := onResolve(tx, status); err != nil {
					return err
				}
			}
			observability.SubmissionsResolved.WithLabelValues(string(kind), string(status)).Inc()
		}

		result = &VoteResult{Status: status, Approvals: approvals, Required: subject.required}
		return nil
	})
	if err != nil {
		return nil, err
	}

	vote := "reject"
	if approve {
		vote = "approve"
	}
	observability.VotesCast.WithLabelValues(string(kind), vote).Inc()

	return result, nil
}

// lockSubject loads the submission row under a row lock. SQLite has no
// SELECT FOR UPDATE; its writer lock serializes the transaction instead.
func (e *ApprovalEngine) lockSubject(tx *gorm.DB, kind ApprovalKind, subjectID uint) (*subjectState, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	switch kind {
	case KindProof:
		var p models.Proof
		if err := q.First(&p, subjectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, models.NewNotFoundError("Proof", subjectID)
			}
			return nil, models.NewInternalError(err)
		}
		return &subjectState{
			id:          p.ID,
			goalID:      p.GoalID,
			submitterID: p.OwnerID,
			status:      p.Status,
			required:    p.RequiredVerifications,
		}, nil
	case KindIntervalChange:
		var r models.IntervalChangeRequest
		if err := q.First(&r, subjectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, models.NewNotFoundError("Interval change request", subjectID)
			}
			return nil, models.NewInternalError(err)
		}
		return &subjectState{
			id:          r.ID,
			goalID:      r.GoalID,
			submitterID: r.RequesterID,
			status:      r.Status,
			required:    r.RequiredVerifications,
		}, nil
	}
	return nil, models.NewInternalError(gorm.ErrInvalidData)
}

func (e *ApprovalEngine) hasVoted(tx *gorm.DB, kind ApprovalKind, subjectID, voterID uint) (bool, error) {
	var count int64
	var err error
	switch kind {
	case KindProof:
		err = tx.Model(&models.ProofVote{}).
			Where("proof_id = ? AND voter_id = ?", subjectID, voterID).
			Count(&count).Error
	case KindIntervalChange:
		err = tx.Model(&models.IntervalChangeVote{}).
			Where("request_id = ? AND voter_id = ?", subjectID, voterID).
			Count(&count).Error
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (e *ApprovalEngine) insertVote(tx *gorm.DB, kind ApprovalKind, subjectID, voterID uint, approve bool, comment string) error {
	var err error
	switch kind {
	case KindProof:
		err = tx.Create(&models.ProofVote{
			ProofID:  subjectID,
			VoterID:  voterID,
			Approved: approve,
			Comment:  comment,
		}).Error
	case KindIntervalChange:
		err = tx.Create(&models.IntervalChangeVote{
			RequestID: subjectID,
			VoterID:   voterID,
			Approved:  approve,
			Comment:   comment,
		}).Error
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (e *ApprovalEngine) countApprovals(tx *gorm.DB, kind ApprovalKind, subjectID uint) (int, error) {
	var count int64
	var err error
	switch kind {
	case KindProof:
		err = tx.Model(&models.ProofVote{}).
			Where("proof_id = ? AND approved = ?", subjectID, true).
			Count(&count).Error
	case KindIntervalChange:
		err = tx.Model(&models.IntervalChangeVote{}).
			Where("request_id = ? AND approved = ?", subjectID, true).
			Count(&count).Error
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(count), nil
}

func (e *ApprovalEngine) resolveSubject(tx *gorm.DB, kind ApprovalKind, subjectID uint, status models.ApprovalStatus) error {
	var err error
	switch kind {
	case KindProof:
		err = tx.Model(&models.Proof{}).
			Where("id = ? AND status = ?", subjectID, models.ApprovalStatusPending).
			Update("status", status).Error
	case KindIntervalChange:
		now := time.Now()
		err = tx.Model(&models.IntervalChangeRequest{}).
			Where("id = ? AND status = ?", subjectID, models.ApprovalStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"resolved_at": now,
			}).Error
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

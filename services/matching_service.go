package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

// MatchLocation is the fixed venue recorded on every realized match.
const MatchLocation = "Members' Bar VELOUR"

// MatchingService enforces the matching request lifecycle:
// pending -> accepted/rejected/expired/cancelled, with monthly quota
// enforcement and notification fan-out. It holds no state between calls;
// every operation re-reads authoritative rows.
type MatchingService struct {
	DB       *gorm.DB
	Notifier *Notifier

	// Now is the clock used for expiry and quota-month boundaries.
	// Tests replace it to simulate time passage.
	Now func() time.Time

	// Interval between background expiry sweeps.
	Interval time.Duration

	stopCh chan struct{}
}

func NewMatchingService(db *gorm.DB) *MatchingService {
	return &MatchingService{
		DB:       db,
		Notifier: NewNotifier(db),
		Now:      time.Now,
		Interval: 10 * time.Minute,
	}
}

func (s *MatchingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateMatchingInput is the payload for a new request.
type CreateMatchingInput struct {
	ToUserID      uint
	ProposedDates []models.ProposedDate
	Message       string
	Introduction  string
	Topic         string
}

// MatchingRequestView is a request enriched with sender/recipient
// profile summaries for list responses.
type MatchingRequestView struct {
	models.MatchingRequest
	FromUser models.ProfileSummary `json:"from_user"`
	ToUser   models.ProfileSummary `json:"to_user"`
}

const (
	ScopeSent     = "sent"
	ScopeReceived = "received"
	ScopeBoth     = "both"
)

// List returns the caller's matching requests, newest first. Stale
// pending rows are swept to expired first so reads observe expiry.
func (s *MatchingService) List(callerID uint, scope string) ([]MatchingRequestView, error) {
	s.ExpireStale()

	q := s.DB.Preload("FromUser").Preload("ToUser").Order("created_at DESC")
	switch scope {
	case ScopeSent:
		q = q.Where("from_user_id = ?", callerID)
	case ScopeReceived:
		q = q.Where("to_user_id = ?", callerID)
	default:
		q = q.Where("from_user_id = ? OR to_user_id = ?", callerID, callerID)
	}

	var reqs []models.MatchingRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}

	views := make([]MatchingRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, MatchingRequestView{
			MatchingRequest: r,
			FromUser:        r.FromUser.Summary(),
			ToUser:          r.ToUser.Summary(),
		})
	}
	return views, nil
}

// Create validates membership, quota and payload, then inserts a new
// pending request and notifies the recipient.
//
// The quota count and the insert run in one transaction with the
// caller's membership row locked FOR UPDATE, so concurrent creates by
// the same sender are serialized. The duplicate-pending check is only
// an early exit for a friendly error; the unique pending_pair index is
// what actually holds the single-pending invariant under races.
func (s *MatchingService) Create(callerID uint, in CreateMatchingInput) (*models.MatchingRequest, error) {
	if in.ToUserID == 0 || len(in.ProposedDates) == 0 ||
		strings.TrimSpace(in.Message) == "" || strings.TrimSpace(in.Introduction) == "" {
		return nil, ErrInvalidRequest
	}
	if in.ToUserID == callerID {
		return nil, ErrSelfRequest
	}

	now := s.now()
	var req models.MatchingRequest

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the caller's membership row so concurrent creates by the
		// same sender serialize; the quota count below stays accurate.
		// SQLite has no FOR UPDATE and is single-writer anyway.
		q := tx.Where("user_id = ?", callerID)
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var ms models.Membership
		err := q.First(&ms).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotPaidMember
		}
		if err != nil {
			return err
		}
		if !ms.IsPaid() {
			return ErrNotPaidMember
		}

		limit := MonthlyQuota(ms.Tier)
		var sent int64
		if err := tx.Model(&models.MatchingRequest{}).
			Where("from_user_id = ? AND created_at >= ?", callerID, monthStart(now)).
			Count(&sent).Error; err != nil {
			return err
		}
		if sent >= int64(limit) {
			return &QuotaExceededError{Limit: limit}
		}

		var recipient models.Membership
		err = tx.Where("user_id = ?", in.ToUserID).First(&recipient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotEligible
		}
		if err != nil {
			return err
		}
		if !recipient.IsPaid() {
			return ErrRecipientNotEligible
		}

		var dup int64
		if err := tx.Model(&models.MatchingRequest{}).
			Where("from_user_id = ? AND to_user_id = ? AND status = ?",
				callerID, in.ToUserID, models.MatchingStatusPending).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicatePending
		}

		pair := models.PairKey(callerID, in.ToUserID)
		req = models.MatchingRequest{
			FromUserID:    callerID,
			ToUserID:      in.ToUserID,
			Status:        models.MatchingStatusPending,
			ProposedDates: in.ProposedDates,
			Message:       in.Message,
			Introduction:  in.Introduction,
			Topic:         in.Topic,
			PendingPair:   &pair,
			ExpiresAt:     now.Add(models.MatchingRequestTTL),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Emit(in.ToUserID, models.NotificationMatchingRequest,
		"New matching request",
		"You have received a matching request.",
		map[string]any{"request_id": req.ID, "from_user_id": callerID})

	return &req, nil
}

// Accept transitions a pending request addressed to the caller to
// accepted, records the realized match, and notifies the sender.
//
// The lookup is filtered by recipient and pending status, so a request
// that is foreign, already resolved, or nonexistent is uniformly "not
// found" — existence of other members' requests is never confirmed.
func (s *MatchingService) Accept(callerID, requestID uint, selected models.ProposedDate) (*models.MatchingRequest, error) {
	now := s.now()

	var req models.MatchingRequest
	err := s.DB.Where("id = ? AND to_user_id = ? AND status = ?",
		requestID, callerID, models.MatchingStatusPending).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.ExpiresAt.Before(now) {
		// The expiry transition commits even though the accept fails.
		s.materializeExpiry(requestID, now)
		return nil, ErrRequestExpired
	}

	if strings.TrimSpace(selected.Date) == "" {
		return nil, ErrMissingSelectedDate
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MatchingRequest{}).
			Where("id = ? AND to_user_id = ? AND status = ?",
				requestID, callerID, models.MatchingStatusPending).
			Updates(map[string]any{
				"status":       models.MatchingStatusAccepted,
				"responded_at": now,
				"pending_pair": nil,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race against another transition.
			return ErrRequestNotFound
		}

		history := models.MatchingHistory{
			RequestID:   requestID,
			MatchedDate: selected.Date,
			Location:    MatchLocation,
			CreatedAt:   now,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Emit(req.FromUserID, models.NotificationMatchingResponse,
		"Matching request accepted",
		fmt.Sprintf("Your matching request was accepted for %s.", selected.Date),
		map[string]any{
			"request_id":    requestID,
			"status":        models.MatchingStatusAccepted,
			"selected_date": selected,
		})

	return s.reload(requestID)
}

// Reject transitions a pending request addressed to the caller to
// rejected and notifies the sender. Expiry is checked here too: an
// expired request is not actionable either way, so rejecting one fails
// the same way accepting does (and materializes the expiry).
func (s *MatchingService) Reject(callerID, requestID uint) (*models.MatchingRequest, error) {
	return s.resolve(callerID, requestID, "to_user_id", models.MatchingStatusRejected)
}

// Cancel lets the sender withdraw their own pending request. It is the
// only transition driven by the sender after creation.
func (s *MatchingService) Cancel(callerID, requestID uint) (*models.MatchingRequest, error) {
	return s.resolve(callerID, requestID, "from_user_id", models.MatchingStatusCancelled)
}

// resolve performs a recipient-reject or sender-cancel: a single
// conditional update keyed on pending status, followed by a
// notification to the counterparty.
func (s *MatchingService) resolve(callerID, requestID uint, ownerColumn, newStatus string) (*models.MatchingRequest, error) {
	now := s.now()

	var req models.MatchingRequest
	err := s.DB.Where("id = ? AND "+ownerColumn+" = ? AND status = ?",
		requestID, callerID, models.MatchingStatusPending).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.ExpiresAt.Before(now) {
		s.materializeExpiry(requestID, now)
		return nil, ErrRequestExpired
	}

	res := s.DB.Model(&models.MatchingRequest{}).
		Where("id = ? AND "+ownerColumn+" = ? AND status = ?",
			requestID, callerID, models.MatchingStatusPending).
		Updates(map[string]any{
			"status":       newStatus,
			"responded_at": now,
			"pending_pair": nil,
			"updated_at":   now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrRequestNotFound
	}

	counterparty := req.FromUserID
	if ownerColumn == "from_user_id" {
		counterparty = req.ToUserID
	}
	title := "Matching request rejected"
	message := "Your matching request was declined."
	if newStatus == models.MatchingStatusCancelled {
		title = "Matching request cancelled"
		message = "A matching request sent to you was withdrawn."
	}
	s.Notifier.Emit(counterparty, models.NotificationMatchingResponse,
		title, message,
		map[string]any{"request_id": requestID, "status": newStatus})

	return s.reload(requestID)
}

// History returns the caller's realized matches, newest first.
func (s *MatchingService) History(callerID uint) ([]models.MatchingHistory, error) {
	var rows []models.MatchingHistory
	err := s.DB.
		Joins("JOIN matching_requests ON matching_requests.id = matching_histories.request_id").
		Where("matching_requests.from_user_id = ? OR matching_requests.to_user_id = ?", callerID, callerID).
		Order("matching_histories.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ExpireStale sweeps pending requests past their deadline to expired.
// The update is conditional on pending status, so it is idempotent and
// cannot clobber a concurrent accept/reject.
func (s *MatchingService) ExpireStale() int64 {
	now := s.now()
	res := s.DB.Model(&models.MatchingRequest{}).
		Where("status = ? AND expires_at < ?", models.MatchingStatusPending, now).
		Updates(map[string]any{
			"status":       models.MatchingStatusExpired,
			"pending_pair": nil,
			"updated_at":   now,
		})
	if res.Error != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Errorf("expiry sweep failed: %v", res.Error)
		}
		return 0
	}
	return res.RowsAffected
}

func (s *MatchingService) materializeExpiry(requestID uint, now time.Time) {
	res := s.DB.Model(&models.MatchingRequest{}).
		Where("id = ? AND status = ?", requestID, models.MatchingStatusPending).
		Updates(map[string]any{
			"status":       models.MatchingStatusExpired,
			"pending_pair": nil,
			"updated_at":   now,
		})
	if res.Error != nil && utils.ErrorLogger != nil {
		utils.ErrorLogger.Errorf("failed to expire request %d: %v", requestID, res.Error)
	}
}

func (s *MatchingService) reload(requestID uint) (*models.MatchingRequest, error) {
	var req models.MatchingRequest
	if err := s.DB.First(&req, requestID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// StartExpiryChecker runs periodic expiry sweeps so stale requests
// converge to expired even when nobody reads them.
func (s *MatchingService) StartExpiryChecker() {
	s.stopCh = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.ExpireStale(); n > 0 && utils.InfoLogger != nil {
					utils.InfoLogger.Printf("expired %d stale matching requests", n)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// StopExpiryChecker stops the background sweep goroutine.
func (s *MatchingService) StopExpiryChecker() {
	if s.stopCh != nil {
		close(s.stopCh)
	}
}

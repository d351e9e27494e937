package issue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"partsbot/internal"
	"partsbot/internal/access"
	"partsbot/internal/catalog"
	"partsbot/internal/connectors"
	"partsbot/internal/metrics"
	"partsbot/internal/storage"
	"partsbot/internal/util"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	ErrCodeRequired = errors.New("code is required")
	ErrForbidden    = errors.New("user is blocked")
	ErrNotFound     = catalog.ErrNotFound
	ErrHistoryWrite = errors.New("history write failed")
)

// Service records parts taken from stock. Every issue is stored locally and,
// when a sink is set, appended to the shared history sheet.
type Service struct {
	catalog *catalog.Catalog
	policy  *access.Policy
	db      *storage.DB
	sink    connectors.HistorySink
	maxQty  float64
	loc     *time.Location
	metrics *metrics.Registry

	now   func() time.Time
	newID func() string
}

type Options struct {
	MaxQty   float64
	Location *time.Location
	Metrics  *metrics.Registry
}

// NewService wires the issue flow. sink may be nil.
func NewService(cat *catalog.Catalog, policy *access.Policy, db *storage.DB, sink connectors.HistorySink, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		catalog: cat,
		policy:  policy,
		db:      db,
		sink:    sink,
		maxQty:  opts.MaxQty,
		loc:     loc,
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *Service) Issue(ctx context.Context, req internal.IssueRequest) (internal.IssueRow, error) {
	row, err := s.issue(ctx, req)
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrForbidden):
		result = "forbidden"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrCodeRequired), errors.Is(err, util.ErrInvalidQty):
		result = "invalid"
	default:
		result = "error"
	}
	s.metrics.ObserveIssue(result)
	return row, err
}

func (s *Service) issue(ctx context.Context, req internal.IssueRequest) (internal.IssueRow, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if code == "" {
		return internal.IssueRow{}, ErrCodeRequired
	}
	qty, err := util.ParseQty(req.Qty, s.maxQty)
	if err != nil {
		return internal.IssueRow{}, err
	}
	if s.policy != nil && s.policy.IsBlocked(ctx, req.UserID) {
		return internal.IssueRow{}, ErrForbidden
	}

	item, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		return internal.IssueRow{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strconv.FormatInt(req.UserID, 10)
	}
	qf, _ := qty.Float64()
	row := internal.IssueRow{
		ID:        s.newID(),
		CreatedAt: s.now().In(s.loc).Format(timestampLayout),
		UserID:    req.UserID,
		UserName:  name,
		Type:      item.Card.Type,
		Name:      item.Card.Name,
		Code:      item.Card.Code,
		Qty:       qf,
		Comment:   strings.TrimSpace(req.Comment),
	}

	if s.sink != nil {
		if err := s.sink.AppendIssue(ctx, row); err != nil {
			return internal.IssueRow{}, fmt.Errorf("%w: %v", ErrHistoryWrite, err)
		}
	}
	if s.db != nil {
		if err := s.db.InsertIssue(row); err != nil {
			return internal.IssueRow{}, fmt.Errorf("store issue: %w", err)
		}
	}

	log.Info().
		Str("id", row.ID).
		Int64("user_id", row.UserID).
		Str("code", row.Code).
		Float64("qty", row.Qty).
		Msg("part issued")
	return row, nil
}

// Recent lists stored history newest first. userID 0 lists every user.
func (s *Service) Recent(userID int64, limit int) ([]internal.IssueRow, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.ListIssues(userID, limit)
}

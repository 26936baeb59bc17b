package service

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAuditPageSize = 100

// AuditService is the append-only audit trail. It has no edit or delete
// operation; entries are retained indefinitely.
type AuditService interface {
	// Record appends entry inside tx (nil for a standalone insert). Entries
	// written inside tx are counted by the caller once tx commits.
	Record(tx *gorm.DB, entry *model.AuditLog) error
	// Query yields entries newest first, optionally filtered by entity type.
	// Each range over the sequence re-reads the store from the newest entry.
	Query(entityType *model.EntityType) iter.Seq2[model.AuditLog, error]
	List(entityType *model.EntityType, limit int) ([]model.AuditLog, error)
	Summary(days int) ([]AuditDaySummary, error)
}

// AuditDaySummary counts one UTC day's entries by entity type.
type AuditDaySummary struct {
	Date   string                     `json:"date"`
	Counts map[model.EntityType]int64 `json:"counts"`
	Total  int64                      `json:"total"`
}

type auditService struct {
	repo     repository.AuditRepository
	metrics  *metrics.Metrics
	now      func() time.Time
	pageSize int

	mu   sync.Mutex
	last time.Time
}

func NewAuditService(repo repository.AuditRepository, m *metrics.Metrics) (AuditService, error) {
	s := &auditService{
		repo:     repo,
		metrics:  m,
		now:      time.Now,
		pageSize: defaultAuditPageSize,
	}

	latest, err := repo.Latest()
	switch {
	case err == nil:
		s.last = latest.Timestamp.UTC()
	case !errors.Is(err, repository.ErrRecordNotFound):
		return nil, fmt.Errorf("load latest audit entry: %w", err)
	}
	return s, nil
}

// nextTimestamp returns a strictly increasing UTC timestamp with the
// microsecond precision every supported store keeps.
func (s *auditService) nextTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Truncate(time.Microsecond)
	if !ts.After(s.last) {
		ts = s.last.Add(time.Microsecond)
	}
	s.last = ts
	return ts
}

func (s *auditService) Record(tx *gorm.DB, entry *model.AuditLog) error {
	if !entry.EntityType.IsValid() {
		return &ValidationError{Problems: []string{fmt.Sprintf("unknown entity type %q", entry.EntityType)}}
	}
	if entry.Action == "" {
		return &ValidationError{Problems: []string{"audit action is required"}}
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = SystemActor.Label()
	}

	entry.ID = uuid.New()
	entry.Timestamp = s.nextTimestamp()

	if tx != nil {
		if err := s.repo.WithTx(tx).Create(entry); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
		return nil
	}

	if err := s.repo.Create(entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	s.metrics.RecordAuditEntry(string(entry.EntityType))
	return nil
}

func (s *auditService) Query(entityType *model.EntityType) iter.Seq2[model.AuditLog, error] {
	return func(yield func(model.AuditLog, error) bool) {
		var cursor *repository.AuditCursor
		for {
			page, err := s.repo.FindPage(entityType, cursor, s.pageSize)
			if err != nil {
				yield(model.AuditLog{}, err)
				return
			}
			for _, entry := range page {
				if !yield(entry, nil) {
					return
				}
			}
			if len(page) < s.pageSize {
				return
			}
			last := page[len(page)-1]
			cursor = &repository.AuditCursor{Timestamp: last.Timestamp, ID: last.ID}
		}
	}
}

// List collects at most limit entries from Query; limit <= 0 means all.
func (s *auditService) List(entityType *model.EntityType, limit int) ([]model.AuditLog, error) {
	entries := []model.AuditLog{}
	for entry, err := range s.Query(entityType) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// Summary groups the last days of entries per UTC day, newest day first.
func (s *auditService) Summary(days int) ([]AuditDaySummary, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	entries, err := s.repo.FindSince(since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*AuditDaySummary)
	for _, e := range entries {
		day := e.Timestamp.UTC().Format("2006-01-02")
		sum, ok := byDay[day]
		if !ok {
			sum = &AuditDaySummary{Date: day, Counts: make(map[model.EntityType]int64)}
			byDay[day] = sum
		}
		sum.Counts[e.EntityType]++
		sum.Total++
	}

	out := make([]AuditDaySummary, 0, len(byDay))
	for _, sum := range byDay {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

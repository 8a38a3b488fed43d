package core

import (
	"context"
	"iter"
	"time"

	db "github.com/JonMunkholm/formlog/internal/database"
	"github.com/JonMunkholm/formlog/internal/export"
	"github.com/JonMunkholm/formlog/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ExportTimeout is the maximum duration for a single export run.
var ExportTimeout = 10 * time.Minute

// EntryStore persists form log entries. Satisfied by *database.Queries.
type EntryStore interface {
	InsertEntry(ctx context.Context, arg db.InsertEntryParams) (db.FormlogEntry, error)
	GetEntry(ctx context.Context, id pgtype.UUID) (db.FormlogEntry, error)
	ListEntries(ctx context.Context, arg db.ListEntriesParams) ([]db.FormlogEntry, error)
	CountEntries(ctx context.Context, filter db.EntryFilter) (int64, error)
	StreamEntries(ctx context.Context, filter db.EntryFilter) iter.Seq2[db.FormlogEntry, error]
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LabelCatalog supplies column label translators per language.
type LabelCatalog interface {
	Translator(language string) export.Translator
}

// Service provides the business logic of the form log.
type Service struct {
	store    EntryStore
	profiles *Profiles
	labels   LabelCatalog
	metrics  *metrics.Metrics

	now   func() time.Time
	newID func() uuid.UUID
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithProfiles sets the export profiles. Defaults to the built-in default profile.
func WithProfiles(p *Profiles) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.profiles = p
		}
	}
}

// WithLabels sets the label catalog used to translate export headers.
func WithLabels(c LabelCatalog) ServiceOption {
	return func(s *Service) {
		s.labels = c
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service instance.
func NewService(store EntryStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		profiles: NewProfiles(DefaultProfile()),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profiles returns the configured export profiles.
func (s *Service) Profiles() *Profiles {
	return s.profiles
}

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/combined-routes/internal/database"
	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/repository"
)

// ErrRunNotFound is returned for unknown run IDs
var ErrRunNotFound = errors.New("run not found")

// CatalogService records render runs and serves them back
type CatalogService struct {
	db        *sql.DB
	runRepo   *repository.RunRepository
	trackRepo *repository.TrackRepository
	now       func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{
		db:        db,
		runRepo:   repository.NewRunRepository(db),
		trackRepo: repository.NewTrackRepository(db),
		now:       time.Now,
	}
}

// RecordRun stores a run and its tracks in one transaction. A run without
// an ID gets a new one, and the stored run is returned.
func (s *CatalogService) RecordRun(run models.RunRecord, tracks []models.TrackRecord) (*models.RunRecord, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	records := make([]models.TrackRecord, len(tracks))
	copy(records, tracks)
	for i := range records {
		records[i].RunID = run.ID
	}

	err := database.Transaction(s.db, func(tx *sql.Tx) error {
		if err := s.runRepo.Insert(tx, &run); err != nil {
			return err
		}
		return s.trackRepo.InsertBatch(tx, records)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return &run, nil
}

// GetRuns lists runs, newest first
func (s *CatalogService) GetRuns(filter models.RunFilter) (*models.RunsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	runs, total, err := s.runRepo.GetRuns(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}

	return &models.RunsResponse{
		Data:       runs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// GetRun retrieves a single run
func (s *CatalogService) GetRun(id string) (*models.RunRecord, error) {
	run, err := s.runRepo.GetRunByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// GetRunTracks retrieves the tracks of a run in draw order
func (s *CatalogService) GetRunTracks(id string) ([]models.TrackRecord, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}
	tracks, err := s.trackRepo.GetTracksByRun(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks: %w", err)
	}
	return tracks, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSurveyNotFound is returned when a survey ID is unknown to a store.
var ErrSurveyNotFound = errors.New("survey not found")

// Survey summarises one batch survey and the attractors it found.
type Survey struct {
	ID               string
	CreatedAt        time.Time
	Width            int
	Height           int
	Runs             int
	Steps            int
	Window           int
	AliveProbability float64
	Seed             int64
	Converged        int
	Dynamic          int
	Attractors       []Attractor
}

// Attractor is one catalog entry as persisted.
type Attractor struct {
	Rank       int
	Width      int
	Height     int
	Cells      []uint8
	Population int
	Torque     float64
	Hits       int
	Frequency  float64
}

// Store persists surveys.
type Store interface {
	// SaveSurvey stores s and its attractors. An empty ID is replaced by a
	// fresh one; the ID used is written back through s.
	SaveSurvey(ctx context.Context, s *Survey) error
	// Surveys lists stored surveys newest first, without attractors.
	Surveys(ctx context.Context) ([]Survey, error)
	// Attractors returns the attractors of a survey ordered by rank.
	Attractors(ctx context.Context, id string) ([]Attractor, error)
	Close() error
}

// NewSurveyID returns a random survey identifier.
func NewSurveyID() string { return uuid.NewString() }

// NewStore opens the backend named by kind. path is ignored by the memory
// backend.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("sqlite store needs a path")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

func prepare(s *Survey) {
	if s.ID == "" {
		s.ID = NewSurveyID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes/internal/models"
	"notes/internal/repositories"
)

// NoteService handles business logic related to notes.
//
// Get, Update and Delete look notes up by id alone unless ownership
// enforcement is switched on, in which case a note owned by someone else is
// reported as not found.
type NoteService struct {
	noteRepo         repositories.NoteRepository
	events           EventPublisher
	enforceOwnership bool
}

// NewNoteService creates a new NoteService. events may be nil.
func NewNoteService(noteRepo repositories.NoteRepository, events EventPublisher, enforceOwnership bool) *NoteService {
	return &NoteService{
		noteRepo:         noteRepo,
		events:           events,
		enforceOwnership: enforceOwnership,
	}
}

// NoteInput carries the editable note fields.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int64 // count the page arithmetic is based on
	TotalPages int64
	Matched    int64 // records matching the search
}

// NoteStats summarizes a user's notes.
type NoteStats struct {
	TotalUserNotes int64      `json:"totalUserNotes"`
	LatestActivity *time.Time `json:"latestActivity"`
}

var errMissingOwner = validationError("User ID is required")

const noteNotFound = "Note not found"

// Create stores a new note owned by ownerID.
func (s *NoteService) Create(ctx context.Context, ownerID string, in NoteInput) (*models.Note, error) {
	if in.Content == "" {
		return nil, validationError("Content is required")
	}
	if ownerID == "" {
		return nil, errMissingOwner
	}

	now := time.Now()
	note := &models.Note{
		Title:     in.Title,
		Content:   in.Content,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	publishEvent(s.events, EventNoteCreated, note.ID, ownerID)
	return note, nil
}

// List returns a page of the owner's notes. Totals reflect the search filter.
func (s *NoteService) List(ctx context.Context, ownerID string, p Pagination) (*Page[models.Note], error) {
	if ownerID == "" {
		return nil, errMissingOwner
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	notes, total, err := s.noteRepo.ListByOwner(ctx, ownerID, repositories.ListQuery{
		Offset: p.Offset(),
		Limit:  p.Limit,
		Search: p.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for %s: %w", ownerID, err)
	}
	return &Page[models.Note]{
		Items:      notes,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
		Matched:    total,
	}, nil
}

// Get returns a note by id.
func (s *NoteService) Get(ctx context.Context, requesterID, id string) (*models.Note, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.find(ctx, requesterID, id)
}

// Update replaces title and content with the supplied non-empty values and
// keeps the stored value for anything left empty.
func (s *NoteService) Update(ctx context.Context, requesterID, id string, in NoteInput) (*models.Note, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	note, err := s.find(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	note.Title = pick(in.Title, note.Title)
	note.Content = pick(in.Content, note.Content)
	note.UpdatedAt = time.Now()

	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError(noteNotFound)
		}
		return nil, fmt.Errorf("failed to update note %s: %w", id, err)
	}
	publishEvent(s.events, EventNoteUpdated, note.ID, requesterID)
	return note, nil
}

// Delete removes a note by id.
func (s *NoteService) Delete(ctx context.Context, requesterID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if _, err := s.find(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError(noteNotFound)
		}
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	publishEvent(s.events, EventNoteDeleted, id, requesterID)
	return nil
}

// Stats returns the owner's note count and latest activity time.
func (s *NoteService) Stats(ctx context.Context, ownerID string) (*NoteStats, error) {
	if ownerID == "" {
		return nil, errMissingOwner
	}
	total, err := s.noteRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes for %s: %w", ownerID, err)
	}
	stats := &NoteStats{TotalUserNotes: total}

	latest, err := s.noteRepo.LatestActivity(ctx, ownerID)
	switch {
	case err == nil:
		at := latest.LatestActivity()
		stats.LatestActivity = &at
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to find latest activity for %s: %w", ownerID, err)
	}
	return stats, nil
}

func (s *NoteService) find(ctx context.Context, requesterID, id string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError(noteNotFound)
		}
		return nil, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	if s.enforceOwnership && note.OwnerID != requesterID {
		return nil, notFoundError(noteNotFound)
	}
	return note, nil
}

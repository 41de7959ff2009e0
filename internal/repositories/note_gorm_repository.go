package repositories

import (
	"context"
	"strings"
	"time"

	"notes/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNoteRepository is a GORM implementation of NoteRepository.
type GORMNoteRepository struct {
	db *gorm.DB
}

// NewGORMNoteRepository creates a new instance of GORMNoteRepository.
func NewGORMNoteRepository(db *gorm.DB) *GORMNoteRepository {
	return &GORMNoteRepository{
		db: db,
	}
}

// Create inserts a note, assigning an id when missing.
func (r *GORMNoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	return translateError(r.db.WithContext(ctx).Create(note).Error, "failed to create note")
}

// GetByID retrieves a note by id regardless of its owner.
func (r *GORMNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get note by id "+id)
	}
	return &note, nil
}

func ownedBy(ownerID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Note{}).Where("owner_id = ?", ownerID)
	}
}

// ListByOwner returns one page of the owner's notes, optionally filtered by a
// search over title and content, plus the number of notes matching the filter.
func (r *GORMNoteRepository) ListByOwner(ctx context.Context, ownerID string, q ListQuery) ([]models.Note, int64, error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		tx = ownedBy(ownerID)(tx)
		if s := strings.TrimSpace(q.Search); s != "" {
			p := containsPattern(s)
			tx = tx.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, p, p)
		}
		return tx
	}

	var total int64
	if err := r.db.WithContext(ctx).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count notes")
	}

	notes := make([]models.Note, 0, q.Limit)
	err := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC, id ASC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&notes).Error
	if err != nil {
		return nil, 0, translateError(err, "failed to list notes")
	}
	return notes, total, nil
}

// CountByOwner returns how many notes the owner has.
func (r *GORMNoteRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Scopes(ownedBy(ownerID)).Count(&total).Error; err != nil {
		return 0, translateError(err, "failed to count notes")
	}
	return total, nil
}

// LatestActivity returns the owner's note with the most recent creation or
// update time, or ErrNotFound when the owner has no notes.
func (r *GORMNoteRepository) LatestActivity(ctx context.Context, ownerID string) (*models.Note, error) {
	// The maximum of max(createdAt, updatedAt) over all notes is the larger of
	// the newest createdAt and the newest updatedAt.
	var byCreated, byUpdated models.Note
	if err := r.db.WithContext(ctx).Scopes(ownedBy(ownerID)).
		Order("created_at DESC").Take(&byCreated).Error; err != nil {
		return nil, translateError(err, "failed to find latest note")
	}
	if err := r.db.WithContext(ctx).Scopes(ownedBy(ownerID)).
		Order("updated_at DESC").Take(&byUpdated).Error; err != nil {
		return nil, translateError(err, "failed to find latest note")
	}
	if byUpdated.LatestActivity().After(byCreated.LatestActivity()) {
		return &byUpdated, nil
	}
	return &byCreated, nil
}

// Update writes title, content and updatedAt. OwnerID is never written.
func (r *GORMNoteRepository) Update(ctx context.Context, note *models.Note) error {
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", note.ID).Updates(map[string]any{
		"title":      note.Title,
		"content":    note.Content,
		"updated_at": note.UpdatedAt,
	})
	if res.Error != nil {
		return translateError(res.Error, "failed to update note "+note.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a note by id.
func (r *GORMNoteRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, "failed to delete note "+id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

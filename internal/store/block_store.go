package store

import (
	"time"

	"quiethours/internal/models"
)

// BlockStore is the data-access layer for study blocks
type BlockStore struct {
	conn Conn
}

// NewBlockStore creates a block store backed by the given connection
func NewBlockStore(conn Conn) *BlockStore {
	return &BlockStore{conn: conn}
}

// Create inserts a new study block
func (s *BlockStore) Create(block *models.StudyBlock) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}
	return db.Create(block).Error
}

// GetByID fetches a single block by id
func (s *BlockStore) GetByID(id string) (*models.StudyBlock, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var block models.StudyBlock
	if err := db.Where("id = ?", id).First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// GetOwned fetches a block only if it belongs to the given user
func (s *BlockStore) GetOwned(id, userID string) (*models.StudyBlock, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var block models.StudyBlock
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// ListForUser returns a user's blocks, most recent first. With upcomingOnly
// set, only blocks starting at or after now are returned, soonest first.
func (s *BlockStore) ListForUser(userID string, upcomingOnly bool) ([]models.StudyBlock, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var blocks []models.StudyBlock
	query := db.Where("user_id = ?", userID)
	if upcomingOnly {
		query = query.Where("start_at >= ?", time.Now()).Order("start_at asc")
	} else {
		query = query.Order("start_at desc")
	}
	if err := query.Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// Delete removes a block by id
func (s *BlockStore) Delete(id string) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.StudyBlock{}).Error
}

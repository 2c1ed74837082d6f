package datastore

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// Attributes is the JSON column holding a record's properties. It is written
// as text so that both jsonb (postgres) and untyped (sqlite) columns accept it.
type Attributes []byte

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return string(a), nil
}

func (a *Attributes) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = nil
	case []byte:
		*a = append((*a)[:0], v...)
	case string:
		*a = Attributes(v)
	default:
		return fmt.Errorf("failed to scan Attributes from %T", value)
	}
	return nil
}

// EntityRecord is the row layout of the entities table. Ids are unique across
// kinds; lookups always match on both columns.
type EntityRecord struct {
	ID         int64      `gorm:"primarykey;autoIncrement"`
	Kind       string     `gorm:"type:varchar(64);not null;index"`
	Attributes Attributes `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EntityRecord) TableName() string {
	return "entities"
}

var propertyName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GormStore keeps every kind in one table with the attribute map in a JSON
// column. Equality filters compare the attribute's text form.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the entities table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&EntityRecord{})
}

func (s *GormStore) Get(ctx context.Context, key Key) (*Entity, error) {
	if !key.valid() || key.Incomplete() {
		return nil, ErrInvalidKey
	}

	var record EntityRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND kind = ?", key.ID, key.Kind).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return record.entity()
}

func (s *GormStore) Put(ctx context.Context, e *Entity) (Key, error) {
	if e == nil || !e.Key.valid() {
		return Key{}, ErrInvalidKey
	}
	data, err := encodeProperties(e.Properties)
	if err != nil {
		return Key{}, fmt.Errorf("encode properties: %w", err)
	}

	db := s.db.WithContext(ctx)
	if e.Key.Incomplete() {
		record := EntityRecord{Kind: e.Key.Kind, Attributes: data}
		if err := db.Create(&record).Error; err != nil {
			return Key{}, fmt.Errorf("create %s: %w", e.Key.Kind, err)
		}
		return NewKey(record.Kind, record.ID), nil
	}

	result := db.Model(&EntityRecord{}).
		Where("id = ? AND kind = ?", e.Key.ID, e.Key.Kind).
		Updates(map[string]interface{}{
			"attributes": Attributes(data),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return Key{}, fmt.Errorf("update %s: %w", e.Key, result.Error)
	}
	if result.RowsAffected == 0 {
		record := EntityRecord{ID: e.Key.ID, Kind: e.Key.Kind, Attributes: data}
		if err := db.Create(&record).Error; err != nil {
			return Key{}, fmt.Errorf("insert %s: %w", e.Key, err)
		}
	}
	return e.Key, nil
}

func (s *GormStore) Delete(ctx context.Context, key Key) error {
	if !key.valid() {
		return ErrInvalidKey
	}
	err := s.db.WithContext(ctx).
		Where("id = ? AND kind = ?", key.ID, key.Kind).
		Delete(&EntityRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Query(ctx context.Context, q *Query) ([]*Entity, error) {
	query := s.db.WithContext(ctx).Model(&EntityRecord{}).Where("kind = ?", q.Kind)
	if q.Filter != nil {
		if !propertyName.MatchString(q.Filter.Property) {
			return nil, fmt.Errorf("datastore: invalid property name %q", q.Filter.Property)
		}
		clause := fmt.Sprintf("CAST(attributes->>'%s' AS TEXT) = ?", q.Filter.Property)
		query = query.Where(clause, Canonical(q.Filter.Value))
	}

	var records []EntityRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Kind, err)
	}

	entities := make([]*Entity, 0, len(records))
	for i := range records {
		e, err := records[i].entity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (s *GormStore) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *EntityRecord) entity() (*Entity, error) {
	props, err := decodeProperties(r.Attributes)
	if err != nil {
		return nil, err
	}
	return &Entity{Key: NewKey(r.Kind, r.ID), Properties: props}, nil
}

package history

import (
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormRepository stores records in MySQL.
type gormRepository struct {
	db *gorm.DB
}

// OpenGorm connects to MySQL with the given DSN and migrates the schema.
func OpenGorm(dsn string) (Repository, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) Create(rec *Record) error {
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.Create(rec).Error
}

func (r *gormRepository) Get(id string) (*Record, error) {
	var rec Record
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *gormRepository) List(f Filter) ([]Record, error) {
	q := r.db.Order("created_at desc")
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []Record
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/pagerank-analysis/pkg/errors"
	"github.com/pagerank-analysis/pkg/model"
)

// RunRepository defines the run-history operations.
type RunRepository interface {
	// SaveRun stores one computation result.
	SaveRun(ctx context.Context, res *model.Result) error

	// GetRunByUUID retrieves a run by its UUID.
	GetRunByUUID(ctx context.Context, uuid string) (*model.Result, error)

	// ListRecentRuns returns the most recent runs, newest first.
	ListRecentRuns(ctx context.Context, limit int) ([]*model.Result, error)
}

// GormRunRepository implements RunRepository on a gorm connection.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a repository over the given connection.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun stores one computation result.
func (r *GormRunRepository) SaveRun(ctx context.Context, res *model.Result) error {
	row, err := FromResult(res)
	if err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "encode run", err)
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "save run", err)
	}
	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, uuid string) (*model.Result, error) {
	var row RankRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", uuid).First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf(errors.CodeNotFound, "run %s not found", uuid)
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "load run", err)
	}
	return row.ToResult()
}

// ListRecentRuns returns the most recent runs, newest first.
func (r *GormRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*model.Result, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []RankRun
	err := r.db.WithContext(ctx).
		Order("create_time DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "list runs", err)
	}

	results := make([]*model.Result, 0, len(rows))
	for i := range rows {
		res, err := rows[i].ToResult()
		if err != nil {
			return nil, errors.Wrap(errors.CodeDatabaseError, "decode run", err)
		}
		results = append(results, res)
	}
	return results, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/repository"
	"gorm.io/gorm"
)

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *todoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).First(&todo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

func (r *todoRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Todo{}).Error
}

func (r *todoRepository) List(ctx context.Context, userID uuid.UUID, filter repository.TodoFilter) (*repository.TodoPage, error) {
	base := r.filtered(ctx, userID, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var todos []*domain.Todo
	err := base.Session(&gorm.Session{}).
		Order(orderClause(filter.SortBy)).
		Limit(filter.Limit).
		Offset(filter.Skip).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}

	return &repository.TodoPage{
		Items:   todos,
		Total:   total,
		Limit:   filter.Limit,
		Skip:    filter.Skip,
		HasMore: total > int64(filter.Skip+len(todos)),
	}, nil
}

// filtered builds the WHERE chain shared by the count and page queries. The
// user_id predicate is unconditional; the filter set can never widen it.
func (r *todoRepository) filtered(ctx context.Context, userID uuid.UUID, filter repository.TodoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", userID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date <= ?", *filter.DueBefore)
	}

	return q
}

func orderClause(sortBy string) string {
	switch sortBy {
	case "dueDate":
		return "due_date ASC, created_at DESC"
	case "priority":
		// high > medium > low, literally.
		return "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, created_at DESC"
	case "title":
		return "title ASC"
	case "completed":
		// Incomplete first.
		return "completed ASC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// Stats computes all four counts in one statement so they describe a single
// snapshot of the collection.
func (r *todoRepository) Stats(ctx context.Context, userID uuid.UUID) (*repository.TodoStats, error) {
	var stats repository.TodoStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                                                   AS total,
			COUNT(*) FILTER (WHERE completed)                          AS completed,
			COUNT(*) FILTER (WHERE NOT completed)                      AS pending,
			COUNT(*) FILTER (WHERE NOT completed AND due_date < NOW()) AS overdue
		FROM todos
		WHERE user_id = ?`, userID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *todoRepository) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&domain.Todo{})
	return res.RowsAffected, res.Error
}

func (r *todoRepository) BulkUpdate(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, update repository.BulkTodoUpdate) (int64, error) {
	if len(ids) == 0 || update.Empty() {
		return 0, nil
	}

	values := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Completed != nil {
		values["completed"] = *update.Completed
		// Batch updates bypass the BeforeSave hook, so the completed/
		// completedAt pair is maintained here. Rows that were already
		// completed keep their original completedAt.
		if *update.Completed {
			values["completed_at"] = gorm.Expr("CASE WHEN completed THEN completed_at ELSE NOW() END")
		} else {
			values["completed_at"] = nil
		}
	}
	if update.Priority != nil {
		values["priority"] = *update.Priority
	}
	if update.Category != nil {
		values["category"] = *update.Category
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(values)
	return res.RowsAffected, res.Error
}

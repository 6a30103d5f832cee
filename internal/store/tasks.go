package store

import (
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/google/uuid"
)

func (g *Gateway) CreateTask(t *model.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return g.db.Create(t).Error
}

func (g *Gateway) GetTask(id string) (*model.Task, error) {
	var t model.Task
	if err := g.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (g *Gateway) ListTasks() ([]model.Task, error) {
	var out []model.Task
	if err := g.db.Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DueTasks returns every enabled task whose next_fire_at is null or has
// already passed relative to now, as the Scheduler Worker's tick needs.
func (g *Gateway) DueTasks(now time.Time) ([]model.Task, error) {
	var out []model.Task
	err := g.db.Where("enabled = ?", true).
		Where("next_fire_at IS NULL OR next_fire_at <= ?", now).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) UpdateTaskFireTimes(id string, lastFireAt, nextFireAt time.Time) error {
	return g.db.Model(&model.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_fire_at": lastFireAt,
		"next_fire_at": nextFireAt,
	}).Error
}

func (g *Gateway) SetTaskEnabled(id string, enabled bool) error {
	return g.db.Model(&model.Task{}).Where("id = ?", id).Update("enabled", enabled).Error
}

func (g *Gateway) DeleteTask(id string) error {
	return g.db.Where("id = ?", id).Delete(&model.Task{}).Error
}

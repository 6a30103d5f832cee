package store

import (
	"fmt"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrJobCollision is returned by CreateJobIfNoLiveJob when a non-terminal job
// already exists for the task, per the start-contention rule.
var ErrJobCollision = fmt.Errorf("a non-terminal job already exists for this task")

var nonTerminalStatuses = []model.JobStatus{model.JobPending, model.JobRunning, model.JobCompressing}

// CreateJobIfNoLiveJob performs the check-then-insert inside a single
// serialized write, satisfying the "at most one non-terminal job per task"
// invariant without a separate uniqueness constraint race.
func (g *Gateway) CreateJobIfNoLiveJob(j *model.Job) error {
	if j.TaskID == nil {
		// Manual/restore jobs without a task reference are never collision
		// candidates — only scheduled and manually-triggered backups collide.
		return g.createJob(j)
	}

	return g.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Job{}).
			Where("task_id = ?", *j.TaskID).
			Where("status IN ?", nonTerminalStatuses).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrJobCollision
		}
		return createJobTx(tx, j)
	})
}

func (g *Gateway) createJob(j *model.Job) error {
	return createJobTx(g.db, j)
}

func createJobTx(tx *gorm.DB, j *model.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = model.JobPending
	}
	return tx.Create(j).Error
}

func (g *Gateway) GetJob(id string) (*model.Job, error) {
	var j model.Job
	if err := g.db.First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (g *Gateway) ListJobs() ([]model.Job, error) {
	var out []model.Job
	if err := g.db.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// HasLiveJobForTask reports whether taskID has a non-terminal job, as a
// read-only check outside the CreateJobIfNoLiveJob transaction.
func (g *Gateway) HasLiveJobForTask(taskID string) (bool, error) {
	var count int64
	err := g.db.Model(&model.Job{}).
		Where("task_id = ?", taskID).
		Where("status IN ?", nonTerminalStatuses).
		Count(&count).Error
	return count > 0, err
}

// TransitionJob persists a state-machine transition atomically: status plus
// whichever timestamp/progress/error fields apply. Every transition goes
// through this single chokepoint so "persisted before any downstream action
// observes the new state" holds by construction.
func (g *Gateway) TransitionJob(id string, fields map[string]interface{}) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var current model.Job
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if current.Status.Terminal() {
			return fmt.Errorf("%w: job %s is already in terminal state %s", model.ErrInternalInvariantViolation, id, current.Status)
		}
		return tx.Model(&model.Job{}).Where("id = ?", id).Updates(fields).Error
	})
}

func (g *Gateway) UpdateJobProgress(id string, percent int) error {
	return g.db.Model(&model.Job{}).
		Where("id = ?", id).
		Where("status NOT IN ?", []model.JobStatus{model.JobCompleted, model.JobFailed, model.JobCancelled}).
		Update("progress", percent).Error
}

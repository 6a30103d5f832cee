package store

import (
	"github.com/casparjones/rdumper/internal/model"
	"gorm.io/gorm"
)

// SaveTableProgressSnapshot replaces the persisted per-table rows for jobID
// with the current in-memory state. The orchestrator calls it once after
// preflight and then only when the Progress Parser reports a due write,
// never on every line.
func (g *Gateway) SaveTableProgressSnapshot(jobID string, rows []model.TableProgress) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&model.TableProgress{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (g *Gateway) TableProgressForJob(jobID string) ([]model.TableProgress, error) {
	var out []model.TableProgress
	if err := g.db.Where("job_id = ?", jobID).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

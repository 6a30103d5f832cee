package store

import (
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/google/uuid"
)

func (g *Gateway) CreateArtifact(a *model.Artifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return g.db.Create(a).Error
}

func (g *Gateway) GetArtifact(id string) (*model.Artifact, error) {
	var a model.Artifact
	if err := g.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (g *Gateway) ListArtifacts() ([]model.Artifact, error) {
	var out []model.Artifact
	if err := g.db.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ArtifactsForTaskOlderThan is the Backup Retention worker's query: every
// artifact owned by taskID created strictly before cutoff.
func (g *Gateway) ArtifactsForTaskOlderThan(taskID string, cutoff time.Time) ([]model.Artifact, error) {
	var out []model.Artifact
	err := g.db.Where("task_id = ?", taskID).Where("created_at < ?", cutoff).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) DeleteArtifact(id string) error {
	return g.db.Where("id = ?", id).Delete(&model.Artifact{}).Error
}

// UpsertArtifactFromScan inserts or replaces the lookup row for dirName,
// used by the rescan procedure to reconcile drift between the filesystem
// (authoritative) and the persisted index (derived).
func (g *Gateway) UpsertArtifactFromScan(a *model.Artifact) error {
	var existing model.Artifact
	err := g.db.Where("dir_name = ?", a.DirName).First(&existing).Error
	if err == nil {
		a.ID = existing.ID
		return g.db.Model(&existing).Updates(a).Error
	}
	return g.CreateArtifact(a)
}

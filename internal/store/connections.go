package store

import (
	"fmt"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/google/uuid"
)

func (g *Gateway) CreateConnection(c *model.DatabaseConnection) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastVerdict == "" {
		c.LastVerdict = model.VerdictUntested
	}
	return g.db.Create(c).Error
}

func (g *Gateway) GetConnection(id string) (*model.DatabaseConnection, error) {
	var c model.DatabaseConnection
	if err := g.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (g *Gateway) ListConnections() ([]model.DatabaseConnection, error) {
	var out []model.DatabaseConnection
	if err := g.db.Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) UpdateConnectionVerdict(id string, verdict model.ConnectionVerdict, at interface{}) error {
	return g.db.Model(&model.DatabaseConnection{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_verdict":    verdict,
		"last_verdict_at": at,
	}).Error
}

// DeleteConnection refuses deletion if any task still references the
// connection, per the data model's ownership rule.
func (g *Gateway) DeleteConnection(id string) error {
	var count int64
	if err := g.db.Model(&model.Task{}).Where("connection_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: connection %s still has %d task(s) attached", model.ErrInvalidConfiguration, id, count)
	}
	return g.db.Where("id = ?", id).Delete(&model.DatabaseConnection{}).Error
}

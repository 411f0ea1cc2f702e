package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FormDefinition tek bir form adımının yeniden kullanılabilir içeriğidir.
// Configuration, her biri benzersiz bir "key" taşıyan bileşen (component)
// ağacını tutar. İçeriği aynı olan iki FormDefinition restore sırasında
// birbiri yerine kullanılabilir kabul edilir.
type FormDefinition struct {
	BaseModel
	UUID          uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	Slug          string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name          string         `gorm:"type:varchar(150);not null"`
	InternalName  string         `gorm:"type:varchar(150)"`
	Configuration datatypes.JSON `gorm:"type:jsonb;not null"`
	// IsReusable true ise birden fazla Form aynı kaydı paylaşabilir;
	// sahiplik paylaşımlıdır, hiçbir form tek başına sahibi değildir.
	IsReusable bool `gorm:"default:false;index"`
}

// ConfigurationMap JSON sütununu çözülmüş haliyle döndürür.
func (fd *FormDefinition) ConfigurationMap() (map[string]any, error) {
	var cfg map[string]any
	if len(fd.Configuration) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(fd.Configuration, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FlattenedComponents bileşen ağacını derinlik öncelikli düzleştirir.
// İç içe layout bileşenlerinin (columns, fieldset vb.) "components"
// listeleri de gezilir; sonuç key sırasını korur.
func (fd *FormDefinition) FlattenedComponents() []map[string]any {
	cfg, err := fd.ConfigurationMap()
	if err != nil {
		return nil
	}
	var flat []map[string]any
	var walk func(components []any)
	walk = func(components []any) {
		for _, raw := range components {
			component, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if _, hasKey := component["key"]; hasKey {
				flat = append(flat, component)
			}
			if nested, ok := component["components"].([]any); ok {
				walk(nested)
			}
		}
	}
	if components, ok := cfg["components"].([]any); ok {
		walk(components)
	}
	return flat
}

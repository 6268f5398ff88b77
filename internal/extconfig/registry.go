// Package extconfig is the persistence-backed collaborator for the
// third verdict of §4.5's configuration evaluation: extended
// configurations the Agent itself supplies, registered under
// (system_id, config_report_id) for reuse on future associations, per
// §6 "Persistence of extended configurations".
package extconfig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

// Registry is the core's external collaborator for extended
// configurations. Implementations must provide their own thread-safety
// (§5): the fsm package may call Lookup/Register from multiple
// connection contexts concurrently.
type Registry interface {
	Lookup(ctx context.Context, systemID []byte, configReportID uint16) ([]codec.ConfigObject, bool, error)
	Register(ctx context.Context, systemID []byte, configReportID uint16, objects []codec.ConfigObject) error
}

// key is the canonical (system_id, config_report_id) encoding shared by
// the badger and gorm backends, so both address the same logical record
// the same way. The cache layer formats its own keys via
// cache.ExtConfigKey.
func key(systemID []byte, configReportID uint16) string {
	return fmt.Sprintf("%x:%04x", systemID, configReportID)
}

func marshalObjects(objects []codec.ConfigObject) ([]byte, error) {
	data, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("extconfig: marshal config objects: %w", err)
	}
	return data, nil
}

func unmarshalObjects(data []byte) ([]codec.ConfigObject, error) {
	var objects []codec.ConfigObject
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("extconfig: unmarshal config objects: %w", err)
	}
	return objects, nil
}

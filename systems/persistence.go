package systems

import (
	"encoding/json"

	"github.com/quasilyte/gdata"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/logging"
)

const viewerStateKey = "viewer"

// SavedViewerState is what the viewer remembers between runs.
type SavedViewerState struct {
	LastLevel string  `json:"lastLevel"`
	Zoom      float64 `json:"zoom"`
}

// Persistence stores viewer state with gdata. A Persistence that failed to
// open keeps working and stores nothing.
type Persistence struct {
	manager *gdata.Manager
	log     *zap.Logger
}

// OpenPersistence opens the data directory of appName.
func OpenPersistence(appName string, logger *zap.Logger) *Persistence {
	p := &Persistence{log: logging.OrNop(logger)}
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		p.log.Warn("could not initialize persistence", zap.Error(err))
		return p
	}
	p.manager = m
	return p
}

// Enabled reports whether state is actually stored.
func (p *Persistence) Enabled() bool { return p != nil && p.manager != nil }

// LoadViewerState returns the saved state, or nil when there is none.
func (p *Persistence) LoadViewerState() (*SavedViewerState, error) {
	if !p.Enabled() {
		return nil, nil
	}

	data, err := p.manager.LoadItem(viewerStateKey)
	if err != nil {
		p.log.Warn("could not load viewer state", zap.Error(err))
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var state SavedViewerState
	if err := json.Unmarshal(data, &state); err != nil {
		p.log.Warn("could not parse viewer state", zap.Error(err))
		return nil, err
	}
	return &state, nil
}

// SaveViewerState writes s.
func (p *Persistence) SaveViewerState(s SavedViewerState) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := p.manager.SaveItem(viewerStateKey, data); err != nil {
		p.log.Warn("could not save viewer state", zap.Error(err))
		return err
	}
	return nil
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"activitybot/internal/models"
)

type memberKey struct {
	userID  string
	guildID string
}

// Memory is a mutex-guarded map backend. Useful for tests and throwaway
// runs; nothing survives process exit.
type Memory struct {
	mu      sync.Mutex
	records map[memberKey]*models.ActivityRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[memberKey]*models.ActivityRecord)}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) record(userID, guildID string) *models.ActivityRecord {
	k := memberKey{userID: userID, guildID: guildID}
	rec, ok := m.records[k]
	if !ok {
		rec = &models.ActivityRecord{UserID: userID, GuildID: guildID}
		m.records[k] = rec
	}
	return rec
}

// AddMessages implements Store.
func (m *Memory) AddMessages(_ context.Context, userID, guildID string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(userID, guildID)
	rec.MessageCount += n
	rec.LastUpdated = time.Now().UTC()
	return nil
}

// AddVoiceSeconds implements Store.
func (m *Memory) AddVoiceSeconds(_ context.Context, userID, guildID string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(userID, guildID)
	rec.VoiceSeconds += n
	rec.LastUpdated = time.Now().UTC()
	return nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, userID, guildID string) (*models.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[memberKey{userID: userID, guildID: guildID}]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *rec
	return &snapshot, nil
}

// Top implements Store.
func (m *Memory) Top(_ context.Context, guildID string, metric Metric, limit int) ([]models.MemberTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var totals []models.MemberTotal
	for k, rec := range m.records {
		if k.guildID != guildID {
			continue
		}
		total := rec.MessageCount
		if metric == MetricVoice {
			total = rec.VoiceSeconds
		}
		totals = append(totals, models.MemberTotal{UserID: k.userID, Total: total})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].UserID < totals[j].UserID
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

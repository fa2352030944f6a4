package speaker

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

type fakeProfiles struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]*entities.VoiceProfile
	failOnName  map[string]error
	emailErr    error
	emailLookup [][]string
	creates     int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		byID:       make(map[uuid.UUID]*entities.VoiceProfile),
		failOnName: make(map[string]error),
	}
}

func (f *fakeProfiles) FindByName(_ context.Context, org uuid.UUID, name string) (*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOnName[name]; ok {
		return nil, err
	}
	for _, p := range f.byID {
		if p.OrganizationID == org && strings.EqualFold(p.DisplayName, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) FindByID(_ context.Context, id uuid.UUID) (*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, entities.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(_ context.Context, p *entities.VoiceProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	f.creates++
	return nil
}

func (f *fakeProfiles) RecordSample(_ context.Context, id, meetingID uuid.UUID, durationMs int64) (*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, entities.ErrProfileNotFound
	}
	m := meetingID
	p.SampleCount++
	p.TotalDurationMs += durationMs
	p.LastMeetingID = &m
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) FindByEmails(_ context.Context, org uuid.UUID, emails []string) ([]*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailLookup = append(f.emailLookup, emails)
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	var out []*entities.VoiceProfile
	for _, p := range f.byID {
		if p.OrganizationID != org || p.Email == nil {
			continue
		}
		for _, e := range emails {
			if strings.EqualFold(*p.Email, e) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProfiles) Merge(_ context.Context, keepID, mergeID uuid.UUID) (*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep, ok := f.byID[keepID]
	victim, ok2 := f.byID[mergeID]
	if !ok || !ok2 {
		return nil, entities.ErrProfileNotFound
	}
	keep.Absorb(victim)
	delete(f.byID, mergeID)
	cp := *keep
	return &cp, nil
}

func (f *fakeProfiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeMatches struct {
	mu   sync.Mutex
	rows map[string]*entities.SpeakerMatch
	err  error
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{rows: make(map[string]*entities.SpeakerMatch)}
}

func (f *fakeMatches) Upsert(_ context.Context, m *entities.SpeakerMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *m
	f.rows[m.MeetingID.String()+"|"+m.SpeakerLabel] = &cp
	return nil
}

func (f *fakeMatches) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*entities.SpeakerMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.SpeakerMatch
	for _, m := range f.rows {
		if m.MeetingID == meetingID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePatterns struct {
	stored   map[uuid.UUID][]*entities.NamePattern
	lists    int
	replaces int
}

func newFakePatterns() *fakePatterns {
	return &fakePatterns{stored: make(map[uuid.UUID][]*entities.NamePattern)}
}

func (f *fakePatterns) ListByOrganization(_ context.Context, org uuid.UUID) ([]*entities.NamePattern, error) {
	f.lists++
	return f.stored[org], nil
}

func (f *fakePatterns) Replace(_ context.Context, org uuid.UUID, patterns []*entities.NamePattern) error {
	f.replaces++
	f.stored[org] = patterns
	return nil
}

type fakeCache struct {
	items       map[uuid.UUID][]*entities.NamePattern
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[uuid.UUID][]*entities.NamePattern)}
}

func (c *fakeCache) GetPatterns(_ context.Context, org uuid.UUID) ([]*entities.NamePattern, bool, error) {
	p, ok := c.items[org]
	return p, ok, nil
}

func (c *fakeCache) SetPatterns(_ context.Context, org uuid.UUID, patterns []*entities.NamePattern) error {
	c.items[org] = patterns
	return nil
}

func (c *fakeCache) InvalidatePatterns(_ context.Context, org uuid.UUID) error {
	delete(c.items, org)
	c.invalidated = append(c.invalidated, org)
	return nil
}

var errStoreDown = errors.New("identity store unavailable")

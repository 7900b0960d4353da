package application_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/accessvault/internal/adapter/driven/aesgcm"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/policy"
)

// --- Mock implementations ---

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time   { return c.now }
func (c *fakeClock) Today() time.Time { return model.Date(c.now) }

type fakeUsers struct {
	byEmail map[string]model.User
	err     error
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byEmail: map[string]model.User{}}
	for _, u := range users {
		f.byEmail[strings.ToLower(u.Email)] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// fakeCredStore is an in-memory CredentialStore with the same filtering
// semantics as the SQLite adapter.
type fakeCredStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]model.Credential
	saves   int
	saveErr error
	findErr error
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{byID: map[int64]model.Credential{}}
}

func (f *fakeCredStore) FindActiveByID(_ context.Context, id int64) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.byID[id]
	if !ok || !c.Active {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeCredStore) Save(_ context.Context, cred model.Credential, actor string) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return model.Credential{}, f.saveErr
	}
	f.saves++
	if cred.ID == 0 {
		f.nextID++
		cred.ID = f.nextID
		cred.Audit.CreatedBy = actor
	} else {
		prev, ok := f.byID[cred.ID]
		if !ok {
			return model.Credential{}, model.ErrNotFound
		}
		cred.Owner = prev.Owner
		cred.Audit.CreatedBy = prev.Audit.CreatedBy
	}
	cred.Audit.UpdatedBy = actor
	f.byID[cred.ID] = cred
	return cred, nil
}

func (f *fakeCredStore) filter(keep func(model.Credential) bool) ([]model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []model.Credential
	for _, c := range f.byID {
		if c.Active && keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b model.Credential) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeCredStore) FindVisibleFor(_ context.Context, email string) ([]model.Credential, error) {
	return f.filter(func(c model.Credential) bool {
		return c.IsOwnedBy(email) || c.Visibility == model.VisibilityShared
	})
}

func (f *fakeCredStore) FindByVisibility(_ context.Context, v model.Visibility) ([]model.Credential, error) {
	return f.filter(func(c model.Credential) bool { return c.Visibility == v })
}

func (f *fakeCredStore) FindOwnedBy(_ context.Context, email string, v model.Visibility) ([]model.Credential, error) {
	return f.filter(func(c model.Credential) bool { return c.IsOwnedBy(email) && c.Visibility == v })
}

func (f *fakeCredStore) FindExpiringBy(_ context.Context, date time.Time) ([]model.Credential, error) {
	return f.filter(func(c model.Credential) bool {
		return c.ExpiresOn != nil && !c.ExpiresOn.After(model.Date(date))
	})
}

func (f *fakeCredStore) FindByTitleSubstringVisibleFor(_ context.Context, text, email string) ([]model.Credential, error) {
	return f.filter(func(c model.Credential) bool {
		return (c.IsOwnedBy(email) || c.Visibility == model.VisibilityShared) &&
			strings.Contains(strings.ToLower(c.Title), strings.ToLower(text))
	})
}

// put stores c directly, bypassing the service.
func (f *fakeCredStore) put(c model.Credential) model.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.byID[c.ID] = c
	return c
}

func (f *fakeCredStore) get(id int64) model.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type fakeAudit struct {
	mu     sync.Mutex
	events []model.AuditEvent
	err    error
}

func (f *fakeAudit) Record(_ context.Context, e model.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAudit) ListByCredential(_ context.Context, id int64) ([]model.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AuditEvent
	for _, e := range f.events {
		if e.CredentialID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type failingCipher struct {
	err error
}

func (c failingCipher) Encrypt(string) (string, error) { return "opaque", nil }
func (c failingCipher) Decrypt(string) (string, error) { return "", c.err }

type recordingMetrics struct {
	mu            sync.Mutex
	denied        []policy.Action
	revealed      int
	decryptFailed int
	auditFailed   int
	scans         int
	scanFailed    int
}

func (m *recordingMetrics) Denied(a policy.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = append(m.denied, a)
}

func (m *recordingMetrics) Revealed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revealed++
}

func (m *recordingMetrics) DecryptFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decryptFailed++
}

func (m *recordingMetrics) AuditFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditFailed++
}

func (m *recordingMetrics) ScanCompleted(int, int, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
}

func (m *recordingMetrics) ScanFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanFailed++
}

// --- Fixtures ---

var (
	errStoreDown = errors.New("store down")

	alice = model.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: model.RoleUser, Active: true}
	bob   = model.User{ID: 2, Name: "Bob", Email: "bob@example.com", Role: model.RoleUser, Active: true}
	root  = model.User{ID: 3, Name: "Root", Email: "root@example.com", Role: model.RoleAdmin, Active: true}
	gone  = model.User{ID: 4, Name: "Gone", Email: "gone@example.com", Role: model.RoleAdmin, Active: false}
)

func newTestCipher(t *testing.T) *aesgcm.Engine {
	t.Helper()
	e, err := aesgcm.New(bytes.Repeat([]byte{0x11}, aesgcm.KeySize))
	require.NoError(t, err)
	return e
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

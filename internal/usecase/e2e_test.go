package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/example/face-gate/internal/detect"
	"github.com/example/face-gate/internal/registry"
)

// memoryRegistry enforces the same uniqueness and atomicity rules as
// the real store, so full workflow sequences can run in-process.
type memoryRegistry struct {
	mu           sync.Mutex
	nextID       uint
	byLogin      map[string]registry.Enrollment
	usernames    map[string]uint
	skipPrecheck bool
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{
		byLogin:   map[string]registry.Enrollment{},
		usernames: map[string]uint{},
	}
}

func (m *memoryRegistry) UsernameTaken(_ context.Context, username string) (bool, error) {
	if m.skipPrecheck {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, taken := m.usernames[username]
	return taken, nil
}

func (m *memoryRegistry) CreateEnrollment(_ context.Context, username, blobKey string) (*registry.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usernames[username]; taken {
		return nil, registry.ErrDuplicateUsername
	}
	m.nextID++
	enrollment := registry.Enrollment{
		ID:         m.nextID,
		IdentityID: m.nextID,
		LoginID:    registry.FormatLoginID(m.nextID),
		BlobKey:    blobKey,
		Identity:   registry.Identity{ID: m.nextID, Username: username},
	}
	m.usernames[username] = m.nextID
	m.byLogin[enrollment.LoginID] = enrollment
	return &enrollment, nil
}

func (m *memoryRegistry) FindByLoginID(_ context.Context, loginID string) (*registry.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	enrollment, ok := m.byLogin[loginID]
	if !ok {
		return nil, registry.ErrNotFound
	}
	found := enrollment
	return &found, nil
}

func (m *memoryRegistry) DeleteIdentity(_ context.Context, identityID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for loginID, enrollment := range m.byLogin {
		if enrollment.IdentityID == identityID {
			delete(m.byLogin, loginID)
			delete(m.usernames, enrollment.Identity.Username)
		}
	}
	return nil
}

func (m *memoryRegistry) identityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.usernames)
}

func TestEnrollVerifyRevokeLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := newMemoryRegistry()
	blobs := newMemoryBlobStore()
	uc := newTestUseCase(reg, blobs, &stubLocator{boxes: []detect.Box{testFaceBox}})

	enrollFrame := radialFrame()

	out := uc.Enroll(ctx, "alice", encodePayload(t, enrollFrame))
	if !out.Success() {
		t.Fatalf("enroll failed: %s: %s", out.Code, out.Message)
	}
	if out.LoginID != "U0001" {
		t.Fatalf("expected login id U0001, got %q", out.LoginID)
	}

	out = uc.Verify(ctx, "alice", "U0001", encodePayload(t, enrollFrame))
	if !out.Success() {
		t.Fatalf("verify with enrolled frame failed: %s: %s", out.Code, out.Message)
	}

	out = uc.Verify(ctx, "alice", "U0001", encodePayload(t, darkFrame()))
	if out.Code != CodeFaceMismatch {
		t.Fatalf("expected face_mismatch for a different face, got %s", out.Code)
	}

	out = uc.Verify(ctx, "bob", "U0001", encodePayload(t, enrollFrame))
	if out.Code != CodeIdentityMismatch {
		t.Fatalf("expected identity_mismatch for wrong username, got %s", out.Code)
	}

	out = uc.Revoke(ctx, "alice", "U0001")
	if !out.Success() {
		t.Fatalf("revoke failed: %s: %s", out.Code, out.Message)
	}
	if blobs.size() != 0 {
		t.Fatalf("expected stored crop to be gone after revocation, got %d blobs", blobs.size())
	}

	out = uc.Verify(ctx, "alice", "U0001", encodePayload(t, enrollFrame))
	if out.Code != CodeUnknownLoginID {
		t.Fatalf("expected unknown_login_id after revocation, got %s", out.Code)
	}
}

func TestConcurrentEnrollmentsSameUsername(t *testing.T) {
	ctx := context.Background()
	reg := newMemoryRegistry()
	// Blind the advisory pre-check so both enrollments reach the
	// store's constraint, simulating the check-then-create race.
	reg.skipPrecheck = true
	blobs := newMemoryBlobStore()
	uc := newTestUseCase(reg, blobs, &stubLocator{boxes: []detect.Box{testFaceBox}})

	payload := encodePayload(t, radialFrame())

	outcomes := make([]*Outcome, 2)
	var wg sync.WaitGroup
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = uc.Enroll(ctx, "alice", payload)
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, out := range outcomes {
		switch {
		case out.Success():
			successes++
		case out.Code == CodeDuplicateUsername:
			duplicates++
		default:
			t.Fatalf("unexpected outcome %s: %s", out.Code, out.Message)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("expected exactly one winner and one duplicate, got %d/%d", successes, duplicates)
	}

	if reg.identityCount() != 1 {
		t.Fatalf("expected one identity, got %d", reg.identityCount())
	}
	if blobs.size() != 1 {
		t.Fatalf("expected the losing crop to be cleaned up, got %d blobs", blobs.size())
	}
}

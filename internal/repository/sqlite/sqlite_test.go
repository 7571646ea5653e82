package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleReport() *recon.Report {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	share := domain.ShareRef{Host: "srv1.example.org", Name: "Data"}
	return &recon.Report{
		RunID:    "3f1c2a9e-0000-4000-8000-000000000001",
		Started:  started,
		Finished: started.Add(42 * time.Second),
		Domains: []recon.DomainResult{
			{
				Domain: domain.NewDomain("", "example.org"),
				Server: domain.SelectedServer{Address: "dc2.example.org"},
				Hosts:  []string{"srv1.example.org", "old.example.org"},
			},
			{
				Domain: domain.NewDomain("lab", "example.org"),
				Err:    domain.ErrNoReachableServer,
			},
		},
		Hosts: []domain.HostResult{
			{Host: "srv1.example.org", Outcome: domain.OutcomeReachableWithShares, Shares: []string{"Data"}, Duration: time.Second},
			{Host: "old.example.org", Outcome: domain.OutcomeUnreachable, Detail: "System error 53 has occurred."},
		},
		Records: []domain.PermissionRecord{
			domain.NewPermissionRecord(share, domain.ACE{Principal: "Everyone", Rights: "Read", AccessType: "Allow", InheritanceFlags: "None", PropagationFlags: "None"}),
			domain.NewPermissionRecord(share, domain.ACE{Principal: "BUILTIN\\Administrators", Rights: "FullControl", AccessType: "Allow", InheritanceFlags: "None", PropagationFlags: "None", IsInherited: true}),
		},
	}
}

func TestRepository_SaveReport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveReport(ctx, sampleReport()))

	records, err := repo.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "BUILTIN\\Administrators", records[0].Principal, "ordered by path then principal")
	assert.True(t, records[0].IsInherited)
	assert.Equal(t, `\\srv1.example.org\Data`, records[1].Path)
	assert.Equal(t, "Data", records[1].Share)

	counts, err := repo.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.OutcomeReachableWithShares])
	assert.Equal(t, 1, counts[domain.OutcomeUnreachable])

	var domainErr string
	require.NoError(t, repo.db.QueryRow(`SELECT error FROM domains WHERE position = 1`).Scan(&domainErr))
	assert.Equal(t, domain.ErrNoReachableServer.Error(), domainErr)
}

func TestRepository_DuplicateRunRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveReport(ctx, sampleReport()))
	err := repo.SaveReport(ctx, sampleReport())
	require.Error(t, err)

	records, err := repo.Permissions(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2, "failed save leaves no partial rows")
}

func TestRepository_FileReplacesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	ctx := context.Background()

	repo, err := New(path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveReport(ctx, sampleReport()))
	require.NoError(t, repo.Close())

	repo, err = New(path)
	require.NoError(t, err)
	defer repo.Close()

	records, err := repo.Permissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRepository_EmptyReport(t *testing.T) {
	repo := newTestRepo(t)
	report := &recon.Report{RunID: "empty", Started: time.Now(), Finished: time.Now()}

	require.NoError(t, repo.SaveReport(context.Background(), report))
	records, err := repo.Permissions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHelpers(t *testing.T) {
	assert.False(t, stringToNull("").Valid)
	assert.Equal(t, "x", stringToNull("x").String)
	assert.False(t, errToNull(nil).Valid)
	assert.Equal(t, "boom", errToNull(errors.New("boom")).String)
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
	assert.Equal(t, int64(1500), millis(1500*time.Millisecond))
}

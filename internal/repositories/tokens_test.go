package repositories

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/entities"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokensDbContext(t *testing.T) *DbContext {
	t.Helper()

	db, err := NewTokensDbContext(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Tokens_ReissueInsideFailedTransaction_ShouldKeepNewPair(t *testing.T) {
	ctx := context.Background()
	store := newTestDbContext(t)
	tokensDB := newTestTokensDbContext(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":1209600}`))
	}))
	defer server.Close()

	oauth := hh.NewOAuthTokens(NewCachedTokens(NewTokensRepository(tokensDB.DB)), server.URL, "", "")
	require.NoError(t, oauth.Seed(ctx, "old-access", "old-refresh"))

	vacancies := NewVacanciesRepository(store.DB)
	err := store.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, vacancies.Save(ctx, "100", []byte(`{}`)))
		require.NoError(t, oauth.Reissue(ctx))
		return &hh.RequestError{StatusCode: http.StatusNotFound}
	})
	require.Error(t, err)

	count, err := vacancies.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, err := NewTokensRepository(tokensDB.DB).Load(ctx, "hh")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "new-access", stored.AccessToken)
	assert.Equal(t, "new-refresh", stored.RefreshToken)
}

func Test_Transaction_WhenLockedByAnotherWriter_ShouldReturnStoreBusy(t *testing.T) {
	ctx := context.Background()
	db, err := NewDbContext(filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(50)")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	vacancies := NewVacanciesRepository(db.DB)
	locked := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = db.Transaction(ctx, func(ctx context.Context) error {
			if err := vacancies.Save(ctx, "100", []byte(`{}`)); err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	err = db.Transaction(ctx, func(ctx context.Context) error {
		return vacancies.Save(ctx, "200", []byte(`{}`))
	})
	close(release)
	wg.Wait()

	assert.ErrorIs(t, err, entities.ErrStoreBusy)

	require.NoError(t, db.Transaction(ctx, func(ctx context.Context) error {
		return vacancies.Save(ctx, "200", []byte(`{}`))
	}))
}

func Test_DbContext_ShouldNotLogMissingRecords(t *testing.T) {
	ctx := context.Background()
	db := newTestDbContext(t)

	hook := logtest.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	issue, err := NewIssuesRepository(db.DB).GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, issue)
	for _, entry := range hook.AllEntries() {
		assert.NotContains(t, entry.Message, "record not found")
	}

	require.Error(t, db.DB.Exec("SELECT * FROM missing_table").Error)
	logged := false
	for _, entry := range hook.AllEntries() {
		logged = logged || strings.Contains(entry.Message, "missing_table")
	}
	assert.True(t, logged)
}

package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightcafe/promobot/internal/config"
	"github.com/nightcafe/promobot/internal/domain"
	"github.com/nightcafe/promobot/internal/service"
)

// fakeStore is an in-memory PromoStore that enforces the same constraints as
// the real table: unique code, non-empty issuee, conditional mark-used.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string]*domain.PromoCode
	insertErr error // forced error for every insert
	inserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*domain.PromoCode)}
}

func (f *fakeStore) Exists(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[code]
	return ok, nil
}

func (f *fakeStore) Insert(ctx context.Context, code, discountValue, issuedTo string, now time.Time) (*domain.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if _, ok := f.rows[code]; ok {
		return nil, domain.ErrDuplicateCode
	}
	if issuedTo == "" {
		return nil, domain.ErrMissingField
	}
	pc := &domain.PromoCode{
		ID:            uuid.New(),
		Code:          code,
		DiscountValue: discountValue,
		CreatedAt:     now,
		IssuedTo:      issuedTo,
		IssuedAt:      now,
	}
	f.rows[code] = pc
	return clone(pc), nil
}

func (f *fakeStore) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pc, ok := f.rows[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	return clone(pc), nil
}

func (f *fakeStore) FindByIssuee(ctx context.Context, identity string) (*domain.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pc := range f.rows {
		if pc.IssuedTo == identity {
			return clone(pc), nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (f *fakeStore) MarkUsed(ctx context.Context, code string, usedAt time.Time, usedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pc, ok := f.rows[code]
	if !ok || pc.IsUsed {
		return false, nil
	}
	pc.IsUsed = true
	pc.UsedAt = &usedAt
	pc.UsedBy = &usedBy
	return true, nil
}

func (f *fakeStore) Counts(ctx context.Context) (domain.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Counts{Total: int64(len(f.rows))}
	for _, pc := range f.rows {
		if pc.IssuedTo != "" {
			c.Issued++
		}
		if pc.IsUsed {
			c.Used++
		}
	}
	return c, nil
}

func clone(pc *domain.PromoCode) *domain.PromoCode {
	cp := *pc
	return &cp
}

func testConfig() *config.Config {
	return &config.Config{
		CodePrefix:       "DC",
		CodeLength:       8,
		DiscountTemplate: "10%",
	}
}

func TestIssueCodeFormat(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	pc, err := svc.Issue(context.Background(), "@alice")
	require.NoError(t, err)

	assert.Len(t, pc.Code, len("DC")+8)
	assert.True(t, strings.HasPrefix(pc.Code, "DC"))
	for _, r := range pc.Code[len("DC"):] {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
	}
	assert.Equal(t, "10%", pc.DiscountValue)
	assert.Equal(t, "@alice", pc.IssuedTo)
	assert.False(t, pc.IsUsed)
	assert.Nil(t, pc.UsedAt)
	assert.Nil(t, pc.UsedBy)
}

func TestIssueOnePerIdentity(t *testing.T) {
	store := newFakeStore()
	svc := service.NewPromoService(store, testConfig())

	first, err := svc.Issue(context.Background(), "@bob")
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), "@bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyIssued)
	assert.Len(t, store.rows, 1)

	got, err := store.FindByCode(context.Background(), first.Code)
	require.NoError(t, err)
	assert.Equal(t, "@bob", got.IssuedTo)
}

func TestIssueRejectsEmptyIdentity(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	_, err := svc.Issue(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestIssueConcurrentCodesAreUnique(t *testing.T) {
	store := newFakeStore()
	svc := service.NewPromoService(store, testConfig())

	const n = 50
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pc, err := svc.Issue(context.Background(), "@user"+string(rune('A'+i%26))+string(rune('a'+i/26)))
			if assert.NoError(t, err) {
				codes <- pc.Code
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
}

func TestIssueExhaustsRetryBound(t *testing.T) {
	store := newFakeStore()
	store.insertErr = domain.ErrDuplicateCode
	svc := service.NewPromoService(store, testConfig())

	_, err := svc.Issue(context.Background(), "@carol")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, config.MaxGenerateAttempts, store.inserts)
	assert.Empty(t, store.rows)
}

func TestIssueDoesNotRetryFatalErrors(t *testing.T) {
	store := newFakeStore()
	store.insertErr = domain.ErrMissingField
	svc := service.NewPromoService(store, testConfig())

	_, err := svc.Issue(context.Background(), "@dave")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 1, store.inserts)
	assert.Empty(t, store.rows)
}

func TestRedeemIsSingleUse(t *testing.T) {
	store := newFakeStore()
	svc := service.NewPromoService(store, testConfig())

	issued, err := svc.Issue(context.Background(), "@erin")
	require.NoError(t, err)

	redeemed, err := svc.Redeem(context.Background(), issued.Code, "@staff")
	require.NoError(t, err)
	assert.Equal(t, "10%", redeemed.DiscountValue)
	assert.True(t, redeemed.IsUsed)
	require.NotNil(t, redeemed.UsedBy)
	assert.Equal(t, "@staff", *redeemed.UsedBy)

	firstUsedAt := *redeemed.UsedAt
	firstUsedBy := *redeemed.UsedBy

	_, err = svc.Redeem(context.Background(), issued.Code, "@other")
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)

	// Second attempt must not touch the original redemption record
	got, err := store.FindByCode(context.Background(), issued.Code)
	require.NoError(t, err)
	assert.Equal(t, firstUsedAt, *got.UsedAt)
	assert.Equal(t, firstUsedBy, *got.UsedBy)
}

func TestRedeemNormalizesInput(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	issued, err := svc.Issue(context.Background(), "@frank")
	require.NoError(t, err)

	redeemed, err := svc.Redeem(context.Background(), "  "+strings.ToLower(issued.Code)+" ", "@staff")
	require.NoError(t, err)
	assert.Equal(t, issued.Code, redeemed.Code)
}

func TestRedeemUnknownCode(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	_, err := svc.Redeem(context.Background(), "DCXXXXXXXX", "@staff")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestRedeemCodeWithoutIssuee(t *testing.T) {
	store := newFakeStore()
	// Seed a row that bypassed the insert constraint
	store.rows["DCORPHAN01"] = &domain.PromoCode{
		ID:            uuid.New(),
		Code:          "DCORPHAN01",
		DiscountValue: "10%",
		CreatedAt:     time.Now(),
	}
	svc := service.NewPromoService(store, testConfig())

	_, err := svc.Redeem(context.Background(), "DCORPHAN01", "@staff")
	assert.ErrorIs(t, err, domain.ErrNotIssued)
}

func TestRedeemConcurrentRace(t *testing.T) {
	store := newFakeStore()
	svc := service.NewPromoService(store, testConfig())

	issued, err := svc.Issue(context.Background(), "@grace")
	require.NoError(t, err)

	const n = 8
	results := make(chan error, n)
	var start sync.WaitGroup
	start.Add(1)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			_, err := svc.Redeem(context.Background(), issued.Code, "@staff")
			results <- err
		}()
	}
	start.Done()
	wg.Wait()
	close(results)

	successes := 0
	alreadyUsed := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
			alreadyUsed++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, alreadyUsed)
}

func TestHasReceivedCode(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	received, err := svc.HasReceivedCode(context.Background(), "@henry")
	require.NoError(t, err)
	assert.False(t, received)

	_, err = svc.Issue(context.Background(), "@henry")
	require.NoError(t, err)

	received, err = svc.HasReceivedCode(context.Background(), "@henry")
	require.NoError(t, err)
	assert.True(t, received)
}

func TestStatsRollup(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	var codes []string
	for _, identity := range []string{"@u1", "@u2", "@u3"} {
		pc, err := svc.Issue(context.Background(), identity)
		require.NoError(t, err)
		codes = append(codes, pc.Code)
	}

	_, err := svc.Redeem(context.Background(), codes[0], "@staff")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Issued)
	assert.Equal(t, int64(1), stats.Used)
	assert.Equal(t, int64(2), stats.Active)
}

func TestLooksLikeCode(t *testing.T) {
	svc := service.NewPromoService(newFakeStore(), testConfig())

	assert.True(t, svc.LooksLikeCode("DCABC12345"))
	assert.True(t, svc.LooksLikeCode("DC1"))          // prefix match
	assert.True(t, svc.LooksLikeCode("XYZABC1234"))   // exact length
	assert.False(t, svc.LooksLikeCode("hello there")) // neither
}

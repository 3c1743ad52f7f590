package channel

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"discord-lists/database"
	"discord-lists/models"
)

const testBaseURL = "https://memex.social/c/"

func makeID(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}

var (
	missingGuildID     = makeID("gld", 99)
	missingChannelID   = makeID("chl", 99)
	missingChannelName = "test"
)

type testContext struct {
	store   *database.Store
	manager *Manager
}

func setupTestContext(t *testing.T) *testContext {
	t.Helper()
	store, err := database.InitDB(context.Background(), models.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "lists.db"),
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &testContext{
		store:   store,
		manager: NewManager(store, NewBaseURLFormatter(testBaseURL), nil),
	}
}

// seedBinding inserts a binding as if the channel had been enabled before.
func (tc *testContext) seedBinding(t *testing.T, guildID, channelID, name string, enabled bool) *models.ChannelBinding {
	t.Helper()
	binding := &models.ChannelBinding{GuildID: guildID, ChannelID: channelID, ChannelName: name, Enabled: enabled}
	list := &models.SharedList{Creator: models.DiscordListUserID, Title: name}
	if err := tc.store.CreateBoundList(context.Background(), list, binding); err != nil {
		t.Fatalf("seed binding: %v", err)
	}
	return binding
}

func (tc *testContext) mustFindBinding(t *testing.T, guildID, channelID string) *models.ChannelBinding {
	t.Helper()
	b, err := tc.store.FindBinding(context.Background(), guildID, channelID)
	if err != nil {
		t.Fatalf("FindBinding: %v", err)
	}
	if b == nil {
		t.Fatalf("no binding for %s/%s", guildID, channelID)
	}
	return b
}

func TestEnableChannelCreatesListAndBinding(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	res, err := tc.manager.EnableChannel(ctx, missingGuildID, missingChannelID, missingChannelName)
	if err != nil {
		t.Fatalf("EnableChannel: %v", err)
	}
	if !res.Changed {
		t.Errorf("Changed = false, want true")
	}

	b := tc.mustFindBinding(t, missingGuildID, missingChannelID)
	if !b.Enabled || b.ChannelName != missingChannelName {
		t.Errorf("unexpected binding %+v", b)
	}
	if want := testBaseURL + fmt.Sprint(b.SharedList); res.MemexSocialLink != want {
		t.Errorf("link = %q, want %q", res.MemexSocialLink, want)
	}

	lists, err := tc.store.FindLists(ctx, []int64{b.SharedList})
	if err != nil {
		t.Fatalf("FindLists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("got %d lists, want 1", len(lists))
	}
	l := lists[0]
	if l.Creator != models.DiscordListUserID || l.Title != missingChannelName || l.Description != nil {
		t.Errorf("unexpected list %+v", l)
	}
	if l.CreatedWhen.IsZero() || l.UpdatedWhen.IsZero() {
		t.Errorf("timestamps not set: %+v", l)
	}
}

func TestEnableChannelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	first, err := tc.manager.EnableChannel(ctx, "g", "c", "name")
	if err != nil {
		t.Fatal(err)
	}
	second, err := tc.manager.EnableChannel(ctx, "g", "c", "name")
	if err != nil {
		t.Fatal(err)
	}

	if !first.Changed || second.Changed {
		t.Errorf("changed = (%v, %v), want (true, false)", first.Changed, second.Changed)
	}
	if first.MemexSocialLink != second.MemexSocialLink {
		t.Errorf("links differ: %q vs %q", first.MemexSocialLink, second.MemexSocialLink)
	}

	enabled, err := tc.store.FindEnabledBindings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 1 {
		t.Errorf("got %d bindings, want 1", len(enabled))
	}
}

func TestEnableExistingDisabledChannel(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)
	seeded := tc.seedBinding(t, "gld-1", "chl-1", "default", false)

	res, err := tc.manager.EnableChannel(ctx, "gld-1", "chl-1", "default")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Errorf("Changed = false, want true")
	}
	if want := testBaseURL + fmt.Sprint(seeded.SharedList); res.MemexSocialLink != want {
		t.Errorf("link = %q, want %q", res.MemexSocialLink, want)
	}
	b := tc.mustFindBinding(t, "gld-1", "chl-1")
	if !b.Enabled || b.ID != seeded.ID || b.SharedList != seeded.SharedList {
		t.Errorf("binding = %+v, seeded %+v", b, seeded)
	}

	// Calling it again shouldn't result in any changes.
	res, err = tc.manager.EnableChannel(ctx, "gld-1", "chl-1", "default")
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Errorf("second enable Changed = true, want false")
	}
	if got := tc.mustFindBinding(t, "gld-1", "chl-1"); *got != *b {
		t.Errorf("binding mutated: %+v -> %+v", b, got)
	}
}

func TestEnableKeepsOriginalChannelName(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	if _, err := tc.manager.EnableChannel(ctx, "g", "c", "old-name"); err != nil {
		t.Fatal(err)
	}
	if _, err := tc.manager.DisableChannel(ctx, "g", "c"); err != nil {
		t.Fatal(err)
	}
	if _, err := tc.manager.EnableChannel(ctx, "g", "c", "new-name"); err != nil {
		t.Fatal(err)
	}

	if b := tc.mustFindBinding(t, "g", "c"); b.ChannelName != "old-name" {
		t.Errorf("channel name = %q, want it kept from creation", b.ChannelName)
	}
}

func TestDisableExistingEnabledChannel(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)
	seeded := tc.seedBinding(t, "gld-1", "chl-1", "default", true)

	res, err := tc.manager.DisableChannel(ctx, "gld-1", "chl-1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Errorf("Changed = false, want true")
	}
	b := tc.mustFindBinding(t, "gld-1", "chl-1")
	if b.Enabled || b.SharedList != seeded.SharedList {
		t.Errorf("binding = %+v", b)
	}

	res, err = tc.manager.DisableChannel(ctx, "gld-1", "chl-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Errorf("second disable Changed = true, want false")
	}
}

func TestDisableMissingChannelDoesNothing(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	for i := 0; i < 2; i++ {
		res, err := tc.manager.DisableChannel(ctx, missingGuildID, missingChannelID)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.Changed {
			t.Errorf("call %d: Changed = true, want false", i)
		}
	}

	b, err := tc.store.FindBinding(ctx, missingGuildID, missingChannelID)
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("disable created a binding: %+v", b)
	}
	orphans, err := tc.store.FindOrphanedLists(ctx, models.DiscordListUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 0 {
		t.Errorf("disable created %d lists", len(orphans))
	}
}

func TestEnableAfterDisableReusesList(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	first, err := tc.manager.EnableChannel(ctx, "g", "c", "n")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tc.manager.DisableChannel(ctx, "g", "c"); err != nil {
		t.Fatal(err)
	}
	again, err := tc.manager.EnableChannel(ctx, "g", "c", "n")
	if err != nil {
		t.Fatal(err)
	}

	if !again.Changed {
		t.Errorf("re-enable Changed = false, want true")
	}
	if first.MemexSocialLink != again.MemexSocialLink {
		t.Errorf("link changed across disable: %q -> %q", first.MemexSocialLink, again.MemexSocialLink)
	}
}

func TestListEnabledChannels(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)
	guildID := makeID("gld", 999)

	got, err := tc.manager.ListEnabledChannels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh store lists %d channels", len(got))
	}

	links := make(map[int]string)
	for i := 0; i < 10; i++ {
		res, err := tc.manager.EnableChannel(ctx, guildID, makeID("chl", i), fmt.Sprint(i))
		if err != nil {
			t.Fatal(err)
		}
		links[i] = res.MemexSocialLink
	}

	assertListed := func(t *testing.T, want []int) {
		t.Helper()
		got, err := tc.manager.ListEnabledChannels(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Fatalf("listed %d channels, want %d", len(got), len(want))
		}
		for k, i := range want {
			if got[k].ChannelID != makeID("chl", i) || got[k].MemexSocialLink != links[i] {
				t.Errorf("entry %d = %+v, want channel %s link %s", k, got[k], makeID("chl", i), links[i])
			}
		}
	}

	assertListed(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	for i := 0; i < 10; i += 2 {
		if _, err := tc.manager.DisableChannel(ctx, guildID, makeID("chl", i)); err != nil {
			t.Fatal(err)
		}
	}
	assertListed(t, []int{1, 3, 5, 7, 9})

	// Re-enabling keeps the original position.
	if _, err := tc.manager.EnableChannel(ctx, guildID, makeID("chl", 4), "4"); err != nil {
		t.Fatal(err)
	}
	assertListed(t, []int{1, 3, 4, 5, 7, 9})
}

func TestConcurrentEnableCreatesOnePair(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)
	const n = 16

	var wg sync.WaitGroup
	results := make([]models.EnableResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tc.manager.EnableChannel(ctx, "g", "c", "racy")
		}(i)
	}
	wg.Wait()

	changed := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if results[i].Changed {
			changed++
		}
		if results[i].MemexSocialLink != results[0].MemexSocialLink {
			t.Errorf("call %d link %q differs from %q", i, results[i].MemexSocialLink, results[0].MemexSocialLink)
		}
	}
	if changed != 1 {
		t.Errorf("%d calls reported a change, want exactly 1", changed)
	}

	b := tc.mustFindBinding(t, "g", "c")
	orphans, err := tc.store.FindOrphanedLists(ctx, models.DiscordListUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 0 {
		t.Errorf("race left %d orphaned lists", len(orphans))
	}
	if lists, _ := tc.store.FindLists(ctx, []int64{b.SharedList}); len(lists) != 1 {
		t.Errorf("binding points at %d lists", len(lists))
	}
}

func TestGuildIsolation(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	a, err := tc.manager.EnableChannel(ctx, "g1", "c", "n")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tc.manager.EnableChannel(ctx, "g2", "c", "n")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Changed || !b.Changed {
		t.Errorf("both enables should create: %+v %+v", a, b)
	}
	if a.MemexSocialLink == b.MemexSocialLink {
		t.Errorf("guilds share a list: %q", a.MemexSocialLink)
	}

	if _, err := tc.manager.DisableChannel(ctx, "g1", "c"); err != nil {
		t.Fatal(err)
	}
	if got := tc.mustFindBinding(t, "g2", "c"); !got.Enabled {
		t.Errorf("disabling g1 affected g2")
	}
}

func TestInvalidArguments(t *testing.T) {
	ctx := context.Background()
	tc := setupTestContext(t)

	enableCases := []struct{ guild, channel, name string }{
		{"", "c", "n"},
		{"g", "", "n"},
		{"g", "c", ""},
		{"g", "c", "   "},
	}
	for _, tt := range enableCases {
		_, err := tc.manager.EnableChannel(ctx, tt.guild, tt.channel, tt.name)
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("EnableChannel(%q, %q, %q) error = %v, want ErrInvalidArgument", tt.guild, tt.channel, tt.name, err)
		}
	}
	if _, err := tc.manager.DisableChannel(ctx, "g", ""); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("DisableChannel error = %v, want ErrInvalidArgument", err)
	}

	got, err := tc.manager.ListEnabledChannels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("invalid calls wrote %d bindings", len(got))
	}
}

// fakeStore lets tests script store behaviour that sqlite cannot produce on
// demand.
type fakeStore struct {
	mu          sync.Mutex
	findCalls   int
	findResults []*models.ChannelBinding
	findErr     error
	createErr   error
	setCalls    int
}

func (f *fakeStore) FindBinding(ctx context.Context, guildID, channelID string) (*models.ChannelBinding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	i := f.findCalls
	f.findCalls++
	if i < len(f.findResults) {
		return f.findResults[i], nil
	}
	return nil, nil
}

func (f *fakeStore) CreateBoundList(ctx context.Context, list *models.SharedList, binding *models.ChannelBinding) error {
	return f.createErr
}

func (f *fakeStore) SetBindingEnabled(ctx context.Context, id int64, enabled bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	return true, nil
}

func (f *fakeStore) FindEnabledBindings(ctx context.Context) ([]models.ChannelBinding, error) {
	return nil, f.findErr
}

func TestEnableFallsBackOnLostRace(t *testing.T) {
	winner := &models.ChannelBinding{ID: 7, GuildID: "g", ChannelID: "c", SharedList: 42, Enabled: true}
	store := &fakeStore{
		findResults: []*models.ChannelBinding{nil, winner},
		createErr:   models.ErrBindingExists,
	}
	m := NewManager(store, NewBaseURLFormatter(testBaseURL), nil)

	res, err := m.EnableChannel(context.Background(), "g", "c", "n")
	if err != nil {
		t.Fatalf("EnableChannel: %v", err)
	}
	if res.Changed {
		t.Errorf("Changed = true, want false for a binding created by someone else")
	}
	if res.MemexSocialLink != testBaseURL+"42" {
		t.Errorf("link = %q", res.MemexSocialLink)
	}
	if store.findCalls != 2 {
		t.Errorf("FindBinding called %d times, want 2", store.findCalls)
	}
	if store.setCalls != 0 {
		t.Errorf("SetBindingEnabled called for an enabled binding")
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("store unavailable")

	m := NewManager(&fakeStore{findErr: unavailable}, NewBaseURLFormatter(testBaseURL), nil)
	if _, err := m.EnableChannel(ctx, "g", "c", "n"); !errors.Is(err, unavailable) {
		t.Errorf("EnableChannel error = %v", err)
	}
	if _, err := m.DisableChannel(ctx, "g", "c"); !errors.Is(err, unavailable) {
		t.Errorf("DisableChannel error = %v", err)
	}
	if _, err := m.ListEnabledChannels(ctx); !errors.Is(err, unavailable) {
		t.Errorf("ListEnabledChannels error = %v", err)
	}

	m = NewManager(&fakeStore{createErr: unavailable}, NewBaseURLFormatter(testBaseURL), nil)
	if _, err := m.EnableChannel(ctx, "g", "c", "n"); !errors.Is(err, unavailable) {
		t.Errorf("EnableChannel create error = %v", err)
	}
}

func TestEnableLostRaceWithoutWinner(t *testing.T) {
	store := &fakeStore{createErr: models.ErrBindingExists}
	m := NewManager(store, NewBaseURLFormatter(testBaseURL), nil)

	_, err := m.EnableChannel(context.Background(), "g", "c", "n")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"espresso-log/internal/application"
	"espresso-log/internal/domain"
)

// Mock services shared by the tool and dispatcher tests.

type mockShotService struct {
	created    []domain.Shot
	updated    []domain.Shot
	recent     *domain.Shot
	found      []domain.Shot
	count      int
	lastFilter domain.ShotFilter
}

func (m *mockShotService) Create(_ context.Context, shot domain.Shot) (domain.Shot, error) {
	shot.ID = "shot-new"
	m.created = append(m.created, shot)
	return shot, nil
}

func (m *mockShotService) Update(_ context.Context, shot domain.Shot) error {
	m.updated = append(m.updated, shot)
	return nil
}

func (m *mockShotService) MostRecent(_ context.Context) (*domain.Shot, error) {
	return m.recent, nil
}

func (m *mockShotService) Find(_ context.Context, filter domain.ShotFilter) ([]domain.Shot, error) {
	m.lastFilter = filter
	return m.found, nil
}

func (m *mockShotService) Count(_ context.Context, filter domain.ShotFilter) (int, error) {
	m.lastFilter = filter
	return m.count, nil
}

type mockBeanService struct {
	beans   []domain.Bean
	created []domain.Bean
}

func (m *mockBeanService) Create(_ context.Context, bean domain.Bean) (domain.Bean, error) {
	bean.ID = "bean-new"
	m.created = append(m.created, bean)
	return bean, nil
}

func (m *mockBeanService) List(_ context.Context) ([]domain.Bean, error) {
	return m.beans, nil
}

type mockBagService struct {
	created []domain.Bag
}

func (m *mockBagService) Create(_ context.Context, bag domain.Bag) (domain.Bag, error) {
	bag.ID = "bag-new"
	m.created = append(m.created, bag)
	return bag, nil
}

func (m *mockBagService) List(_ context.Context) ([]domain.Bag, error) {
	return nil, nil
}

type mockEquipmentService struct {
	items   []domain.Equipment
	created []domain.Equipment
}

func (m *mockEquipmentService) Create(_ context.Context, eq domain.Equipment) (domain.Equipment, error) {
	eq.ID = "eq-new"
	m.created = append(m.created, eq)
	return eq, nil
}

func (m *mockEquipmentService) List(_ context.Context) ([]domain.Equipment, error) {
	return m.items, nil
}

type mockProfileService struct {
	profiles []domain.Profile
	created  []domain.Profile
}

func (m *mockProfileService) Create(_ context.Context, profile domain.Profile) (domain.Profile, error) {
	profile.ID = "profile-new"
	m.created = append(m.created, profile)
	return profile, nil
}

func (m *mockProfileService) List(_ context.Context) ([]domain.Profile, error) {
	return m.profiles, nil
}

type mockNotifier struct {
	changes []domain.ChangeType
}

func (m *mockNotifier) Notify(_ context.Context, change domain.ChangeType, _ string) error {
	m.changes = append(m.changes, change)
	return nil
}

type testEnv struct {
	shots     *mockShotService
	beans     *mockBeanService
	bags      *mockBagService
	equipment *mockEquipmentService
	profiles  *mockProfileService
	notifier  *mockNotifier
	registry  *application.ToolRegistry
}

func newTestEnv() *testEnv {
	env := &testEnv{
		shots:     &mockShotService{},
		beans:     &mockBeanService{},
		bags:      &mockBagService{},
		equipment: &mockEquipmentService{},
		profiles:  &mockProfileService{},
		notifier:  &mockNotifier{},
	}
	env.registry = application.NewToolRegistry(&application.ToolDeps{
		Shots:     env.shots,
		Beans:     env.beans,
		Bags:      env.bags,
		Equipment: env.equipment,
		Profiles:  env.profiles,
		Notifier:  env.notifier,
		Now:       func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) },
	})
	return env
}

func TestLogShot_Success(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(18),
			"output_grams": float64(36),
			"time_seconds": float64(28),
			"rating":       float64(3),
		},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if out.Message != "Logged 18g → 36g in 28s, rated 3/4." {
		t.Errorf("unexpected message: %q", out.Message)
	}
	if len(env.shots.created) != 1 {
		t.Fatalf("expected 1 created shot, got %d", len(env.shots.created))
	}
	if env.notifier.changes[0] != domain.ChangeShotLogged {
		t.Errorf("expected shot_logged notification, got %v", env.notifier.changes)
	}
}

func TestLogShot_ZeroDoseRejectedBeforeService(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(0),
			"output_grams": float64(36),
			"time_seconds": float64(28),
		},
	})

	if out.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out.Message, "greater than 0") {
		t.Errorf("expected corrective message, got %q", out.Message)
	}
	if len(env.shots.created) != 0 {
		t.Errorf("shot was created despite invalid dose")
	}
	if len(env.notifier.changes) != 0 {
		t.Errorf("notification sent despite invalid dose")
	}
}

func TestLogShot_MissingRequiredArg(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(18),
			"time_seconds": float64(28),
		},
	})

	if out.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out.Message, "didn't catch the output in grams") {
		t.Errorf("expected missing-arg message, got %q", out.Message)
	}
	if len(env.shots.created) != 0 {
		t.Errorf("shot was created despite missing output")
	}
}

func TestLogShot_InheritsGrindAndDrinkFromLastShot(t *testing.T) {
	env := newTestEnv()
	env.shots.recent = &domain.Shot{
		ID:           "shot-prev",
		GrindSetting: "5.5",
		DrinkType:    domain.DrinkFlatWhite,
		MadeByID:     "profile-1",
		MachineID:    "eq-1",
	}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(18),
			"output_grams": float64(36),
			"time_seconds": float64(28),
		},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	created := env.shots.created[0]
	if created.GrindSetting != "5.5" {
		t.Errorf("grind not inherited: got %q", created.GrindSetting)
	}
	if created.DrinkType != domain.DrinkFlatWhite {
		t.Errorf("drink type not inherited: got %q", created.DrinkType)
	}
	if created.MadeByID != "profile-1" || created.MachineID != "eq-1" {
		t.Errorf("references not inherited: made_by=%q machine=%q", created.MadeByID, created.MachineID)
	}
}

func TestLogShot_HardDefaultsWhenNoHistory(t *testing.T) {
	env := newTestEnv()

	env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(18),
			"output_grams": float64(36),
			"time_seconds": float64(28),
		},
	})

	created := env.shots.created[0]
	if created.GrindSetting != domain.DefaultGrindSetting {
		t.Errorf("expected default grind %q, got %q", domain.DefaultGrindSetting, created.GrindSetting)
	}
	if created.DrinkType != domain.DefaultDrinkType {
		t.Errorf("expected default drink %q, got %q", domain.DefaultDrinkType, created.DrinkType)
	}
	if created.Rating != domain.DefaultRating {
		t.Errorf("expected default rating %d, got %d", domain.DefaultRating, created.Rating)
	}
}

func TestLogShot_ExplicitArgsBeatInheritance(t *testing.T) {
	env := newTestEnv()
	env.shots.recent = &domain.Shot{GrindSetting: "5.5", DrinkType: domain.DrinkFlatWhite}

	env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":    float64(18),
			"output_grams":  float64(36),
			"time_seconds":  float64(28),
			"grind_setting": "7",
			"drink_type":    "latte",
		},
	})

	created := env.shots.created[0]
	if created.GrindSetting != "7" {
		t.Errorf("explicit grind overridden: got %q", created.GrindSetting)
	}
	if created.DrinkType != domain.DrinkType("latte") {
		t.Errorf("explicit drink overridden: got %q", created.DrinkType)
	}
}

func TestLogShot_UnknownBeanName(t *testing.T) {
	env := newTestEnv()
	env.beans.beans = []domain.Bean{{ID: "bean-1", Name: "Ethiopian Yirgacheffe"}}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "log_shot",
		Arguments: map[string]any{
			"dose_grams":   float64(18),
			"output_grams": float64(36),
			"time_seconds": float64(28),
			"bean_name":    "colombia",
		},
	})

	if out.Success {
		t.Fatal("expected not-found failure")
	}
	if !strings.Contains(out.Message, `"colombia"`) {
		t.Errorf("expected name echoed back, got %q", out.Message)
	}
	if len(env.shots.created) != 0 {
		t.Errorf("shot created despite unknown bean")
	}
}

func TestRateLastShot(t *testing.T) {
	env := newTestEnv()
	env.shots.recent = &domain.Shot{ID: "shot-1", DoseGrams: 18, OutputGrams: 36, TimeSeconds: 28, Rating: 2}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "rate_last_shot",
		Arguments: map[string]any{"rating": float64(4)},
	})

	if !out.Success || out.Message != "Rated the last shot 4/4." {
		t.Errorf("unexpected outcome: success=%t message=%q", out.Success, out.Message)
	}
	if len(env.shots.updated) != 1 || env.shots.updated[0].Rating != 4 {
		t.Errorf("shot not updated to rating 4: %+v", env.shots.updated)
	}
}

func TestRateLastShot_OutOfRange(t *testing.T) {
	env := newTestEnv()
	env.shots.recent = &domain.Shot{ID: "shot-1"}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "rate_last_shot",
		Arguments: map[string]any{"rating": float64(9)},
	})

	if out.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out.Message, "between 0 and 4") {
		t.Errorf("expected range message, got %q", out.Message)
	}
	if len(env.shots.updated) != 0 {
		t.Errorf("shot updated despite invalid rating")
	}
}

func TestRateLastShot_NoHistory(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "rate_last_shot",
		Arguments: map[string]any{"rating": float64(3)},
	})

	if out.Success || out.Message != "No shots have been logged yet." {
		t.Errorf("unexpected outcome: success=%t message=%q", out.Success, out.Message)
	}
}

func TestAddTastingNotes_AppendsToExisting(t *testing.T) {
	env := newTestEnv()
	env.shots.recent = &domain.Shot{ID: "shot-1", Notes: "bright"}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "add_tasting_notes",
		Arguments: map[string]any{"notes": "hint of jasmine"},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if env.shots.updated[0].Notes != "bright; hint of jasmine" {
		t.Errorf("notes not appended: %q", env.shots.updated[0].Notes)
	}
}

func TestAddBean(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "add_bean",
		Arguments: map[string]any{"name": "Kenya AA", "roaster": "Square Mile"},
	})

	if !out.Success || out.Message != "Added bean Kenya AA from Square Mile." {
		t.Errorf("unexpected outcome: %q", out.Message)
	}
	if len(env.beans.created) != 1 {
		t.Errorf("bean not created")
	}
}

func TestAddBag_ResolvesBean(t *testing.T) {
	env := newTestEnv()
	env.beans.beans = []domain.Bean{{ID: "bean-1", Name: "Ethiopian Yirgacheffe"}}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "add_bag",
		Arguments: map[string]any{"bean_name": "ethiopia", "weight_grams": float64(250)},
	})

	if !out.Success || out.Message != "Opened a new bag of Ethiopian Yirgacheffe." {
		t.Errorf("unexpected outcome: %q", out.Message)
	}
	if len(env.bags.created) != 1 || env.bags.created[0].BeanID != "bean-1" {
		t.Errorf("bag not linked to resolved bean: %+v", env.bags.created)
	}
}

func TestAddEquipment_InvalidKind(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "add_equipment",
		Arguments: map[string]any{"name": "Niche Zero", "kind": "blender"},
	})

	if out.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out.Message, "must be one of") {
		t.Errorf("expected enum message, got %q", out.Message)
	}
	if len(env.equipment.created) != 0 {
		t.Errorf("equipment created despite invalid kind")
	}
}

func TestNavigateTo_UnknownDestination(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "navigate_to",
		Arguments: map[string]any{"destination": "kitchen"},
	})

	if out.Success {
		t.Fatal("expected failure for unknown destination")
	}
	for _, want := range []string{"shots", "beans", "equipment", "profiles", "stats", "settings"} {
		if !strings.Contains(out.Message, want) {
			t.Errorf("expected %q listed in %q", want, out.Message)
		}
	}
}

func TestNavigateTo_Alias(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "navigate_to",
		Arguments: map[string]any{"destination": "history"},
	})

	if !out.Success || out.EntityRef != "shots" {
		t.Errorf("alias not routed: success=%t ref=%q", out.Success, out.EntityRef)
	}
}

func TestFindShots_CapsResultsAndStaysReadOnly(t *testing.T) {
	env := newTestEnv()
	env.beans.beans = []domain.Bean{{ID: "bean-1", Name: "Ethiopian Yirgacheffe"}}
	for i := 0; i < 8; i++ {
		env.shots.found = append(env.shots.found, domain.Shot{
			ID: "s", DoseGrams: 18, OutputGrams: 36, TimeSeconds: 28, Rating: 3,
		})
	}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name: "find_shots",
		Arguments: map[string]any{
			"bean_name":  "ethiopia",
			"min_rating": float64(2),
		},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if got := strings.Count(out.Message, "\n•"); got != 5 {
		t.Errorf("expected 5 listed shots, got %d in %q", got, out.Message)
	}
	if !strings.HasPrefix(out.Message, "Found 5 shots:") {
		t.Errorf("unexpected header: %q", out.Message)
	}
	if env.shots.lastFilter.BeanID != "bean-1" || env.shots.lastFilter.MinRating != 2 {
		t.Errorf("filter not built from args: %+v", env.shots.lastFilter)
	}
	if len(env.shots.created) != 0 || len(env.shots.updated) != 0 {
		t.Errorf("query tool mutated state")
	}
	if len(env.notifier.changes) != 0 {
		t.Errorf("query tool sent notifications")
	}
}

func TestFindShots_UnknownPersonIgnored(t *testing.T) {
	env := newTestEnv()
	env.shots.found = []domain.Shot{{DoseGrams: 18, OutputGrams: 36, TimeSeconds: 28}}

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "find_shots",
		Arguments: map[string]any{"made_by": "nobody"},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if env.shots.lastFilter.MadeByID != "" {
		t.Errorf("unresolved person should not constrain the filter")
	}
}

func TestFindShots_NoMatches(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "find_shots",
		Arguments: map[string]any{"days_back": float64(7)},
	})

	if !out.Success || out.Message != "No shots matched that search." {
		t.Errorf("unexpected outcome: %q", out.Message)
	}
}

func TestGetShotCount(t *testing.T) {
	env := newTestEnv()
	env.shots.count = 12

	out := env.registry.Execute(context.Background(), domain.ToolUse{
		Name:      "get_shot_count",
		Arguments: map[string]any{"period": "week"},
	})

	if !out.Success || out.Message != "You've logged 12 shots this week." {
		t.Errorf("unexpected outcome: %q", out.Message)
	}
	if env.shots.lastFilter.Since.IsZero() {
		t.Errorf("week period should bound the count by time")
	}
}

func TestGetShotCount_TodayStartsAtLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, loc)

	shots := &mockShotService{count: 2}
	registry := application.NewToolRegistry(&application.ToolDeps{
		Shots:     shots,
		Beans:     &mockBeanService{},
		Bags:      &mockBagService{},
		Equipment: &mockEquipmentService{},
		Profiles:  &mockProfileService{},
		Notifier:  &mockNotifier{},
		Now:       func() time.Time { return now },
	})

	out := registry.Execute(context.Background(), domain.ToolUse{
		Name:      "get_shot_count",
		Arguments: map[string]any{"period": "today"},
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	if !shots.lastFilter.Since.Equal(want) {
		t.Errorf("today should start at local midnight %v, got %v", want, shots.lastFilter.Since)
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	env := newTestEnv()

	out := env.registry.Execute(context.Background(), domain.ToolUse{Name: "fly_to_the_moon"})

	if out.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if !strings.Contains(out.Message, "went wrong") {
		t.Errorf("expected generic message, got %q", out.Message)
	}
}

func TestSchemas_CoversAllTools(t *testing.T) {
	env := newTestEnv()

	schemas := env.registry.Schemas()
	if len(schemas) != 12 {
		t.Fatalf("expected 12 tool schemas, got %d", len(schemas))
	}

	names := make(map[string]bool)
	for _, s := range schemas {
		names[s.Name] = true
	}
	for _, want := range []string{"log_shot", "add_bean", "add_bag", "rate_last_shot", "find_shots", "navigate_to"} {
		if !names[want] {
			t.Errorf("schema missing tool %q", want)
		}
	}
}

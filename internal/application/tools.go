package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"espresso-log/internal/domain"
)

// Result caps for query tools.
const (
	defaultFindLimit = 5
	maxFindLimit     = 10
)

// ToolDeps are the collaborators tool executions run against.
type ToolDeps struct {
	Shots     ShotService
	Beans     BeanService
	Bags      BagService
	Equipment EquipmentService
	Profiles  ProfileService
	Notifier  ChangeNotifier
	Logger    *slog.Logger
	Now       func() time.Time
}

// ToolDef is one data-described domain action the model may invoke.
type ToolDef struct {
	Name        string
	Description string
	Params      []ParamSpec
	Run         func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error)
}

// ToolRegistry is the fixed catalogue of callable actions, built once at
// startup and read-only afterwards.
type ToolRegistry struct {
	deps  *ToolDeps
	defs  []ToolDef
	index map[string]*ToolDef
}

func NewToolRegistry(deps *ToolDeps) *ToolRegistry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = &NoopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := &ToolRegistry{deps: deps, index: make(map[string]*ToolDef)}
	r.defs = []ToolDef{
		logShotTool(), addBeanTool(), addBagTool(), rateLastShotTool(),
		addTastingNotesTool(), addEquipmentTool(), addProfileTool(),
		getShotCountTool(), navigateToTool(), filterShotsTool(),
		getLastShotTool(), findShotsTool(),
	}
	for i := range r.defs {
		r.index[r.defs[i].Name] = &r.defs[i]
	}
	return r
}

// Schemas returns the tool catalogue in the shape sent to the model.
func (r *ToolRegistry) Schemas() []ToolSchema {
	out := make([]ToolSchema, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, ToolSchema{Name: d.Name, Description: d.Description, Params: d.Params})
	}
	return out
}

// Execute validates and runs one tool use. The returned outcome message is
// always user-safe; validation failures never reach the underlying service.
func (r *ToolRegistry) Execute(ctx context.Context, use domain.ToolUse) domain.Outcome {
	def, ok := r.index[use.Name]
	if !ok {
		r.deps.Logger.Warn("model invoked unknown tool", "tool", use.Name)
		return domain.Outcome{Success: false, Message: msgUnknown}
	}

	if err := validateArgs(def, use.Arguments); err != nil {
		return domain.Outcome{Success: false, Message: UserMessage(err)}
	}

	out, err := def.Run(ctx, r.deps, use.Arguments)
	if err != nil {
		r.deps.Logger.Error("tool execution failed", "tool", use.Name, "error", err)
		return domain.Outcome{Success: false, Message: UserMessage(err)}
	}
	return out
}

// validateArgs checks presence, type and constraints per the tool schema.
// Corrective sentences here are user-facing text, returned verbatim.
func validateArgs(def *ToolDef, args map[string]any) error {
	for _, p := range def.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				return domain.Faultf(domain.FaultValidation,
					"I didn't catch the %s. Say the command again with it.", p.Description)
			}
			continue
		}

		switch p.Type {
		case "number", "integer":
			v, ok := toFloat(raw)
			if !ok {
				return domain.Faultf(domain.FaultValidation,
					"The %s has to be a number.", p.Description)
			}
			if p.Minimum != nil {
				if p.ExclusiveMin && v <= *p.Minimum {
					return domain.Faultf(domain.FaultValidation,
						"The %s must be greater than %s.", p.Description, formatNum(*p.Minimum))
				}
				if !p.ExclusiveMin && v < *p.Minimum {
					return domain.Faultf(domain.FaultValidation,
						"The %s must be at least %s.", p.Description, formatNum(*p.Minimum))
				}
			}
			if p.Maximum != nil && v > *p.Maximum {
				return domain.Faultf(domain.FaultValidation,
					"The %s must be between %s and %s.", p.Description,
					formatNum(minimumOrZero(p)), formatNum(*p.Maximum))
			}
		case "string":
			s, ok := raw.(string)
			if !ok {
				return domain.Faultf(domain.FaultValidation,
					"The %s has to be plain text.", p.Description)
			}
			if p.Required && strings.TrimSpace(s) == "" {
				return domain.Faultf(domain.FaultValidation,
					"I didn't catch the %s. Say the command again with it.", p.Description)
			}
			if len(p.Enum) > 0 && !containsFold(p.Enum, s) {
				return domain.Faultf(domain.FaultValidation,
					"The %s must be one of: %s.", p.Description, strings.Join(p.Enum, ", "))
			}
		}
	}
	return nil
}

func minimumOrZero(p ParamSpec) float64 {
	if p.Minimum != nil {
		return *p.Minimum
	}
	return 0
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func numArg(args map[string]any, name string) (float64, bool) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false
	}
	return toFloat(raw)
}

func intArg(args map[string]any, name string) (int, bool) {
	f, ok := numArg(args, name)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func strArg(args map[string]any, name string) (string, bool) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (d *ToolDeps) notify(ctx context.Context, change domain.ChangeType, entity string) {
	if err := d.Notifier.Notify(ctx, change, entity); err != nil {
		d.Logger.Warn("change notification failed", "change", change, "error", err)
	}
}

func logShotTool() ToolDef {
	return ToolDef{
		Name:        "log_shot",
		Description: "Log a new espresso shot. Returns a single confirmation sentence with dose, output, time and rating.",
		Params: []ParamSpec{
			{Name: "dose_grams", Type: "number", Required: true, Description: "dose in grams", Minimum: floatPtr(0), ExclusiveMin: true},
			{Name: "output_grams", Type: "number", Required: true, Description: "output in grams", Minimum: floatPtr(0), ExclusiveMin: true},
			{Name: "time_seconds", Type: "number", Required: true, Description: "shot time in seconds", Minimum: floatPtr(0), ExclusiveMin: true},
			{Name: "rating", Type: "integer", Description: "rating", Minimum: floatPtr(domain.RatingMin), Maximum: floatPtr(domain.RatingMax)},
			{Name: "grind_setting", Type: "string", Description: "grind setting"},
			{Name: "drink_type", Type: "string", Description: "drink type"},
			{Name: "bean_name", Type: "string", Description: "bean name"},
			{Name: "made_by", Type: "string", Description: "name of who pulled the shot"},
			{Name: "made_for", Type: "string", Description: "name of who the drink is for"},
			{Name: "machine", Type: "string", Description: "machine name"},
			{Name: "grinder", Type: "string", Description: "grinder name"},
			{Name: "notes", Type: "string", Description: "tasting notes"},
		},
		Run: runLogShot,
	}
}

func runLogShot(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
	dose, _ := numArg(args, "dose_grams")
	output, _ := numArg(args, "output_grams")
	seconds, _ := numArg(args, "time_seconds")

	shot := domain.Shot{
		DoseGrams:   dose,
		OutputGrams: output,
		TimeSeconds: seconds,
		Rating:      domain.DefaultRating,
		PulledAt:    deps.Now(),
	}
	if rating, ok := intArg(args, "rating"); ok {
		shot.Rating = rating
	}
	if grind, ok := strArg(args, "grind_setting"); ok {
		shot.GrindSetting = grind
	}
	if drink, ok := strArg(args, "drink_type"); ok {
		shot.DrinkType = domain.DrinkType(strings.ToLower(drink))
	}
	if notes, ok := strArg(args, "notes"); ok {
		shot.Notes = notes
	}

	last, err := deps.Shots.MostRecent(ctx)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("loading most recent shot: %w", err)
	}

	if name, ok := strArg(args, "bean_name"); ok {
		beans, err := deps.Beans.List(ctx)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("listing beans: %w", err)
		}
		id, found := ResolveByName(beanCandidates(beans), name)
		if !found {
			return domain.Outcome{}, domain.NotFoundFault(name)
		}
		shot.BeanID = id
	}

	if name, ok := strArg(args, "made_by"); ok {
		id, err := resolveProfile(ctx, deps, name)
		if err != nil {
			return domain.Outcome{}, err
		}
		shot.MadeByID = id
	}
	if name, ok := strArg(args, "made_for"); ok {
		id, err := resolveProfile(ctx, deps, name)
		if err != nil {
			return domain.Outcome{}, err
		}
		shot.MadeForID = id
	}

	if name, ok := strArg(args, "machine"); ok {
		id, err := resolveEquipment(ctx, deps, name, domain.EquipmentMachine)
		if err != nil {
			return domain.Outcome{}, err
		}
		shot.MachineID = id
	}
	if name, ok := strArg(args, "grinder"); ok {
		id, err := resolveEquipment(ctx, deps, name, domain.EquipmentGrinder)
		if err != nil {
			return domain.Outcome{}, err
		}
		shot.GrinderID = id
	}

	inheritDefaults(&shot, last)

	created, err := deps.Shots.Create(ctx, shot)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("creating shot: %w", err)
	}

	summary := shotSummary(created)
	deps.notify(ctx, domain.ChangeShotLogged, summary)

	return domain.Outcome{
		Success:   true,
		Message:   "Logged " + summary + ".",
		EntityRef: created.ID,
	}, nil
}

func resolveProfile(ctx context.Context, deps *ToolDeps, name string) (string, error) {
	profiles, err := deps.Profiles.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing profiles: %w", err)
	}
	id, found := ResolveByName(profileCandidates(profiles), name)
	if !found {
		return "", domain.NotFoundFault(name)
	}
	return id, nil
}

func resolveEquipment(ctx context.Context, deps *ToolDeps, name string, kind domain.EquipmentKind) (string, error) {
	items, err := deps.Equipment.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing equipment: %w", err)
	}
	id, found := ResolveByName(equipmentCandidates(items, kind), name)
	if !found {
		return "", domain.NotFoundFault(name)
	}
	return id, nil
}

// shotSummary renders the literal one-line form used in confirmations and
// query listings, e.g. "18g → 36g in 28s, rated 3/4".
func shotSummary(shot domain.Shot) string {
	return fmt.Sprintf("%sg → %sg in %ss, rated %d/%d",
		formatNum(shot.DoseGrams), formatNum(shot.OutputGrams),
		formatNum(shot.TimeSeconds), shot.Rating, domain.RatingMax)
}

func addBeanTool() ToolDef {
	return ToolDef{
		Name:        "add_bean",
		Description: "Add a coffee bean to the collection. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "name", Type: "string", Required: true, Description: "bean name"},
			{Name: "roaster", Type: "string", Description: "roaster name"},
			{Name: "origin", Type: "string", Description: "bean origin"},
			{Name: "roast_level", Type: "string", Description: "roast level"},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			name, _ := strArg(args, "name")
			bean := domain.Bean{Name: name, AddedAt: deps.Now()}
			bean.Roaster, _ = strArg(args, "roaster")
			bean.Origin, _ = strArg(args, "origin")
			bean.RoastLevel, _ = strArg(args, "roast_level")

			created, err := deps.Beans.Create(ctx, bean)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("creating bean: %w", err)
			}

			msg := fmt.Sprintf("Added bean %s", created.Name)
			if created.Roaster != "" {
				msg += " from " + created.Roaster
			}
			deps.notify(ctx, domain.ChangeBeanAdded, created.Name)
			return domain.Outcome{Success: true, Message: msg + ".", EntityRef: created.ID}, nil
		},
	}
}

func addBagTool() ToolDef {
	return ToolDef{
		Name:        "add_bag",
		Description: "Open a new bag of an existing bean. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "bean_name", Type: "string", Required: true, Description: "bean name"},
			{Name: "weight_grams", Type: "number", Description: "bag weight in grams", Minimum: floatPtr(0), ExclusiveMin: true},
			{Name: "roast_date", Type: "string", Description: "roast date"},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			name, _ := strArg(args, "bean_name")
			beans, err := deps.Beans.List(ctx)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("listing beans: %w", err)
			}
			beanID, found := ResolveByName(beanCandidates(beans), name)
			if !found {
				return domain.Outcome{}, domain.NotFoundFault(name)
			}

			bag := domain.Bag{BeanID: beanID, OpenedAt: deps.Now()}
			bag.WeightGrams, _ = numArg(args, "weight_grams")
			bag.RoastDate, _ = strArg(args, "roast_date")

			created, err := deps.Bags.Create(ctx, bag)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("creating bag: %w", err)
			}

			beanName := beanNameByID(beans, beanID)
			deps.notify(ctx, domain.ChangeBagAdded, beanName)
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Opened a new bag of %s.", beanName),
				EntityRef: created.ID,
			}, nil
		},
	}
}

func beanNameByID(beans []domain.Bean, id string) string {
	for _, b := range beans {
		if b.ID == id {
			return b.Name
		}
	}
	return "unknown bean"
}

func rateLastShotTool() ToolDef {
	return ToolDef{
		Name:        "rate_last_shot",
		Description: "Rate the most recently logged shot. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "rating", Type: "integer", Required: true, Description: "rating", Minimum: floatPtr(domain.RatingMin), Maximum: floatPtr(domain.RatingMax)},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			last, err := deps.Shots.MostRecent(ctx)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("loading most recent shot: %w", err)
			}
			if last == nil {
				return domain.Outcome{Success: false, Message: "No shots have been logged yet."}, nil
			}

			rating, _ := intArg(args, "rating")
			last.Rating = rating
			if err := deps.Shots.Update(ctx, *last); err != nil {
				return domain.Outcome{}, fmt.Errorf("updating shot: %w", err)
			}

			deps.notify(ctx, domain.ChangeShotUpdated, shotSummary(*last))
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Rated the last shot %d/%d.", rating, domain.RatingMax),
				EntityRef: last.ID,
			}, nil
		},
	}
}

func addTastingNotesTool() ToolDef {
	return ToolDef{
		Name:        "add_tasting_notes",
		Description: "Add tasting notes to the most recently logged shot. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "notes", Type: "string", Required: true, Description: "tasting notes"},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			last, err := deps.Shots.MostRecent(ctx)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("loading most recent shot: %w", err)
			}
			if last == nil {
				return domain.Outcome{Success: false, Message: "No shots have been logged yet."}, nil
			}

			notes, _ := strArg(args, "notes")
			if last.Notes != "" {
				last.Notes += "; " + notes
			} else {
				last.Notes = notes
			}
			if err := deps.Shots.Update(ctx, *last); err != nil {
				return domain.Outcome{}, fmt.Errorf("updating shot: %w", err)
			}

			deps.notify(ctx, domain.ChangeShotUpdated, shotSummary(*last))
			return domain.Outcome{
				Success:   true,
				Message:   "Added tasting notes to the last shot.",
				EntityRef: last.ID,
			}, nil
		},
	}
}

func addEquipmentTool() ToolDef {
	return ToolDef{
		Name:        "add_equipment",
		Description: "Add a machine, grinder or accessory. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "name", Type: "string", Required: true, Description: "equipment name"},
			{Name: "kind", Type: "string", Required: true, Description: "equipment kind",
				Enum: []string{string(domain.EquipmentMachine), string(domain.EquipmentGrinder), string(domain.EquipmentAccessory)}},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			name, _ := strArg(args, "name")
			kind, _ := strArg(args, "kind")

			created, err := deps.Equipment.Create(ctx, domain.Equipment{
				Name:    name,
				Kind:    domain.EquipmentKind(strings.ToLower(kind)),
				AddedAt: deps.Now(),
			})
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("creating equipment: %w", err)
			}

			deps.notify(ctx, domain.ChangeEquipmentAdded, created.Name)
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Added %s %s.", created.Kind, created.Name),
				EntityRef: created.ID,
			}, nil
		},
	}
}

func addProfileTool() ToolDef {
	return ToolDef{
		Name:        "add_profile",
		Description: "Add a person shots can be made by or for. Returns a single confirmation sentence.",
		Params: []ParamSpec{
			{Name: "name", Type: "string", Required: true, Description: "person's name"},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			name, _ := strArg(args, "name")
			created, err := deps.Profiles.Create(ctx, domain.Profile{Name: name, AddedAt: deps.Now()})
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("creating profile: %w", err)
			}

			deps.notify(ctx, domain.ChangeProfileAdded, created.Name)
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Added %s to profiles.", created.Name),
				EntityRef: created.ID,
			}, nil
		},
	}
}

func getShotCountTool() ToolDef {
	return ToolDef{
		Name:        "get_shot_count",
		Description: "Count logged shots for a period. Read-only; returns a single sentence.",
		Params: []ParamSpec{
			{Name: "period", Type: "string", Description: "period to count",
				Enum: []string{"today", "week", "month", "all"}},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			period, _ := strArg(args, "period")
			period = strings.ToLower(period)

			filter := domain.NewShotFilter()
			now := deps.Now()
			label := "in total"
			switch period {
			case "today":
				y, m, d := now.Date()
				filter.Since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
				label = "today"
			case "week":
				filter.Since = now.AddDate(0, 0, -7)
				label = "this week"
			case "month":
				filter.Since = now.AddDate(0, -1, 0)
				label = "this month"
			}

			count, err := deps.Shots.Count(ctx, filter)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("counting shots: %w", err)
			}

			noun := "shots"
			if count == 1 {
				noun = "shot"
			}
			return domain.Outcome{
				Success: true,
				Message: fmt.Sprintf("You've logged %d %s %s.", count, noun, label),
			}, nil
		},
	}
}

// Canonical destinations for voice navigation.
var routes = map[string]string{
	"shots":     "shots",
	"history":   "shots",
	"beans":     "beans",
	"bags":      "bags",
	"equipment": "equipment",
	"gear":      "equipment",
	"profiles":  "profiles",
	"people":    "profiles",
	"stats":     "stats",
	"settings":  "settings",
}

func routeChoices() string {
	seen := make(map[string]bool)
	var names []string
	for _, dest := range routes {
		if !seen[dest] {
			seen[dest] = true
			names = append(names, dest)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func navigateToTool() ToolDef {
	return ToolDef{
		Name:        "navigate_to",
		Description: "Open a screen of the app. Returns a single sentence naming the screen, or the valid choices.",
		Params: []ParamSpec{
			{Name: "destination", Type: "string", Required: true, Description: "screen to open"},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			destination, _ := strArg(args, "destination")
			route, ok := routes[strings.ToLower(destination)]
			if !ok {
				return domain.Outcome{
					Success: false,
					Message: fmt.Sprintf("I can't open %q. Try one of: %s.", destination, routeChoices()),
				}, nil
			}
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Opening %s.", route),
				EntityRef: route,
			}, nil
		},
	}
}

func filterShotsTool() ToolDef {
	return ToolDef{
		Name:        "filter_shots",
		Description: "Open the shot list filtered by bean, person or minimum rating. Returns a single sentence.",
		Params: []ParamSpec{
			{Name: "bean_name", Type: "string", Description: "bean name"},
			{Name: "made_by", Type: "string", Description: "name of who pulled the shots"},
			{Name: "min_rating", Type: "integer", Description: "minimum rating", Minimum: floatPtr(domain.RatingMin), Maximum: floatPtr(domain.RatingMax)},
		},
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			var parts []string

			if name, ok := strArg(args, "bean_name"); ok {
				beans, err := deps.Beans.List(ctx)
				if err != nil {
					return domain.Outcome{}, fmt.Errorf("listing beans: %w", err)
				}
				id, found := ResolveByName(beanCandidates(beans), name)
				if !found {
					return domain.Outcome{}, domain.NotFoundFault(name)
				}
				parts = append(parts, beanNameByID(beans, id))
			}
			if name, ok := strArg(args, "made_by"); ok {
				// optional person filter: unresolved names are dropped
				profiles, err := deps.Profiles.List(ctx)
				if err != nil {
					return domain.Outcome{}, fmt.Errorf("listing profiles: %w", err)
				}
				if _, found := ResolveByName(profileCandidates(profiles), name); found {
					parts = append(parts, "made by "+name)
				}
			}
			if rating, ok := intArg(args, "min_rating"); ok {
				parts = append(parts, fmt.Sprintf("rated at least %d", rating))
			}

			if len(parts) == 0 {
				return domain.Outcome{Success: true, Message: "Opening shots.", EntityRef: "shots"}, nil
			}
			return domain.Outcome{
				Success:   true,
				Message:   fmt.Sprintf("Showing shots filtered by %s.", strings.Join(parts, ", ")),
				EntityRef: "shots",
			}, nil
		},
	}
}

func getLastShotTool() ToolDef {
	return ToolDef{
		Name:        "get_last_shot",
		Description: "Describe the most recently logged shot. Read-only; returns a single sentence.",
		Params:      nil,
		Run: func(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
			last, err := deps.Shots.MostRecent(ctx)
			if err != nil {
				return domain.Outcome{}, fmt.Errorf("loading most recent shot: %w", err)
			}
			if last == nil {
				return domain.Outcome{Success: false, Message: "No shots have been logged yet."}, nil
			}

			msg := "Last shot: " + shotSummary(*last)
			if last.BeanID != "" {
				beans, err := deps.Beans.List(ctx)
				if err == nil {
					if name := beanNameByID(beans, last.BeanID); name != "unknown bean" {
						msg += " on " + name
					}
				}
			}
			return domain.Outcome{Success: true, Message: msg + ".", EntityRef: last.ID}, nil
		},
	}
}

func findShotsTool() ToolDef {
	return ToolDef{
		Name:        "find_shots",
		Description: "Find logged shots by bean, person, minimum rating or recency. Read-only; returns a short bulleted list.",
		Params: []ParamSpec{
			{Name: "bean_name", Type: "string", Description: "bean name"},
			{Name: "made_by", Type: "string", Description: "name of who pulled the shots"},
			{Name: "made_for", Type: "string", Description: "name of who the shots were for"},
			{Name: "min_rating", Type: "integer", Description: "minimum rating", Minimum: floatPtr(domain.RatingMin), Maximum: floatPtr(domain.RatingMax)},
			{Name: "days_back", Type: "integer", Description: "how many days back to search", Minimum: floatPtr(0), ExclusiveMin: true},
			{Name: "limit", Type: "integer", Description: "how many shots to list", Minimum: floatPtr(1), Maximum: floatPtr(maxFindLimit)},
		},
		Run: runFindShots,
	}
}

func runFindShots(ctx context.Context, deps *ToolDeps, args map[string]any) (domain.Outcome, error) {
	filter := domain.NewShotFilter()
	filter.Limit = defaultFindLimit
	if limit, ok := intArg(args, "limit"); ok {
		filter.Limit = limit
	}
	if filter.Limit > maxFindLimit {
		filter.Limit = maxFindLimit
	}

	var beans []domain.Bean
	if name, ok := strArg(args, "bean_name"); ok {
		var err error
		beans, err = deps.Beans.List(ctx)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("listing beans: %w", err)
		}
		id, found := ResolveByName(beanCandidates(beans), name)
		if !found {
			return domain.Outcome{}, domain.NotFoundFault(name)
		}
		filter.BeanID = id
	}

	// optional person filters: unresolved names are silently ignored
	if name, ok := strArg(args, "made_by"); ok {
		if id, err := lookupProfile(ctx, deps, name); err != nil {
			return domain.Outcome{}, err
		} else if id != "" {
			filter.MadeByID = id
		}
	}
	if name, ok := strArg(args, "made_for"); ok {
		if id, err := lookupProfile(ctx, deps, name); err != nil {
			return domain.Outcome{}, err
		} else if id != "" {
			filter.MadeForID = id
		}
	}

	if rating, ok := intArg(args, "min_rating"); ok {
		filter.MinRating = rating
	}
	if days, ok := intArg(args, "days_back"); ok {
		filter.Since = deps.Now().AddDate(0, 0, -days)
	}

	shots, err := deps.Shots.Find(ctx, filter)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("finding shots: %w", err)
	}
	if len(shots) > filter.Limit {
		shots = shots[:filter.Limit]
	}
	if len(shots) == 0 {
		return domain.Outcome{Success: true, Message: "No shots matched that search."}, nil
	}

	noun := "shots"
	if len(shots) == 1 {
		noun = "shot"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d %s:", len(shots), noun)
	for _, shot := range shots {
		sb.WriteString("\n• " + shotSummary(shot))
	}
	return domain.Outcome{Success: true, Message: sb.String()}, nil
}

// lookupProfile resolves a person name, returning "" (not an error) when
// nothing matches.
func lookupProfile(ctx context.Context, deps *ToolDeps, name string) (string, error) {
	profiles, err := deps.Profiles.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing profiles: %w", err)
	}
	id, _ := ResolveByName(profileCandidates(profiles), name)
	return id, nil
}

package application

import (
	"strings"

	"espresso-log/internal/domain"
)

// Named is a resolvable (id, name) candidate.
type Named struct {
	ID   string
	Name string
}

// ResolveByName matches a spoken name against live candidates. Containment
// is checked in both directions, case-insensitive, so a partial utterance
// ("Ethiopia") still finds "Ethiopian Yirgacheffe". First match wins.
func ResolveByName(candidates []Named, query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	for _, c := range candidates {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return c.ID, true
		}
	}
	return "", false
}

func beanCandidates(beans []domain.Bean) []Named {
	out := make([]Named, 0, len(beans))
	for _, b := range beans {
		out = append(out, Named{ID: b.ID, Name: b.Name})
	}
	return out
}

func profileCandidates(profiles []domain.Profile) []Named {
	out := make([]Named, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Named{ID: p.ID, Name: p.Name})
	}
	return out
}

func equipmentCandidates(items []domain.Equipment, kind domain.EquipmentKind) []Named {
	out := make([]Named, 0, len(items))
	for _, e := range items {
		if e.Kind != kind {
			continue
		}
		out = append(out, Named{ID: e.ID, Name: e.Name})
	}
	return out
}

// inheritDefaults fills the unset optional fields of a new shot from the
// most recent one, or from the hard defaults when no prior shot exists.
// Relational fields default to absent rather than wrong when there is no
// history. Required numeric fields are never touched here.
func inheritDefaults(shot *domain.Shot, last *domain.Shot) {
	if shot.GrindSetting == "" {
		if last != nil && last.GrindSetting != "" {
			shot.GrindSetting = last.GrindSetting
		} else {
			shot.GrindSetting = domain.DefaultGrindSetting
		}
	}

	if shot.DrinkType == "" {
		if last != nil && last.DrinkType != "" {
			shot.DrinkType = last.DrinkType
		} else {
			shot.DrinkType = domain.DefaultDrinkType
		}
	}

	if last == nil {
		return
	}

	if shot.MadeByID == "" {
		shot.MadeByID = last.MadeByID
	}
	if shot.MadeForID == "" {
		shot.MadeForID = last.MadeForID
	}
	if shot.MachineID == "" {
		shot.MachineID = last.MachineID
	}
	if shot.GrinderID == "" {
		shot.GrinderID = last.GrinderID
	}
	if len(shot.AccessoryIDs) == 0 && len(last.AccessoryIDs) > 0 {
		shot.AccessoryIDs = append([]string(nil), last.AccessoryIDs...)
	}
}

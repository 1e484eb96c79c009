package domain

import "time"

// Rating scale for shots: 0 means unrated, 4 is the best pull of the week.
const (
	RatingMin = 0
	RatingMax = 4
)

// Hard defaults used when no prior shot exists to inherit from.
const (
	DefaultGrindSetting = "5"
	DefaultDrinkType    = DrinkEspresso
	DefaultRating       = 0
)

type DrinkType string

const (
	DrinkEspresso   DrinkType = "espresso"
	DrinkAmericano  DrinkType = "americano"
	DrinkLatte      DrinkType = "latte"
	DrinkCappuccino DrinkType = "cappuccino"
	DrinkFlatWhite  DrinkType = "flat white"
)

type Shot struct {
	ID           string
	DoseGrams    float64
	OutputGrams  float64
	TimeSeconds  float64
	Rating       int
	GrindSetting string
	DrinkType    DrinkType
	BeanID       string
	BagID        string
	MadeByID     string
	MadeForID    string
	MachineID    string
	GrinderID    string
	AccessoryIDs []string
	Notes        string
	PulledAt     time.Time
}

type Bean struct {
	ID         string
	Name       string
	Roaster    string
	Origin     string
	RoastLevel string
	AddedAt    time.Time
}

type Bag struct {
	ID          string
	BeanID      string
	WeightGrams float64
	RoastDate   string
	OpenedAt    time.Time
}

type EquipmentKind string

const (
	EquipmentMachine   EquipmentKind = "machine"
	EquipmentGrinder   EquipmentKind = "grinder"
	EquipmentAccessory EquipmentKind = "accessory"
)

type Equipment struct {
	ID      string
	Name    string
	Kind    EquipmentKind
	AddedAt time.Time
}

// Profile is a person shots can be made by or for.
type Profile struct {
	ID      string
	Name    string
	AddedAt time.Time
}

// ShotFilter narrows Find/Count queries. Zero values mean "not filtered".
// MinRating uses -1 for "not filtered" so that 0 (unrated) stays filterable.
type ShotFilter struct {
	BeanID    string
	MadeByID  string
	MadeForID string
	MinRating int
	Since     time.Time
	Limit     int
}

func NewShotFilter() ShotFilter {
	return ShotFilter{MinRating: -1}
}

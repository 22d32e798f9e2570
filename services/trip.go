package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"

	// DefaultBudget applies when a trip request carries no budget.
	DefaultBudget = 1000.0
)

// ErrValidation marks input rejected before any provider call or insert.
var ErrValidation = errors.New("validation error")

// Preference flags a traveler can tick on the planner form.
const (
	PrefAdventure  = "adventure"
	PrefCulture    = "culture"
	PrefRelaxation = "relaxation"
	PrefFood       = "food"
)

// KnownPreferences lists the flag set in display order.
var KnownPreferences = []string{PrefAdventure, PrefCulture, PrefRelaxation, PrefFood}

// PreferenceSet is the set of ticked preference flags. On the wire it is
// accepted either as a list of names (["culture","food"]) or as an object of
// booleans ({"culture":true,"food":true,"adventure":false}).
type PreferenceSet []string

func (p *PreferenceSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*p = normalizePreferences(names)
		return nil
	}

	var flags map[string]bool
	if err := json.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("preferences must be a list of names or an object of booleans")
	}
	names = names[:0]
	for name, on := range flags {
		if on {
			names = append(names, name)
		}
	}
	*p = normalizePreferences(names)
	return nil
}

// String returns the JSON list form used for storage.
func (p PreferenceSet) String() string {
	if p == nil {
		return "[]"
	}
	b, _ := json.Marshal([]string(p))
	return string(b)
}

// Has reports whether flag is in the set.
func (p PreferenceSet) Has(flag string) bool {
	for _, f := range p {
		if f == flag {
			return true
		}
	}
	return false
}

// normalizePreferences lowercases, trims and de-duplicates names, ordering
// known flags first in KnownPreferences order. Unknown names are kept so
// validation can report them.
func normalizePreferences(names []string) PreferenceSet {
	seen := make(map[string]bool, len(names))
	out := make(PreferenceSet, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	rank := func(name string) int {
		for i, k := range KnownPreferences {
			if k == name {
				return i
			}
		}
		return len(KnownPreferences)
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

// TripRequest is the planner form payload as submitted by the front end.
type TripRequest struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination" validate:"required"`
	StartDate   string        `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string        `json:"endDate" validate:"required,datetime=2006-01-02"`
	Budget      float64       `json:"budget" validate:"gte=0"`
	Preferences PreferenceSet `json:"preferences" validate:"dive,oneof=adventure culture relaxation food"`
}

// Trip is a validated TripRequest. Values are never modified after Validate
// returns them.
type Trip struct {
	Origin      string
	Destination string
	Start       time.Time
	End         time.Time
	Budget      float64
	Preferences PreferenceSet
}

// Validate checks the request and returns the normalized Trip. The error
// wraps ErrValidation and lists every offending field.
func (r TripRequest) Validate() (Trip, error) {
	r.Destination = strings.TrimSpace(r.Destination)
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))

	if err := validate.Struct(r); err != nil {
		return Trip{}, validationError(err)
	}

	start, _ := time.Parse(dateLayout, r.StartDate)
	end, _ := time.Parse(dateLayout, r.EndDate)
	if end.Before(start) {
		return Trip{}, fmt.Errorf("%w: endDate must not be before startDate", ErrValidation)
	}

	budget := r.Budget
	if budget == 0 {
		budget = DefaultBudget
	}

	return Trip{
		Origin:      r.Origin,
		Destination: r.Destination,
		Start:       start,
		End:         end,
		Budget:      budget,
		Preferences: r.Preferences,
	}, nil
}

// Duration is the trip length in whole days, rounded up.
func (t Trip) Duration() int {
	return int(math.Ceil(t.End.Sub(t.Start).Hours() / 24))
}

// HotelBudget is the share of the total budget allocated to lodging.
func (t Trip) HotelBudget(share float64) float64 {
	return math.Round(t.Budget*share*100) / 100
}

// StartDate and EndDate format the range the way provider APIs expect.
func (t Trip) StartDate() string { return t.Start.Format(dateLayout) }
func (t Trip) EndDate() string   { return t.End.Format(dateLayout) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError flattens validator field errors into one ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if i := strings.Index(field, "["); i >= 0 {
			field = field[:i]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "datetime":
			msgs = append(msgs, field+" must be a date in YYYY-MM-DD format")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s contains unknown flag %q", field, fe.Value()))
		case "gte":
			msgs = append(msgs, field+" must not be negative")
		case "gt":
			msgs = append(msgs, field+" must be greater than zero")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

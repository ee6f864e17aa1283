package models

import (
	"intake-service/internal/pkg/exceptions"
	"intake-service/internal/pkg/reorder"
	"sort"
)

type ItemKind string

const (
	ItemKindText            ItemKind = "text"
	ItemKindYesNo           ItemKind = "yes_no"
	ItemKindMultiChoice     ItemKind = "multi_choice"
	ItemKindDate            ItemKind = "date"
	ItemKindNumericRange    ItemKind = "numeric_range"
	ItemKindImageAnnotation ItemKind = "image_annotation"
	ItemKindPersonalInfo    ItemKind = "personal_info"
)

const (
	OptionKeyYes = "yes"
	OptionKeyNo  = "no"
)

const (
	DefaultNumericRangeMin  = 0
	DefaultNumericRangeMax  = 10
	DefaultNumericRangeStep = 1
)

var itemKinds = map[ItemKind]bool{
	ItemKindText:            true,
	ItemKindYesNo:           true,
	ItemKindMultiChoice:     true,
	ItemKindDate:            true,
	ItemKindNumericRange:    true,
	ItemKindImageAnnotation: true,
	ItemKindPersonalInfo:    true,
}

func (k ItemKind) IsValid() bool {
	return itemKinds[k]
}

// IsHidden reports whether items of this kind are kept out of the editable tree.
func (k ItemKind) IsHidden() bool {
	return k == ItemKindPersonalInfo
}

type Applicability struct {
	FirstVisit  bool `json:"first_visit"`
	RepeatVisit bool `json:"repeat_visit"`
}

func (a Applicability) Any() bool {
	return a.FirstVisit || a.RepeatVisit
}

func (a Applicability) And(other Applicability) Applicability {
	return Applicability{
		FirstVisit:  a.FirstVisit && other.FirstVisit,
		RepeatVisit: a.RepeatVisit && other.RepeatVisit,
	}
}

type GenderRestriction struct {
	Enabled bool   `json:"enabled" bson:"enabled"`
	Gender  string `json:"gender" bson:"gender"`
}

type AgeRestriction struct {
	Enabled bool `json:"enabled" bson:"enabled"`
	MinAge  *int `json:"min_age,omitempty" bson:"min_age,omitempty"`
	MaxAge  *int `json:"max_age,omitempty" bson:"max_age,omitempty"`
}

type NumericRange struct {
	Min  float64 `json:"min" bson:"min"`
	Max  float64 `json:"max" bson:"max"`
	Step float64 `json:"step" bson:"step"`
}

// Item is one question of an intake template. Follow-up items are owned by
// their parent through Followups, keyed by answer option text (or yes/no).
type Item struct {
	ID                string             `json:"id" bson:"id"`
	Label             string             `json:"label" bson:"label"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty"`
	Kind              ItemKind           `json:"kind" bson:"kind"`
	Options           []string           `json:"options,omitempty" bson:"options,omitempty"`
	AllowFreeText     bool               `json:"allow_free_text,omitempty" bson:"allow_free_text,omitempty"`
	Required          bool               `json:"required" bson:"required"`
	Range             *NumericRange      `json:"range,omitempty" bson:"range,omitempty"`
	GenderRestriction *GenderRestriction `json:"gender_restriction,omitempty" bson:"gender_restriction,omitempty"`
	AgeRestriction    *AgeRestriction    `json:"age_restriction,omitempty" bson:"age_restriction,omitempty"`
	AttachedImage     string             `json:"attached_image,omitempty" bson:"attached_image,omitempty"`
	Followups         map[string][]Item  `json:"followups,omitempty" bson:"followups,omitempty"`

	// Only set on the in-memory unified tree, never persisted.
	Applicability *Applicability `json:"applicability,omitempty" bson:"-"`
}

// Clone returns a deep copy of the item including every nested follow-up branch.
func (i Item) Clone() Item {
	clone := i

	if i.Options != nil {
		clone.Options = append([]string{}, i.Options...)
	}
	if i.Range != nil {
		r := *i.Range
		clone.Range = &r
	}
	if i.GenderRestriction != nil {
		g := *i.GenderRestriction
		clone.GenderRestriction = &g
	}
	if i.AgeRestriction != nil {
		a := *i.AgeRestriction
		if a.MinAge != nil {
			v := *a.MinAge
			a.MinAge = &v
		}
		if a.MaxAge != nil {
			v := *a.MaxAge
			a.MaxAge = &v
		}
		clone.AgeRestriction = &a
	}
	if i.Applicability != nil {
		app := *i.Applicability
		clone.Applicability = &app
	}
	if i.Followups != nil {
		clone.Followups = make(map[string][]Item, len(i.Followups))
		for key, branch := range i.Followups {
			clone.Followups[key] = CloneItems(branch)
		}
	}

	return clone
}

func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	clones := make([]Item, len(items))
	for idx, item := range items {
		clones[idx] = item.Clone()
	}
	return clones
}

// EffectiveApplicability treats a missing flag set as applicable to both visits.
func (i *Item) EffectiveApplicability() Applicability {
	if i.Applicability == nil {
		return Applicability{FirstVisit: true, RepeatVisit: true}
	}
	return *i.Applicability
}

func (i *Item) SetApplicability(app Applicability) {
	i.Applicability = &app
}

// OptionKeys lists the keys a follow-up branch may be attached to.
func (i *Item) OptionKeys() []string {
	switch i.Kind {
	case ItemKindYesNo:
		return []string{OptionKeyYes, OptionKeyNo}
	case ItemKindMultiChoice:
		return i.Options
	default:
		return nil
	}
}

func (i *Item) HasOptionKey(key string) bool {
	for _, optionKey := range i.OptionKeys() {
		if optionKey == key {
			return true
		}
	}
	return false
}

// SortedFollowupKeys returns the branch keys in option order first, then any
// remaining keys alphabetically.
func (i *Item) SortedFollowupKeys() []string {
	keys := make([]string, 0, len(i.Followups))
	seen := make(map[string]bool, len(i.Followups))
	for _, optionKey := range i.OptionKeys() {
		if _, ok := i.Followups[optionKey]; ok && !seen[optionKey] {
			keys = append(keys, optionKey)
			seen[optionKey] = true
		}
	}

	var rest []string
	for key := range i.Followups {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

func (i *Item) optionIndex(option string) int {
	for idx, existing := range i.Options {
		if existing == option {
			return idx
		}
	}
	return -1
}

func (i *Item) checkOptionsEditable() error {
	if i.Kind != ItemKindMultiChoice {
		return exceptions.ErrOptionsNotEditable(nil, i.ID, string(i.Kind))
	}
	return nil
}

func (i *Item) AddOption(option string) error {
	if err := i.checkOptionsEditable(); err != nil {
		return err
	}
	if option == "" {
		return exceptions.ErrOptionEmpty(nil)
	}
	if i.optionIndex(option) >= 0 {
		return exceptions.ErrOptionAlreadyExists(nil, i.ID, option)
	}

	i.Options = append(i.Options, option)
	return nil
}

// RenameOption changes the option text and re-keys its follow-up branch in
// the same step, so the branch is neither duplicated nor orphaned.
func (i *Item) RenameOption(oldOption, newOption string) error {
	if err := i.checkOptionsEditable(); err != nil {
		return err
	}
	if newOption == "" {
		return exceptions.ErrOptionEmpty(nil)
	}

	idx := i.optionIndex(oldOption)
	if idx < 0 {
		return exceptions.ErrOptionNotFound(nil, i.ID, oldOption)
	}
	if oldOption == newOption {
		return nil
	}
	if i.optionIndex(newOption) >= 0 {
		return exceptions.ErrOptionAlreadyExists(nil, i.ID, newOption)
	}

	i.Options[idx] = newOption
	if branch, ok := i.Followups[oldOption]; ok {
		delete(i.Followups, oldOption)
		i.Followups[newOption] = branch
	}
	return nil
}

// DeleteOption removes the option together with any branch keyed to it.
func (i *Item) DeleteOption(option string) error {
	if err := i.checkOptionsEditable(); err != nil {
		return err
	}

	idx := i.optionIndex(option)
	if idx < 0 {
		return exceptions.ErrOptionNotFound(nil, i.ID, option)
	}

	i.Options = append(i.Options[:idx:idx], i.Options[idx+1:]...)
	delete(i.Followups, option)
	if len(i.Followups) == 0 {
		i.Followups = nil
	}
	return nil
}

func (i *Item) MoveOption(from, to int) error {
	if err := i.checkOptionsEditable(); err != nil {
		return err
	}

	i.Options = reorder.Move(i.Options, from, to)
	return nil
}

// ChangeKind switches the item kind and resets the fields that only make sense
// for the previous kind. ID, label, applicability and follow-ups are untouched.
func (i *Item) ChangeKind(kind ItemKind) {
	if i.Kind == kind {
		return
	}

	if i.Kind == ItemKindMultiChoice {
		i.Options = nil
		i.AllowFreeText = false
	}
	if i.Kind == ItemKindNumericRange {
		i.Range = nil
	}

	if kind == ItemKindNumericRange {
		i.Range = &NumericRange{
			Min:  DefaultNumericRangeMin,
			Max:  DefaultNumericRangeMax,
			Step: DefaultNumericRangeStep,
		}
	}

	i.Kind = kind
}

// Branch returns the follow-up sequence under optionKey, creating it when missing.
func (i *Item) Branch(optionKey string) []Item {
	if i.Followups == nil {
		i.Followups = make(map[string][]Item)
	}
	branch, ok := i.Followups[optionKey]
	if !ok {
		branch = []Item{}
		i.Followups[optionKey] = branch
	}
	return branch
}

// FindItem searches the tree depth-first and returns a pointer into the owning
// slice. The pointer is only valid until that slice is next modified.
func FindItem(items []Item, itemID string) *Item {
	for idx := range items {
		if items[idx].ID == itemID {
			return &items[idx]
		}
		for _, key := range items[idx].SortedFollowupKeys() {
			if found := FindItem(items[idx].Followups[key], itemID); found != nil {
				return found
			}
		}
	}
	return nil
}

// RemoveItem deletes the item with itemID wherever it sits in the tree.
func RemoveItem(items []Item, itemID string) ([]Item, bool) {
	for idx := range items {
		if items[idx].ID == itemID {
			return append(items[:idx:idx], items[idx+1:]...), true
		}
		for key, branch := range items[idx].Followups {
			if updated, ok := RemoveItem(branch, itemID); ok {
				items[idx].Followups[key] = updated
				return items, true
			}
		}
	}
	return items, false
}

// CollectItemIDs adds every id in the tree, nested items included, to ids.
func CollectItemIDs(items []Item, ids map[string]struct{}) {
	for idx := range items {
		ids[items[idx].ID] = struct{}{}
		for _, branch := range items[idx].Followups {
			CollectItemIDs(branch, ids)
		}
	}
}

func CountItems(items []Item) int {
	count := 0
	for idx := range items {
		count++
		for _, branch := range items[idx].Followups {
			count += CountItems(branch)
		}
	}
	return count
}

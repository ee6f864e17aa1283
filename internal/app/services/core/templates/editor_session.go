package templates

import (
	"context"
	"errors"
	"fmt"
	"intake-service/internal/app/contracts"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/exceptions"
	"intake-service/internal/pkg/reorder"
	"sync"
	"time"
)

// SaveFunc persists one snapshot of a session.
type SaveFunc func(ctx context.Context, input SaveInput) error

// ItemPatch carries the plain fields of an item to overwrite. Nil fields are left as they are.
type ItemPatch struct {
	Label             *string
	Description       *string
	Required          *bool
	AllowFreeText     *bool
	Range             *models.NumericRange
	GenderRestriction *models.GenderRestriction
	AgeRestriction    *models.AgeRestriction
}

type SessionState struct {
	Dirty           bool
	Saving          bool
	Closed          bool
	HiddenItemCount int
	LastSaveError   error
	LastSavedAt     time.Time
}

type EditorSessionConfig struct {
	ID          string
	TemplateID  string
	Items       []models.Item
	Manifest    HiddenManifest
	Settings    map[models.VisitType]map[string]models.ItemSettings
	IDGenerator contracts.IDGenerator
	Save        SaveFunc
	Debounce    time.Duration
}

// EditorSession owns the editable tree of one template together with its
// dirty flag and debounce timer. Edits are coalesced into one save per
// debounce window and at most one save runs at a time. An edit made while a
// save runs schedules another save once it finishes.
type EditorSession struct {
	ID         string
	TemplateID string

	mu          sync.Mutex
	items       []models.Item
	manifest    HiddenManifest
	settings    map[models.VisitType]map[string]models.ItemSettings
	idGenerator contracts.IDGenerator
	save        SaveFunc
	debounce    time.Duration
	now         func() time.Time

	timer           *time.Timer
	timerGeneration uint64
	revision        uint64
	dirty           bool
	saving          bool
	pendingSave     bool
	closed          bool
	lastSaveErr     error
	lastSavedAt     time.Time
	saveDone        chan struct{}
}

func NewEditorSession(cfg EditorSessionConfig) *EditorSession {
	items := models.CloneItems(cfg.Items)
	if items == nil {
		items = []models.Item{}
	}

	return &EditorSession{
		ID:          cfg.ID,
		TemplateID:  cfg.TemplateID,
		items:       items,
		manifest:    cfg.Manifest.Clone(),
		settings:    cfg.Settings,
		idGenerator: cfg.IDGenerator,
		save:        cfg.Save,
		debounce:    cfg.Debounce,
		now:         time.Now,
	}
}

// Snapshot returns a copy of the editable tree and the current save state.
func (s *EditorSession) Snapshot() ([]models.Item, SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.CloneItems(s.items), s.stateLocked()
}

func (s *EditorSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *EditorSession) stateLocked() SessionState {
	return SessionState{
		Dirty:           s.dirty,
		Saving:          s.saving,
		Closed:          s.closed,
		HiddenItemCount: len(s.manifest),
		LastSaveError:   s.lastSaveErr,
		LastSavedAt:     s.lastSavedAt,
	}
}

func (s *EditorSession) HasItem(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.FindItem(s.items, itemID) != nil
}

func (s *EditorSession) AddItem(kind models.ItemKind, label string) (string, error) {
	var itemID string
	err := s.mutate(func() error {
		if err := checkEditableKind(kind); err != nil {
			return err
		}

		item := s.newItemLocked(kind, label)
		s.items = append(s.items, item)
		itemID = item.ID
		return nil
	})
	return itemID, err
}

// AddFollowup appends a new item to the branch of parentID keyed by optionKey,
// creating the branch when it does not exist yet.
func (s *EditorSession) AddFollowup(parentID, optionKey string, kind models.ItemKind, label string) (string, error) {
	var itemID string
	err := s.mutate(func() error {
		if err := checkEditableKind(kind); err != nil {
			return err
		}

		item := s.newItemLocked(kind, label)
		parent := models.FindItem(s.items, parentID)
		if parent == nil {
			return exceptions.ErrItemNotFound(nil, parentID)
		}
		if !parent.HasOptionKey(optionKey) {
			return exceptions.ErrFollowupKeyInvalid(nil, parentID, optionKey)
		}

		branch := parent.Branch(optionKey)
		parent.Followups[optionKey] = append(branch, item)
		itemID = item.ID
		return nil
	})
	return itemID, err
}

// DeleteItem removes the item and everything nested under it.
func (s *EditorSession) DeleteItem(itemID string) error {
	return s.mutate(func() error {
		updated, ok := models.RemoveItem(s.items, itemID)
		if !ok {
			return exceptions.ErrItemNotFound(nil, itemID)
		}
		s.items = updated
		return nil
	})
}

func (s *EditorSession) MoveItem(from, to int) error {
	return s.mutate(func() error {
		s.items = reorder.Move(s.items, from, to)
		return nil
	})
}

func (s *EditorSession) MoveFollowup(parentID, optionKey string, from, to int) error {
	return s.mutate(func() error {
		parent := models.FindItem(s.items, parentID)
		if parent == nil {
			return exceptions.ErrItemNotFound(nil, parentID)
		}

		branch, ok := parent.Followups[optionKey]
		if !ok {
			return exceptions.ErrBranchNotFound(nil, parentID, optionKey)
		}
		parent.Followups[optionKey] = reorder.Move(branch, from, to)
		return nil
	})
}

func (s *EditorSession) AddOption(itemID, option string) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		return item.AddOption(option)
	})
}

func (s *EditorSession) RenameOption(itemID, oldOption, newOption string) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		if err := item.RenameOption(oldOption, newOption); err != nil {
			return err
		}
		s.manifest.RenameOptionKey(itemID, oldOption, newOption)
		return nil
	})
}

func (s *EditorSession) DeleteOption(itemID, option string) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		if err := item.DeleteOption(option); err != nil {
			return err
		}
		s.manifest = s.manifest.DropBranch(itemID, option)
		return nil
	})
}

func (s *EditorSession) MoveOption(itemID string, from, to int) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		return item.MoveOption(from, to)
	})
}

func (s *EditorSession) ChangeKind(itemID string, kind models.ItemKind) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		if err := checkEditableKind(kind); err != nil {
			return err
		}
		item.ChangeKind(kind)
		return nil
	})
}

func (s *EditorSession) SetApplicability(itemID string, applicability models.Applicability) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		item.SetApplicability(applicability)
		return nil
	})
}

func (s *EditorSession) AttachImage(itemID, imageHandle string) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		item.AttachedImage = imageHandle
		return nil
	})
}

func (s *EditorSession) UpdateItem(itemID string, patch ItemPatch) error {
	return s.mutateItem(itemID, func(item *models.Item) error {
		if patch.AllowFreeText != nil && item.Kind != models.ItemKindMultiChoice {
			return exceptions.ErrItemFieldNotApplicable(nil, item.ID, "allow_free_text", string(item.Kind))
		}
		if patch.Range != nil {
			if item.Kind != models.ItemKindNumericRange {
				return exceptions.ErrItemFieldNotApplicable(nil, item.ID, "range", string(item.Kind))
			}
			if patch.Range.Min >= patch.Range.Max || patch.Range.Step <= 0 {
				return exceptions.ErrInputValidation(fmt.Errorf("invalid numeric range %v", *patch.Range))
			}
		}

		if patch.Label != nil {
			item.Label = *patch.Label
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Required != nil {
			item.Required = *patch.Required
		}
		if patch.AllowFreeText != nil {
			item.AllowFreeText = *patch.AllowFreeText
		}
		if patch.Range != nil {
			r := *patch.Range
			item.Range = &r
		}
		if patch.GenderRestriction != nil {
			g := *patch.GenderRestriction
			item.GenderRestriction = &g
		}
		if patch.AgeRestriction != nil {
			item.AgeRestriction = cloneAgeRestriction(patch.AgeRestriction)
		}
		return nil
	})
}

// Flush waits for a running save to finish and then saves the current tree
// immediately, cancelling any pending debounce.
func (s *EditorSession) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return exceptions.ErrEditorSessionClosed(nil, s.ID)
		}
		if !s.saving {
			break
		}

		done := s.saveDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return exceptions.ErrServerDeadlineExceeded(ctx.Err())
		}
	}

	s.stopTimerLocked()
	s.pendingSave = false
	input, revision := s.beginSaveLocked()
	s.mu.Unlock()

	err := s.save(ctx, input)
	s.finishSave(revision, err)
	return err
}

// Close discards the tree and stops further saves. A save already running is
// left to finish.
func (s *EditorSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.pendingSave = false
	s.stopTimerLocked()
	s.items = nil
	s.manifest = nil
}

func (s *EditorSession) mutate(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return exceptions.ErrEditorSessionClosed(nil, s.ID)
	}
	if err := apply(); err != nil {
		return err
	}

	s.revision++
	s.dirty = true
	s.scheduleSaveLocked()
	return nil
}

func (s *EditorSession) mutateItem(itemID string, apply func(item *models.Item) error) error {
	return s.mutate(func() error {
		item := models.FindItem(s.items, itemID)
		if item == nil {
			return exceptions.ErrItemNotFound(nil, itemID)
		}
		return apply(item)
	})
}

func (s *EditorSession) scheduleSaveLocked() {
	if s.saving {
		s.pendingSave = true
		return
	}

	s.stopTimerLocked()
	generation := s.timerGeneration
	s.timer = time.AfterFunc(s.debounce, func() {
		s.autosave(generation)
	})
}

// stopTimerLocked also invalidates a timer that already fired but has not yet
// taken the lock.
func (s *EditorSession) stopTimerLocked() {
	s.timerGeneration++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *EditorSession) autosave(generation uint64) {
	s.mu.Lock()
	if generation != s.timerGeneration || s.closed || !s.dirty {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.saving {
		s.pendingSave = true
		s.mu.Unlock()
		return
	}

	input, revision := s.beginSaveLocked()
	s.mu.Unlock()

	err := s.save(context.Background(), input)
	s.finishSave(revision, err)
}

func (s *EditorSession) beginSaveLocked() (SaveInput, uint64) {
	s.saving = true
	s.saveDone = make(chan struct{})

	return SaveInput{
		TemplateID: s.TemplateID,
		Items:      models.CloneItems(s.items),
		Manifest:   s.manifest.Clone(),
		Settings:   s.settings,
	}, s.revision
}

func (s *EditorSession) finishSave(revision uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	close(s.saveDone)
	s.saveDone = nil
	s.lastSaveErr = err
	if err == nil {
		s.lastSavedAt = s.now()
		if s.revision == revision {
			s.dirty = false
		}
	}

	if s.closed {
		return
	}

	lockBusy := errors.Is(err, ErrSaveLockBusy)
	if s.pendingSave || (lockBusy && s.dirty) {
		s.pendingSave = false
		s.scheduleSaveLocked()
	}
}

func (s *EditorSession) newItemLocked(kind models.ItemKind, label string) models.Item {
	item := models.Item{
		ID:    s.newIDLocked(),
		Label: label,
		Kind:  models.ItemKindText,
	}
	item.ChangeKind(kind)
	item.SetApplicability(bothVisits)
	return item
}

// newIDLocked panics when the generator returns an id already used in the
// tree or by a hidden item.
func (s *EditorSession) newIDLocked() string {
	id := s.idGenerator.NewID()

	ids := make(map[string]struct{})
	models.CollectItemIDs(s.items, ids)
	for _, entry := range s.manifest {
		models.CollectItemIDs([]models.Item{entry.Item}, ids)
	}
	if _, exists := ids[id]; exists || id == "" {
		panic(fmt.Sprintf("editor session %s: generated item id %q collides with an existing item", s.ID, id))
	}
	return id
}

func checkEditableKind(kind models.ItemKind) error {
	if !kind.IsValid() {
		return exceptions.ErrItemKindInvalid(nil, string(kind))
	}
	if kind.IsHidden() {
		return exceptions.ErrHiddenKindNotEditable(nil, string(kind))
	}
	return nil
}

func cloneAgeRestriction(restriction *models.AgeRestriction) *models.AgeRestriction {
	clone := *restriction
	if restriction.MinAge != nil {
		minAge := *restriction.MinAge
		clone.MinAge = &minAge
	}
	if restriction.MaxAge != nil {
		maxAge := *restriction.MaxAge
		clone.MaxAge = &maxAge
	}
	return &clone
}

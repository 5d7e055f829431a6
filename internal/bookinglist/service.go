// Package bookinglist loads and manages the user's booking lists: the three
// remote lists fetched concurrently, classified into display sections, plus
// the bulk selection and deletion workflows operating on them.
package bookinglist

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

// Section names one display list of the bookings view.
type Section string

const (
	SectionToday      Section = "today"
	SectionUpcoming   Section = "upcoming"
	SectionForSomeone Section = "for_someone"
	SectionHistory    Section = "history"
)

// DeletableSections are the sections whose entries can be cancelled. History
// records the past and is read-only.
var DeletableSections = []Section{SectionToday, SectionUpcoming, SectionForSomeone}

// remoteAPI is the slice of the upstream client the bookings view needs.
type remoteAPI interface {
	FetchMyBookings(ctx context.Context, token string) ([]model.Booking, error)
	FetchForSomeoneBookings(ctx context.Context, token string) ([]model.Booking, error)
	FetchHistory(ctx context.Context, token string) ([]model.Booking, error)
	DeleteBookings(ctx context.Context, token string, items []model.DeleteBookingItem) error
}

type Clock func() time.Time

type Service struct {
	api   remoteAPI
	clock Clock
	log   *logger.Logger
}

func NewService(api remoteAPI, clock Clock, log *logger.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		api:   api,
		clock: clock,
		log:   log,
	}
}

// Snapshot is one consistent load of all four display sections.
type Snapshot struct {
	Today      []model.Booking `json:"today"`
	Upcoming   []model.Booking `json:"upcoming"`
	ForSomeone []model.Booking `json:"for_someone"`
	History    []model.Booking `json:"history"`
}

// Section returns the bookings of one display section.
func (s *Snapshot) Section(section Section) []model.Booking {
	switch section {
	case SectionToday:
		return s.Today
	case SectionUpcoming:
		return s.Upcoming
	case SectionForSomeone:
		return s.ForSomeone
	case SectionHistory:
		return s.History
	}
	return nil
}

// Find locates a booking in a section by its identity key.
func (s *Snapshot) Find(section Section, key string) (model.Booking, bool) {
	for _, b := range s.Section(section) {
		if KeyOf(b) == key {
			return b, true
		}
	}
	return model.Booking{}, false
}

// Remove drops the bookings with the given keys from a section. It touches
// the snapshot only, never the remote service.
func (s *Snapshot) Remove(section Section, keys map[string]struct{}) {
	filtered := make([]model.Booking, 0, len(s.Section(section)))
	for _, b := range s.Section(section) {
		if _, gone := keys[KeyOf(b)]; gone {
			continue
		}
		filtered = append(filtered, b)
	}

	switch section {
	case SectionToday:
		s.Today = filtered
	case SectionUpcoming:
		s.Upcoming = filtered
	case SectionForSomeone:
		s.ForSomeone = filtered
	case SectionHistory:
		s.History = filtered
	}
}

// KeyOf derives the identity key of a booking: the reference when present,
// the numeric id otherwise. Non-actionable records never reach a snapshot.
func KeyOf(b model.Booking) string {
	if b.BookingReference != "" {
		return b.BookingReference
	}
	return "id:" + strconv.FormatInt(b.BookingID, 10)
}

// Load fetches the three remote lists concurrently and classifies them into
// display sections. Any single fetch failure fails the whole load; a partial
// bookings view is never shown.
func (s *Service) Load(ctx context.Context, token string) (*Snapshot, error) {
	var mine, forSomeone, history []model.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mine, err = s.api.FetchMyBookings(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		forSomeone, err = s.api.FetchForSomeoneBookings(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.api.FetchHistory(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := s.classify(mine, forSomeone, history)
	s.log.Info("Bookings loaded",
		"today", len(snap.Today),
		"upcoming", len(snap.Upcoming),
		"for_someone", len(snap.ForSomeone),
		"history", len(snap.History),
	)
	return snap, nil
}

func (s *Service) classify(mine, forSomeone, history []model.Booking) *Snapshot {
	today := midnight(s.clock())
	snap := &Snapshot{}

	for _, b := range s.actionable(mine) {
		date, err := b.Date()
		if err != nil {
			s.log.Warn("Dropping booking with unreadable date", "reference", b.BookingReference, "raw", b.FromDate)
			continue
		}
		switch {
		case date.Equal(today):
			snap.Today = append(snap.Today, b)
		case date.After(today):
			snap.Upcoming = append(snap.Upcoming, b)
		}
	}

	for _, b := range s.actionable(forSomeone) {
		date, err := b.Date()
		if err != nil {
			s.log.Warn("Dropping booking with unreadable date", "reference", b.BookingReference, "raw", b.FromDate)
			continue
		}
		if !date.Before(today) {
			snap.ForSomeone = append(snap.ForSomeone, b)
		}
	}

	snap.History = s.actionable(history)

	sortByDate(snap.Today, true)
	sortByDate(snap.Upcoming, true)
	sortByDate(snap.ForSomeone, true)
	sortByDate(snap.History, false)
	return snap
}

// actionable filters out records lacking both the id and the reference; they
// cannot be cancelled and would render as dead rows.
func (s *Service) actionable(bookings []model.Booking) []model.Booking {
	kept := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.Actionable() {
			s.log.Warn("Dropping booking without id or reference", "raw_date", b.FromDate)
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

func sortByDate(bookings []model.Booking, ascending bool) {
	sort.SliceStable(bookings, func(i, j int) bool {
		di, erri := bookings[i].Date()
		dj, errj := bookings[j].Date()
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		if ascending {
			return di.Before(dj)
		}
		return di.After(dj)
	})
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeleteOne cancels a single booking after the caller confirmed it. The
// snapshot entry is removed only when the remote delete succeeded.
func (s *Service) DeleteOne(ctx context.Context, token string, snap *Snapshot, section Section, key string) error {
	if section == SectionHistory {
		return apperrors.InvalidInput("History entries cannot be deleted")
	}

	booking, ok := snap.Find(section, key)
	if !ok {
		return apperrors.NotFound("Booking")
	}

	if err := s.api.DeleteBookings(ctx, token, []model.DeleteBookingItem{s.deleteItem(booking)}); err != nil {
		return err
	}

	snap.Remove(section, map[string]struct{}{key: {}})
	return nil
}

// DeleteChecked cancels every checked booking of a section in one batched
// call. An empty selection is a user mistake, not a no-op. Removal from the
// snapshot is all-or-nothing with the remote call.
func (s *Service) DeleteChecked(ctx context.Context, token string, snap *Snapshot, sel *BulkSelection, section Section) (int, error) {
	if section == SectionHistory {
		return 0, apperrors.InvalidInput("History entries cannot be deleted")
	}

	keys := sel.Checked(section)
	if len(keys) == 0 {
		return 0, apperrors.InvalidInput("Please select at least one booking to delete")
	}

	items := make([]model.DeleteBookingItem, 0, len(keys))
	removed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		booking, ok := snap.Find(section, key)
		if !ok {
			continue
		}
		items = append(items, s.deleteItem(booking))
		removed[key] = struct{}{}
	}
	if len(items) == 0 {
		return 0, apperrors.NotFound("Checked bookings")
	}

	if err := s.api.DeleteBookings(ctx, token, items); err != nil {
		return 0, err
	}

	snap.Remove(section, removed)
	sel.Clear(section)
	s.log.Info("Bookings deleted", "section", string(section), "count", len(items))
	return len(items), nil
}

func (s *Service) deleteItem(b model.Booking) model.DeleteBookingItem {
	isToday := false
	if date, err := b.Date(); err == nil {
		isToday = date.Equal(midnight(s.clock()))
	}
	return model.DeleteBookingItem{
		BookingReference: b.BookingReference,
		BookingID:        b.BookingID,
		SeatName:         b.SeatName,
		IsCurrentDay:     isToday,
	}
}

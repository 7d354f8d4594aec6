package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/listing"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

const defaultSearchLimit = 50

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

// FilterInput changes the listing facets; nil fields are left alone.
type FilterInput struct {
	Search       *string         `json:"search" binding:"omitempty,max=100"`
	Category     *string         `json:"category" binding:"omitempty,max=40"`
	Neighborhood *string         `json:"neighborhood" binding:"omitempty,max=80"`
	Subtype      *entity.Subtype `json:"subtype" binding:"omitempty,oneof=ALL COMMERCE SERVICE"`
	MaxDistance  *float64        `json:"maxDistance" binding:"omitempty,gt=0"`
	// AnyDistance drops the distance limit.
	AnyDistance bool `json:"anyDistance"`
}

// ListingPatch edits a vendor listing; nil fields are left alone and an
// empty Website clears it.
type ListingPatch struct {
	Name        *string            `json:"name" binding:"omitempty,min=2,max=120"`
	Phone       *string            `json:"phone" binding:"omitempty,min=8,max=20"`
	Description *string            `json:"description" binding:"omitempty,max=1000"`
	Website     *string            `json:"website" binding:"omitempty,max=200"`
	Categories  []string           `json:"categories" binding:"omitempty,max=5,dive,required,max=40"`
	Subtype     *entity.Subtype    `json:"subtype" binding:"omitempty,oneof=COMMERCE SERVICE"`
	Visibility  *entity.Visibility `json:"visibility"`
	Photo       string             `json:"photo" binding:"omitempty,datauri"`
	Latitude    *float64           `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64           `json:"longitude" binding:"omitempty,longitude"`
}

type FeedbackInput struct {
	Name    string `json:"name" binding:"max=120"`
	Email   string `json:"email" binding:"omitempty,email"`
	Message string `json:"message" binding:"required,min=3,max=2000"`
}

type VendorService struct {
	*Deps
	FeedbackInbox string
}

func NewVendorService(d *Deps, feedbackInbox string) *VendorService {
	return &VendorService{Deps: d, FeedbackInbox: feedbackInbox}
}

// List returns the vendors matching the session facets in display order.
func (v *VendorService) List(s *Session) []entity.Vendor {
	st := s.State()
	return publicAll(listing.Query(st.Vendors, st.Filters(), v.now()))
}

// Get returns one vendor. Owners and admins see the hidden contact fields.
func (v *VendorService) Get(s *Session, id string) (entity.Vendor, error) {
	st := s.State()
	vendor, ok := st.VendorByID(id)
	if !ok {
		return entity.Vendor{}, ErrVendorNotFound
	}
	if cu := st.CurrentUser; cu != nil && (cu.ID == id || cu.Type.Privileged()) {
		return vendor, nil
	}
	return vendor.Public(), nil
}

// Search ranks vendors by full-text relevance when an index is configured.
// The other facets still apply. Without an index it is the plain listing
// with q as the search facet.
func (v *VendorService) Search(ctx context.Context, s *Session, q string, limit int) ([]entity.Vendor, error) {
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}
	st := s.State()
	q = strings.TrimSpace(q)
	f := st.Filters()
	if q == "" || v.Index == nil {
		f.Search = q
		out := listing.Query(st.Vendors, f, v.now())
		if len(out) > limit {
			out = out[:limit]
		}
		return publicAll(out), nil
	}

	ids, err := v.Index.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	f.Search = ""
	out := make([]entity.Vendor, 0, len(ids))
	for _, id := range ids {
		vendor, ok := st.VendorByID(id)
		if ok && f.Match(&vendor) {
			out = append(out, vendor.Public())
		}
	}
	return out, nil
}

// ApplyFilters sets the listing facets on the session.
func (v *VendorService) ApplyFilters(s *Session, in FilterInput) (state.State, error) {
	if err := validation.Struct(in); err != nil {
		return state.State{}, err
	}
	st := s.State()
	if in.Search != nil {
		st = s.Dispatch(state.SetSearch{Query: strings.TrimSpace(*in.Search)})
	}
	if in.Category != nil {
		st = s.Dispatch(state.SetCategory{Category: strings.TrimSpace(*in.Category)})
	}
	if in.Neighborhood != nil {
		st = s.Dispatch(state.SetNeighborhood{Neighborhood: strings.TrimSpace(*in.Neighborhood)})
	}
	if in.Subtype != nil {
		st = s.Dispatch(state.SetSubtype{Subtype: *in.Subtype})
	}
	if in.AnyDistance {
		st = s.Dispatch(state.SetMaxDistance{})
	} else if in.MaxDistance != nil {
		st = s.Dispatch(state.SetMaxDistance{Km: in.MaxDistance})
	}
	return st, nil
}

// Locate sets the viewer position: at, when given, or the IP estimate.
func (v *VendorService) Locate(ctx context.Context, s *Session, ip string, at *entity.Location) entity.Location {
	var loc entity.Location
	switch {
	case at != nil:
		loc = *at
	case v.Locator != nil:
		loc = v.Locator.CurrentLocation(ctx, ip)
	default:
		if cur := s.State().Location; cur != nil {
			return *cur
		}
		return loc
	}
	s.Dispatch(state.SetLocation{Location: loc})
	return loc
}

func (v *VendorService) AddReview(ctx context.Context, s *Session, vendorID string, in ReviewInput) (entity.Review, error) {
	st := s.State()
	u, err := currentUser(st)
	if err != nil {
		return entity.Review{}, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return entity.Review{}, ErrInvalidRating
	}
	if err := validation.Struct(in); err != nil {
		return entity.Review{}, err
	}
	if _, ok := st.VendorByID(vendorID); !ok {
		return entity.Review{}, ErrVendorNotFound
	}
	if u.ID == vendorID {
		return entity.Review{}, ErrForbidden
	}

	r := entity.Review{
		ID:       uuid.NewString(),
		UserID:   u.ID,
		UserName: u.Name,
		Rating:   in.Rating,
		Date:     displayDate(v.now()),
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		r.Comment = &c
	}
	s.Dispatch(state.AddReview{VendorID: vendorID, Review: r})
	s.Touch()
	v.logger().WithFields(logrus.Fields{"session": s.ID, "vendor_id": vendorID, "rating": r.Rating}).Info("review added")
	return r, nil
}

// ReplyReview answers a review. Only the listing owner or an admin may reply;
// a second reply replaces the first.
func (v *VendorService) ReplyReview(ctx context.Context, s *Session, vendorID, reviewID, reply string) error {
	st := s.State()
	u, err := currentUser(st)
	if err != nil {
		return err
	}
	vendor, ok := st.VendorByID(vendorID)
	if !ok {
		return ErrVendorNotFound
	}
	if u.ID != vendorID && !u.Type.Privileged() {
		return ErrForbidden
	}
	found := false
	for _, r := range vendor.Reviews {
		if r.ID == reviewID {
			found = true
			break
		}
	}
	if !found {
		return ErrReviewNotFound
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fmt.Errorf("%w: reply is empty", ErrInvalidInput)
	}
	s.Dispatch(state.ReplyReview{VendorID: vendorID, ReviewID: reviewID, Reply: reply, ReplyDate: displayDate(v.now())})
	s.Touch()
	return nil
}

// UpdateListing applies an owner or admin edit. Reviews and the derived rating
// are kept from the current record.
func (v *VendorService) UpdateListing(ctx context.Context, s *Session, vendorID string, p ListingPatch) (entity.Vendor, error) {
	if err := validation.Struct(p); err != nil {
		return entity.Vendor{}, err
	}
	st := s.State()
	u, err := currentUser(st)
	if err != nil {
		return entity.Vendor{}, err
	}
	vendor, ok := st.VendorByID(vendorID)
	if !ok {
		return entity.Vendor{}, ErrVendorNotFound
	}
	if u.ID != vendorID && !u.Type.Privileged() {
		return entity.Vendor{}, ErrForbidden
	}

	if p.Name != nil {
		vendor.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		vendor.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Description != nil {
		vendor.Description = strings.TrimSpace(*p.Description)
	}
	if p.Website != nil {
		if w := strings.TrimSpace(*p.Website); w != "" {
			vendor.Website = &w
		} else {
			vendor.Website = nil
		}
	}
	if p.Categories != nil {
		vendor.Categories = cleanCategories(p.Categories)
	}
	if p.Subtype != nil {
		vendor.Subtype = *p.Subtype
	}
	if p.Visibility != nil {
		vendor.Visibility = *p.Visibility
	}
	if p.Latitude != nil && p.Longitude != nil {
		lat, lng := *p.Latitude, *p.Longitude
		vendor.Latitude, vendor.Longitude = &lat, &lng
	}
	if p.Photo != "" {
		url, err := v.uploadPhoto(ctx, "vendors", vendorID, p.Photo)
		if err != nil {
			return entity.Vendor{}, err
		}
		vendor.PhotoURL = url
	}

	next := s.Dispatch(state.UpdateVendor{Vendor: vendor})
	s.Touch()
	if updated, ok := next.VendorByID(vendorID); ok {
		vendor = updated
	}
	v.logger().WithFields(logrus.Fields{"session": s.ID, "vendor_id": vendorID, "by": u.ID}).Info("listing updated")
	return vendor, nil
}

// SendFeedback forwards a message to the configured inbox.
func (v *VendorService) SendFeedback(ctx context.Context, s *Session, in FeedbackInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if v.FeedbackInbox == "" {
		return fmt.Errorf("%w: no feedback inbox configured", ErrNotificationFailed)
	}
	name, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.Email)
	if cu := s.State().CurrentUser; cu != nil {
		if name == "" {
			name = cu.Name
		}
		if email == "" {
			email = cu.Email
		}
	}
	return v.notify(ctx, TemplateFeedback, v.FeedbackInbox, map[string]any{
		"Name":    name,
		"Email":   email,
		"Message": strings.TrimSpace(in.Message),
	})
}

func publicAll(vs []entity.Vendor) []entity.Vendor {
	out := make([]entity.Vendor, len(vs))
	for i := range vs {
		out[i] = vs[i].Public()
	}
	return out
}

package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

type RegisterUserInput struct {
	Name            string `json:"name" binding:"required,min=2,max=120"`
	Email           string `json:"email" binding:"required,email"`
	CPF             string `json:"cpf" binding:"required,cpf"`
	PostalCode      string `json:"postalCode" binding:"required,cep"`
	Number          string `json:"number" binding:"required,max=20"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Photo           string `json:"photo" binding:"omitempty,datauri"`
}

type RegisterVendorInput struct {
	OwnerName       string         `json:"ownerName" binding:"required,min=2,max=120"`
	Name            string         `json:"name" binding:"required,min=2,max=120"`
	Email           string         `json:"email" binding:"required,email"`
	Document        string         `json:"document" binding:"required,document"`
	Phone           string         `json:"phone" binding:"required,min=8,max=20"`
	PostalCode      string         `json:"postalCode" binding:"required,cep"`
	Number          string         `json:"number" binding:"required,max=20"`
	Categories      []string       `json:"categories" binding:"required,min=1,max=5,dive,required,max=40"`
	Description     string         `json:"description" binding:"max=1000"`
	Website         string         `json:"website" binding:"omitempty,url"`
	Subtype         entity.Subtype `json:"subtype" binding:"required,oneof=COMMERCE SERVICE"`
	Password        string         `json:"password" binding:"required,pwd"`
	ConfirmPassword string         `json:"confirmPassword" binding:"required"`
	Photo           string         `json:"photo" binding:"omitempty,datauri"`
	Latitude        *float64       `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64       `json:"longitude" binding:"omitempty,longitude"`

	// IP places the vendor when no coordinates are given.
	IP string `json:"-"`
}

// RegistrationService creates accounts. A successful registration signs the
// new account in on the session.
type RegistrationService struct {
	*Deps
}

func NewRegistrationService(d *Deps) *RegistrationService {
	return &RegistrationService{Deps: d}
}

func (r *RegistrationService) RegisterUser(ctx context.Context, s *Session, in RegisterUserInput) (*entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	cpf := validation.Digits(in.CPF)
	if err := checkAvailable(s.State(), email, cpf); err != nil {
		return nil, err
	}
	addr, err := r.resolveAddress(ctx, in.PostalCode, in.Number)
	if err != nil {
		return nil, err
	}
	password, err := r.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := entity.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		CPF:      cpf,
		Address:  addr,
		Type:     entity.UserTypeUser,
		Password: password,
	}
	if u.PhotoURL, err = r.uploadPhoto(ctx, "users", u.ID, in.Photo); err != nil {
		return nil, err
	}

	s.Dispatch(state.AddUser{User: u})
	s.Dispatch(state.Login{User: u})
	s.Touch()
	r.logger().WithFields(logrus.Fields{"session": s.ID, "user_id": u.ID}).Info("user registered")
	return &u, nil
}

func (r *RegistrationService) RegisterVendor(ctx context.Context, s *Session, in RegisterVendorInput) (*entity.User, *entity.Vendor, error) {
	if err := validation.Struct(in); err != nil {
		return nil, nil, err
	}
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, nil, err
	}
	email := strings.TrimSpace(in.Email)
	doc := validation.Digits(in.Document)
	if err := checkAvailable(s.State(), email, doc); err != nil {
		return nil, nil, err
	}
	addr, err := r.resolveAddress(ctx, in.PostalCode, in.Number)
	if err != nil {
		return nil, nil, err
	}
	password, err := r.hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	photo, err := r.uploadPhoto(ctx, "vendors", id, in.Photo)
	if err != nil {
		return nil, nil, err
	}
	u := entity.User{
		ID:       id,
		Name:     strings.TrimSpace(in.OwnerName),
		Email:    email,
		CPF:      doc,
		Address:  addr,
		Type:     entity.UserTypeVendor,
		PhotoURL: photo,
		Password: password,
	}
	v := entity.Vendor{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Document:    doc,
		Phone:       strings.TrimSpace(in.Phone),
		Address:     addr,
		Categories:  cleanCategories(in.Categories),
		Description: strings.TrimSpace(in.Description),
		PhotoURL:    photo,
		Reviews:     []entity.Review{},
		Visibility:  entity.Visibility{ShowPhone: true, ShowAddress: true, ShowWebsite: true},
		Subtype:     in.Subtype,
	}
	if w := strings.TrimSpace(in.Website); w != "" {
		v.Website = &w
	}
	if in.Latitude != nil && in.Longitude != nil {
		lat, lng := *in.Latitude, *in.Longitude
		v.Latitude, v.Longitude = &lat, &lng
	} else if r.Locator != nil {
		loc := r.Locator.CurrentLocation(ctx, in.IP)
		v.Latitude, v.Longitude = &loc.Lat, &loc.Lng
	}

	s.Dispatch(state.AddUser{User: u})
	s.Dispatch(state.AddVendor{Vendor: v})
	s.Dispatch(state.Login{User: u})
	s.Touch()
	r.logger().WithFields(logrus.Fields{"session": s.ID, "vendor_id": id}).Info("vendor registered")
	return &u, &v, nil
}

// checkAvailable rejects banned values first, then duplicates. Emails compare
// case-insensitively.
func checkAvailable(st state.State, email, document string) error {
	if st.IsBanned(document) || st.IsBanned(email) || st.IsBanned(normalizeEmail(email)) {
		return ErrDocumentBanned
	}
	for _, u := range st.Users {
		if strings.EqualFold(u.Email, email) {
			return ErrEmailTaken
		}
		if document != "" && u.CPF == document {
			return ErrDocumentTaken
		}
	}
	for _, v := range st.Vendors {
		if document != "" && v.Document == document {
			return ErrDocumentTaken
		}
	}
	return nil
}

func (r *RegistrationService) resolveAddress(ctx context.Context, postalCode, number string) (string, error) {
	if r.Addresses == nil {
		return strings.TrimSpace(postalCode + ", " + number), nil
	}
	a, err := r.Addresses.Resolve(ctx, postalCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return a.Format(number), nil
}

func cleanCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		k := strings.ToLower(c)
		if c == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

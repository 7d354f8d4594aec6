package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
)

func userInput() RegisterUserInput {
	return RegisterUserInput{
		Name:            "Carla",
		Email:           "carla@example.com",
		CPF:             "987.654.321-00",
		PostalCode:      "01310-100",
		Number:          "900",
		Password:        "carla-pass",
		ConfirmPassword: "carla-pass",
	}
}

func vendorInput() RegisterVendorInput {
	return RegisterVendorInput{
		OwnerName:       "Diego",
		Name:            "Oficina do Diego",
		Email:           "diego@oficina.com",
		Document:        "98.765.432/0001-10",
		Phone:           "11999990000",
		PostalCode:      "01310-100",
		Number:          "12",
		Categories:      []string{"Mecânica", " mecânica ", "Elétrica"},
		Subtype:         entity.SubtypeService,
		Password:        "diego-pass",
		ConfirmPassword: "diego-pass",
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	u, err := f.register.RegisterUser(ctx, s, userInput())
	require.NoError(t, err)
	assert.Equal(t, "98765432100", u.CPF)
	assert.Equal(t, entity.UserTypeUser, u.Type)
	assert.Equal(t, "Avenida Paulista, 900, Bela Vista, São Paulo - SP", u.Address)
	require.NotNil(t, s.State().CurrentUser)
	assert.Equal(t, u.ID, s.State().CurrentUser.ID)
	s.Wait()

	stored, err := f.store.FindUser(ctx, "email", "carla@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "carla-pass", stored.Password)
}

func TestRegisterUser_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	in := userInput()
	in.Email = "ANA@example.com"
	_, err := f.register.RegisterUser(ctx, s, in)
	assert.ErrorIs(t, err, ErrEmailTaken, "emails are unique regardless of case")

	in = userInput()
	in.CPF = "111.222.333-44"
	_, err = f.register.RegisterUser(ctx, s, in)
	assert.ErrorIs(t, err, ErrDocumentTaken)

	in = userInput()
	in.ConfirmPassword = "other-pass"
	_, err = f.register.RegisterUser(ctx, s, in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	in = userInput()
	in.Email = "not-an-email"
	_, err = f.register.RegisterUser(ctx, s, in)
	assert.Error(t, err)

	s.Dispatch(state.BanDocument{Value: "98765432100"})
	_, err = f.register.RegisterUser(ctx, s, userInput())
	assert.ErrorIs(t, err, ErrDocumentBanned, "bans win over everything else")

	assert.Len(t, s.State().Users, 4, "nothing was added")
}

func TestRegisterUser_AddressOutsideServedArea(t *testing.T) {
	f := newFixture(t)
	f.deps.Addresses = fakeAddresses{err: assert.AnError}
	s := f.session(t, "dev-1")

	_, err := f.register.RegisterUser(context.Background(), s, userInput())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, s.State().Users)
}

func TestRegisterVendor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.session(t, "dev-1")

	in := vendorInput()
	in.Photo = "data:image/png;base64,iVBORw0KGgo="
	u, v, err := f.register.RegisterVendor(ctx, s, in)
	require.NoError(t, err)

	assert.Equal(t, u.ID, v.ID, "the listing shares the owner id")
	assert.Equal(t, entity.UserTypeVendor, u.Type)
	assert.Equal(t, "98765432000110", v.Document)
	assert.Equal(t, []string{"Mecânica", "Elétrica"}, v.Categories)
	require.NotNil(t, v.Latitude)
	assert.InDelta(t, -23.56, *v.Latitude, 1e-9, "placed by the locator")
	require.NotNil(t, v.PhotoURL)
	assert.Equal(t, "https://cdn.test/vendors/"+v.ID+".png", *v.PhotoURL)
	assert.True(t, v.Visibility.ShowPhone)
	s.Wait()

	stored, err := f.store.FindVendor(ctx, "id", v.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Oficina do Diego", stored.Name)
	assert.Zero(t, stored.ReviewCount)

	_, _, err = f.register.RegisterVendor(ctx, s, vendorInput())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterVendor_ExplicitCoordinatesWin(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "dev-1")

	in := vendorInput()
	lat, lng := -22.9, -43.2
	in.Latitude, in.Longitude = &lat, &lng
	_, v, err := f.register.RegisterVendor(context.Background(), s, in)
	require.NoError(t, err)
	assert.InDelta(t, -22.9, *v.Latitude, 1e-9)
	assert.InDelta(t, -43.2, *v.Longitude, 1e-9)
}

func TestRegisterVendor_PhotoNeedsStore(t *testing.T) {
	f := newFixture(t)
	f.deps.Photos = nil
	s := f.session(t, "dev-1")

	in := vendorInput()
	in.Photo = "data:image/png;base64,iVBORw0KGgo="
	_, _, err := f.register.RegisterVendor(context.Background(), s, in)
	assert.ErrorIs(t, err, ErrPhotoUploadDisabled)
}

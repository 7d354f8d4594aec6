package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func TestVendor_ReviewAndReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)

	reader := f.session(t, "dev-reader")
	f.signIn(t, reader, "u1")
	r, err := f.vendors.AddReview(ctx, reader, "v1", ReviewInput{Rating: 4, Comment: "Pão quentinho"})
	require.NoError(t, err)
	assert.Equal(t, "01/03/2026", r.Date)
	assert.Equal(t, "Ana", r.UserName)
	reader.Wait()

	owner := f.session(t, "dev-owner")
	f.signIn(t, owner, "v1")
	v, ok := owner.State().VendorByID("v1")
	require.True(t, ok)
	assert.Equal(t, 1, v.ReviewCount)
	assert.InDelta(t, 4.0, v.Rating, 1e-9)

	require.NoError(t, f.vendors.ReplyReview(ctx, owner, "v1", r.ID, "Obrigado!"))
	owner.Wait()

	stored, err := f.store.FindVendor(ctx, "id", "v1")
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 1)
	require.NotNil(t, stored.Reviews[0].Reply)
	assert.Equal(t, "Obrigado!", *stored.Reviews[0].Reply)
	assert.Equal(t, "01/03/2026", *stored.Reviews[0].ReplyDate)
}

func TestVendor_ReviewRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	_, err := f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	f.signIn(t, s, "u1")
	_, err = f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.vendors.AddReview(ctx, s, "missing", ReviewInput{Rating: 3})
	assert.ErrorIs(t, err, ErrVendorNotFound)

	f.signIn(t, s, "v1")
	_, err = f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden, "owners cannot review their own listing")
}

func TestVendor_ReplyRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "u1")
	r, err := f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, f.vendors.ReplyReview(ctx, s, "v1", r.ID, "eu mesmo"), ErrForbidden)

	f.signIn(t, s, "admin")
	assert.ErrorIs(t, f.vendors.ReplyReview(ctx, s, "v1", "nope", "oi"), ErrReviewNotFound)
	assert.ErrorIs(t, f.vendors.ReplyReview(ctx, s, "v1", r.ID, "   "), ErrInvalidInput)
	assert.NoError(t, f.vendors.ReplyReview(ctx, s, "v1", r.ID, "Moderado"))
}

func TestVendor_GetHonorsVisibility(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	v, err := f.vendors.Get(s, "v1")
	require.NoError(t, err)
	assert.Empty(t, v.Phone, "hidden from the public")

	f.signIn(t, s, "v1")
	v, err = f.vendors.Get(s, "v1")
	require.NoError(t, err)
	assert.Equal(t, "1133334444", v.Phone, "owners see everything")

	_, err = f.vendors.Get(s, "missing")
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestVendor_ListUsesSessionFacets(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)
	lat, lng := -23.60, -46.70
	f.seed(t, nil, []entity.Vendor{{
		ID: "v2", Name: "Chaveiro 24h", Document: "55566677788", Latitude: &lat, Longitude: &lng,
		Categories: []string{"Chaveiro"}, Subtype: entity.SubtypeService,
		FeaturedUntil: t0.Add(48 * time.Hour).UnixMilli(),
	}})
	s := f.session(t, "dev-1")

	ids := func(vs []entity.Vendor) []string {
		out := make([]string, len(vs))
		for i := range vs {
			out[i] = vs[i].ID
		}
		return out
	}
	assert.Equal(t, []string{"v2", "v1"}, ids(f.vendors.List(s)), "featured first")

	_, err := f.vendors.ApplyFilters(s, FilterInput{Subtype: ptr(entity.SubtypeCommerce)})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, ids(f.vendors.List(s)))

	f.vendors.Locate(context.Background(), s, "", &entity.Location{Lat: -23.561, Lng: -46.656})
	_, err = f.vendors.ApplyFilters(s, FilterInput{Subtype: ptr(entity.SubtypeAll), MaxDistance: ptr(1.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, ids(f.vendors.List(s)), "v2 is several km away")

	_, err = f.vendors.ApplyFilters(s, FilterInput{AnyDistance: true})
	require.NoError(t, err)
	assert.Len(t, f.vendors.List(s), 2)
}

func TestVendor_SearchUsesIndexOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	f.seed(t, nil, []entity.Vendor{{ID: "v2", Name: "Padaria Nova", Document: "1", Subtype: entity.SubtypeCommerce}})
	s := f.session(t, "dev-1")

	f.index.ids = []string{"v2", "ghost", "v1"}
	got, err := f.vendors.Search(ctx, s, "padaria", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v2", got[0].ID)
	assert.Equal(t, "v1", got[1].ID)
	assert.Empty(t, got[1].Phone)

	f.deps.Index = nil
	got, err = f.vendors.Search(ctx, s, "nova", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].ID)
}

func TestVendor_UpdateListingKeepsReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "u1")
	_, err := f.vendors.AddReview(ctx, s, "v1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	_, err = f.vendors.UpdateListing(ctx, s, "v1", ListingPatch{Name: ptr("Hack")})
	assert.ErrorIs(t, err, ErrForbidden)

	f.signIn(t, s, "v1")
	v, err := f.vendors.UpdateListing(ctx, s, "v1", ListingPatch{
		Name:       ptr("Padaria Central Ltda"),
		Website:    ptr("https://padaria.example"),
		Visibility: &entity.Visibility{ShowPhone: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Padaria Central Ltda", v.Name)
	assert.Equal(t, 1, v.ReviewCount)
	assert.InDelta(t, 5.0, v.Rating, 1e-9)
	s.Wait()

	stored, _ := f.store.FindVendor(ctx, "id", "v1")
	assert.Equal(t, "Padaria Central Ltda", stored.Name)
	assert.Len(t, stored.Reviews, 1)
	assert.True(t, stored.Visibility.ShowPhone)

	v, err = f.vendors.UpdateListing(ctx, s, "v1", ListingPatch{Website: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, v.Website, "an empty website clears it")
}

func TestVendor_SendFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "u1")

	require.NoError(t, f.vendors.SendFeedback(ctx, s, FeedbackInput{Message: "Adorei o app"}))
	msg := f.notifier.last(t)
	assert.Equal(t, TemplateFeedback, msg.Template)
	assert.Equal(t, "feedback@guia.test", msg.To)
	assert.Equal(t, "ana@example.com", msg.Params["Email"])

	f.notifier.err = assert.AnError
	assert.ErrorIs(t, f.vendors.SendFeedback(ctx, s, FeedbackInput{Message: "de novo"}), ErrNotificationFailed)
}

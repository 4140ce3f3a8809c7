package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"wanderlust/listings-service/internal/app/listings/access"
	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingProvider имитирует недоступный геокодер
type failingProvider struct{}

func (failingProvider) Lookup(ctx context.Context, text string) ([]geo.Result, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}

func TestProperty_GeometryAlwaysPresent(t *testing.T) {
	catalog, _ := newMemCatalog(geo.NewEnricher(failingProvider{}, 0))
	owner := &access.Actor{ID: "owner"}

	for _, location := range []string{"Paris", "asdkjhqwe", "", "  "} {
		t.Run(location, func(t *testing.T) {
			listing, err := catalog.CreateListing(context.Background(), owner, &entity.CreateListingRequest{
				Title:    "Somewhere",
				Location: location,
			})

			require.NoError(t, err)
			assert.Equal(t, entity.GeometryTypePoint, listing.Geometry.Type)
			require.Len(t, listing.Geometry.Coordinates, 2)
			for _, c := range listing.Geometry.Coordinates {
				assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
			}
			assert.Equal(t, []float64{78.9629, 20.5937}, listing.Geometry.Coordinates)
			assert.Equal(t, location, listing.Location)
		})
	}
}

func TestProperty_CascadeDeleteCompleteness(t *testing.T) {
	ctx := context.Background()
	catalog, db := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	for n := 0; n <= 5; n++ {
		listing, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: fmt.Sprintf("L%d", n)})
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			reviewer := &access.Actor{ID: fmt.Sprintf("reviewer-%d", i)}
			_, err := catalog.CreateReview(ctx, reviewer, listing.ID.Hex(), &entity.CreateReviewRequest{Body: "ok", Rating: 1 + i%5})
			require.NoError(t, err)
		}
		require.Len(t, db.reviewsOf(listing.ID), n)

		require.NoError(t, catalog.DeleteListing(ctx, owner, listing.ID.Hex()))

		assert.Empty(t, db.reviewsOf(listing.ID))
		_, err = catalog.GetListing(ctx, listing.ID.Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestProperty_ReviewOnMissingListingLeavesNoOrphan(t *testing.T) {
	ctx := context.Background()
	catalog, db := newMemCatalog(&stubEnricher{})
	actor := &access.Actor{ID: "user"}

	for _, id := range []string{"507f1f77bcf86cd799439011", "garbage"} {
		_, err := catalog.CreateReview(ctx, actor, id, &entity.CreateReviewRequest{Body: "hi", Rating: 3})
		assert.ErrorIs(t, err, ErrListingNotFound)
	}

	assert.Empty(t, db.reviews)
}

func TestProperty_OwnerImmutable(t *testing.T) {
	ctx := context.Background()
	catalog, db := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	listing, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Farm stay", Owner: "intruder"})
	require.NoError(t, err)
	assert.Equal(t, "owner", listing.OwnerID)

	hijack := "intruder"
	newTitle := "Farm stay deluxe"
	updated, err := catalog.UpdateListing(ctx, owner, listing.ID.Hex(), &entity.UpdateListingRequest{
		Title: &newTitle,
		Owner: &hijack,
	})

	require.NoError(t, err)
	assert.Equal(t, "owner", updated.OwnerID)
	assert.Equal(t, "owner", db.listings[listing.ID].OwnerID)
	assert.Equal(t, "Farm stay deluxe", db.listings[listing.ID].Title)
}

func TestProperty_SearchIsWholeTitleCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	for _, title := range []string{"Blue Lagoon", "blue lagoon", "Blue Lagoon Resort", "The Blue Lagoon"} {
		_, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: title})
		require.NoError(t, err)
	}

	found, err := catalog.SearchByTitle(ctx, "BLUE LAGOON")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, l := range found {
		assert.Equal(t, "blue lagoon", strings.ToLower(l.Title))
	}

	none, err := catalog.SearchByTitle(ctx, "Lagoon")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestProperty_ListByCategoryExact(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	for _, c := range []entity.Category{entity.CategoryCastle, entity.CategoryCastle, entity.CategoryFarms, ""} {
		_, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "x", Category: c})
		require.NoError(t, err)
	}

	castles, err := catalog.ListByCategory(ctx, entity.CategoryCastle)
	require.NoError(t, err)
	assert.Len(t, castles, 2)

	unknown, err := catalog.ListByCategory(ctx, "Beach")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestProperty_ConcurrentDeleteAndReviewCreate(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		catalog, db := newMemCatalog(&stubEnricher{})
		owner := &access.Actor{ID: "owner"}

		listing, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Race"})
		require.NoError(t, err)
		id := listing.ID.Hex()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				reviewer := &access.Actor{ID: fmt.Sprintf("r%d", i)}
				_, err := catalog.CreateReview(ctx, reviewer, id, &entity.CreateReviewRequest{Body: "race", Rating: 4})
				if err != nil {
					assert.ErrorIs(t, err, ErrListingNotFound)
				}
			}(i)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, catalog.DeleteListing(ctx, owner, id))
		}()

		wg.Wait()

		assert.Empty(t, db.orphans(), "round %d left orphaned reviews", round)
	}
}

func TestProperty_ReviewOrderAndDetails(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	listing, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Ordered"})
	require.NoError(t, err)

	var created []string
	for i := 1; i <= 4; i++ {
		r, err := catalog.CreateReview(ctx, &access.Actor{ID: "u"}, listing.ID.Hex(), &entity.CreateReviewRequest{Body: fmt.Sprintf("#%d", i), Rating: i})
		require.NoError(t, err)
		created = append(created, r.ID.Hex())
	}

	details, err := catalog.GetListing(ctx, listing.ID.Hex())
	require.NoError(t, err)

	var got []string
	for _, r := range details.Reviews {
		got = append(got, r.ID.Hex())
		assert.Equal(t, listing.ID, r.ListingID)
		assert.Nil(t, r.Author)
	}
	assert.Equal(t, created, got)
	assert.Nil(t, details.Owner)
}

func TestProperty_DeleteReviewIdempotentUnlink(t *testing.T) {
	ctx := context.Background()
	catalog, db := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}
	author := &access.Actor{ID: "author"}

	listing, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Hut"})
	require.NoError(t, err)
	review, err := catalog.CreateReview(ctx, author, listing.ID.Hex(), &entity.CreateReviewRequest{Body: "b", Rating: 5})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteReview(ctx, author, listing.ID.Hex(), review.ID.Hex()))
	assert.Empty(t, db.listings[listing.ID].Reviews)
	assert.Empty(t, db.reviews)

	err = catalog.DeleteReview(ctx, author, listing.ID.Hex(), review.ID.Hex())
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestProperty_SweepRemovesOrphans(t *testing.T) {
	ctx := context.Background()
	catalog, db := newMemCatalog(&stubEnricher{})
	owner := &access.Actor{ID: "owner"}

	kept, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Kept"})
	require.NoError(t, err)
	gone, err := catalog.CreateListing(ctx, owner, &entity.CreateListingRequest{Title: "Gone"})
	require.NoError(t, err)

	for _, l := range []*entity.Listing{kept, gone} {
		_, err := catalog.CreateReview(ctx, &access.Actor{ID: "u"}, l.ID.Hex(), &entity.CreateReviewRequest{Body: "b", Rating: 2})
		require.NoError(t, err)
	}

	// имитируем падение между удалением объявления и каскадом
	db.mu.Lock()
	delete(db.listings, gone.ID)
	db.mu.Unlock()
	require.Len(t, db.orphans(), 1)

	count, err := catalog.SweepOrphans(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, db.orphans())
	assert.Len(t, db.reviewsOf(kept.ID), 1)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

func newUserServiceForTest(users *fakeUserRepo, saved *fakeSavedPlaceRepo, places *fakePlaceRepo, photos *fakePhotoRepo) *UserService {
	return NewUserService(users, saved, places, photos, &fakeObjectStorage{}, PhotoUploaderConfig{Bucket: "profiles"})
}

func TestSavePlaceRejectsUnknownPlace(t *testing.T) {
	users := newFakeUserRepo()
	saved := &fakeSavedPlaceRepo{}
	places := newFakePlaceRepo()
	svc := newUserServiceForTest(users, saved, places, &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	missing := domain.PlaceRef{Kind: domain.PlaceKindAttraction, ID: uuid.New()}
	if err := svc.SavePlace(context.Background(), user.ID, missing); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
	if len(saved.entries) != 0 {
		t.Fatalf("expected no saved entries")
	}
}

func TestSavePlaceTwiceIsNoOp(t *testing.T) {
	users := newFakeUserRepo()
	saved := &fakeSavedPlaceRepo{}
	places := newFakePlaceRepo()
	svc := newUserServiceForTest(users, saved, places, &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	place := places.put(&domain.Place{Kind: domain.PlaceKindRestaurant, Name: "Deli"})

	if err := svc.SavePlace(context.Background(), user.ID, place.Ref()); err != nil {
		t.Fatalf("first SavePlace returned error: %v", err)
	}
	if err := svc.SavePlace(context.Background(), user.ID, place.Ref()); err != nil {
		t.Fatalf("expected duplicate save to be a no-op, got %v", err)
	}
	if len(saved.entries) != 1 {
		t.Fatalf("expected a single saved entry, got %d", len(saved.entries))
	}
}

func TestUnsavePlaceNotSaved(t *testing.T) {
	users := newFakeUserRepo()
	svc := newUserServiceForTest(users, &fakeSavedPlaceRepo{}, newFakePlaceRepo(), &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	ref := domain.PlaceRef{Kind: domain.PlaceKindAttraction, ID: uuid.New()}
	if err := svc.UnsavePlace(context.Background(), user.ID, ref); !errors.Is(err, ErrSavedPlaceNotFound) {
		t.Fatalf("expected ErrSavedPlaceNotFound, got %v", err)
	}
}

func TestListSavedPlacesHydratesAndKeepsOrphans(t *testing.T) {
	users := newFakeUserRepo()
	saved := &fakeSavedPlaceRepo{}
	places := newFakePlaceRepo()
	svc := newUserServiceForTest(users, saved, places, &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	kept := places.put(&domain.Place{Kind: domain.PlaceKindAttraction, Name: "Park"})
	doomed := places.put(&domain.Place{Kind: domain.PlaceKindAttraction, Name: "Closed Venue"})

	for _, place := range []*domain.Place{kept, doomed} {
		if err := svc.SavePlace(context.Background(), user.ID, place.Ref()); err != nil {
			t.Fatalf("SavePlace returned error: %v", err)
		}
	}
	delete(places.places[domain.PlaceKindAttraction], doomed.ID)

	items, err := svc.ListSavedPlaces(context.Background(), user.ID, domain.PlaceKindAttraction)
	if err != nil {
		t.Fatalf("ListSavedPlaces returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both entries listed, got %d", len(items))
	}
	var hydrated, orphaned int
	for _, item := range items {
		if item.Place != nil {
			hydrated++
		} else {
			orphaned++
		}
	}
	if hydrated != 1 || orphaned != 1 {
		t.Fatalf("expected one hydrated and one orphaned entry, got %d/%d", hydrated, orphaned)
	}
}

func TestListSavedPlacesFiltersByKind(t *testing.T) {
	users := newFakeUserRepo()
	saved := &fakeSavedPlaceRepo{}
	places := newFakePlaceRepo()
	svc := newUserServiceForTest(users, saved, places, &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	attraction := places.put(&domain.Place{Kind: domain.PlaceKindAttraction, Name: "Garden"})
	restaurant := places.put(&domain.Place{Kind: domain.PlaceKindRestaurant, Name: "Cafe"})

	for _, place := range []*domain.Place{attraction, restaurant} {
		if err := svc.SavePlace(context.Background(), user.ID, place.Ref()); err != nil {
			t.Fatalf("SavePlace returned error: %v", err)
		}
	}

	items, err := svc.ListSavedPlaces(context.Background(), user.ID, domain.PlaceKindRestaurant)
	if err != nil {
		t.Fatalf("ListSavedPlaces returned error: %v", err)
	}
	if len(items) != 1 || items[0].PlaceID != restaurant.ID {
		t.Fatalf("expected only the saved restaurant, got %+v", items)
	}
}

func TestUpdateNicknameValidation(t *testing.T) {
	users := newFakeUserRepo()
	svc := newUserServiceForTest(users, &fakeSavedPlaceRepo{}, newFakePlaceRepo(), &fakePhotoRepo{})

	user := seedVerifiedUser(t, users, "a@b.com")
	if _, err := svc.UpdateNickname(context.Background(), user.ID, "   "); !errors.Is(err, ErrUserValidation) {
		t.Fatalf("expected ErrUserValidation for blank nickname, got %v", err)
	}

	updated, err := svc.UpdateNickname(context.Background(), user.ID, "wanderer")
	if err != nil {
		t.Fatalf("UpdateNickname returned error: %v", err)
	}
	if updated.Nickname != "wanderer" {
		t.Fatalf("expected nickname updated, got %q", updated.Nickname)
	}

	if _, err := svc.UpdateNickname(context.Background(), uuid.New(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

const mockVideoID = "650a1b2c3d4e5f6a7b8c9d0e"

func stageNames(mt *mtest.T, pipeline bson.RawValue) []string {
	mt.Helper()
	values, err := pipeline.Array().Values()
	if err != nil {
		mt.Fatalf("pipeline: %v", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		elems, err := v.Document().Elements()
		if err != nil || len(elems) != 1 {
			mt.Fatalf("malformed stage %v", v)
		}
		names = append(names, elems[0].Key())
	}
	return names
}

func TestVideoFindByID_JoinsOwner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("populated", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		vid, _ := primitive.ObjectIDFromHex(mockVideoID)
		owner, _ := primitive.ObjectIDFromHex(mockUserID)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: vid},
			{Key: "title", Value: "Intro"},
			{Key: "isPublished", Value: true},
			{Key: "owner", Value: owner},
			{Key: "ownerDoc", Value: bson.D{
				{Key: "_id", Value: owner},
				{Key: "username", Value: "alice"},
				{Key: "fullName", Value: "Alice"},
			}},
		}))

		v, err := repo.FindByID(context.Background(), mockVideoID)
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if v.ID != mockVideoID || v.Owner.ID != mockUserID || v.Owner.Username != "alice" {
			mt.Fatalf("unexpected video: %+v", v)
		}
		if v.Tags == nil {
			mt.Fatalf("tags must never be nil")
		}

		cmd := mt.GetStartedEvent().Command
		got := stageNames(mt, cmd.Lookup("pipeline"))
		want := []string{"$match", "$lookup", "$addFields"}
		if len(got) != len(want) {
			mt.Fatalf("stages = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				mt.Fatalf("stages = %v, want %v", got, want)
			}
		}

		lookup := cmd.Lookup("pipeline", "1", "$lookup").Document()
		if from := lookup.Lookup("from").StringValue(); from != collectionUsers {
			mt.Fatalf("lookup from = %q", from)
		}
		if local := lookup.Lookup("localField").StringValue(); local != "owner" {
			mt.Fatalf("lookup localField = %q", local)
		}
		project := lookup.Lookup("pipeline", "0", "$project").Document()
		for _, secret := range []string{"password", "refreshToken", "email"} {
			if _, err := project.LookupErr(secret); err == nil {
				mt.Fatalf("owner projection must not include %s", secret)
			}
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), mockVideoID); !errors.Is(err, domain.ErrVideoNotFound) {
			mt.Fatalf("expected not found, got %v", err)
		}
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, domain.ErrVideoNotFound) {
			mt.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestVideoList_MatchSortAndPage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("paged", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		videos, total, err := repo.List(context.Background(), ports.ListVideosFilter{
			OwnerID: mockUserID,
			Query:   "a.b",
			SortBy:  "views",
			Page:    3,
			Limit:   5,
		})
		if err != nil {
			mt.Fatalf("list: %v", err)
		}
		if total != 7 || len(videos) != 0 {
			mt.Fatalf("unexpected result: %d %v", total, videos)
		}

		count := mt.GetStartedEvent().Command
		countMatch := count.Lookup("pipeline", "0", "$match").Document()
		if !countMatch.Lookup("isPublished").Boolean() {
			mt.Fatalf("count must use the same filter as the page")
		}

		cmd := mt.GetStartedEvent().Command
		got := stageNames(mt, cmd.Lookup("pipeline"))
		want := []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$addFields"}
		if len(got) != len(want) {
			mt.Fatalf("stages = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				mt.Fatalf("stages = %v, want %v", got, want)
			}
		}

		match := cmd.Lookup("pipeline", "0", "$match").Document()
		if owner := match.Lookup("owner").ObjectID(); owner.Hex() != mockUserID {
			mt.Fatalf("match owner = %s", owner.Hex())
		}
		if !match.Lookup("isPublished").Boolean() {
			mt.Fatalf("public listing must match published videos")
		}
		pattern, options := match.Lookup("$or", "0", "title").Regex()
		if pattern != `a\.b` || options != "i" {
			mt.Fatalf("search must be escaped and case-insensitive, got /%s/%s", pattern, options)
		}

		if dir := cmd.Lookup("pipeline", "1", "$sort", "views").Int32(); dir != -1 {
			mt.Fatalf("sort direction = %d", dir)
		}
		if skip := cmd.Lookup("pipeline", "2", "$skip").Int64(); skip != 10 {
			mt.Fatalf("skip = %d, want 10", skip)
		}
		if limit := cmd.Lookup("pipeline", "3", "$limit").Int64(); limit != 5 {
			mt.Fatalf("limit = %d, want 5", limit)
		}
	})

	mt.Run("invalid owner", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		_, _, err := repo.List(context.Background(), ports.ListVideosFilter{OwnerID: "nope", Page: 1, Limit: 10, SortBy: "createdAt"})
		if !errors.Is(err, domain.ErrInvalidOwnerID) {
			mt.Fatalf("expected invalid owner, got %v", err)
		}
	})
}

func TestVideoListMatch_DraftsForOwner(t *testing.T) {
	match, err := videoListMatch(ports.ListVideosFilter{OwnerID: mockUserID, IncludeUnpublished: true})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	for _, e := range match {
		if e.Key == "isPublished" {
			t.Fatalf("owner listing must not filter on isPublished")
		}
	}
}

func TestVideoOwnedWrites(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delete filters on owner", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := repo.Delete(context.Background(), mockVideoID, mockUserID); err != nil {
			mt.Fatalf("delete: %v", err)
		}
		q := mt.GetStartedEvent().Command.Lookup("deletes", "0", "q").Document()
		if owner := q.Lookup("owner").ObjectID(); owner.Hex() != mockUserID {
			mt.Fatalf("delete must filter on owner, got %s", owner.Hex())
		}
	})

	mt.Run("delete not owned", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		if err := repo.Delete(context.Background(), mockVideoID, mockUserID); !errors.Is(err, domain.ErrVideoNotOwned) {
			mt.Fatalf("expected not owned, got %v", err)
		}
	})

	mt.Run("toggle uses update pipeline", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		if _, err := repo.TogglePublish(context.Background(), mockVideoID, mockUserID); !errors.Is(err, domain.ErrVideoNotOwned) {
			mt.Fatalf("expected not owned, got %v", err)
		}
		u := mt.GetStartedEvent().Command.Lookup("updates", "0", "u")
		if _, ok := u.ArrayOK(); !ok {
			mt.Fatalf("toggle must send an update pipeline, got %v", u)
		}
	})

	mt.Run("invalid owner", func(mt *mtest.T) {
		repo := &VideoRepository{col: mt.Coll}
		if err := repo.Delete(context.Background(), mockVideoID, "nope"); !errors.Is(err, domain.ErrVideoNotOwned) {
			mt.Fatalf("expected not owned, got %v", err)
		}
	})
}

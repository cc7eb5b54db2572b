package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/repository"
)

type interactionFixture struct {
	db    *fakeDB
	svc   *InteractionService
	user  *model.User
	video *model.Video
}

func newInteractionFixture() *interactionFixture {
	db := newFakeDB()
	_, videos, interactions, saved := db.stores()
	svc := NewInteractionService(videos, interactions, saved, NewAggregateService(interactions))
	return &interactionFixture{
		db:    db,
		svc:   svc,
		user:  db.addUser("alice", model.RoleUser),
		video: db.addVideo("clip", true),
	}
}

func TestToggleReaction_LikeThenDislikeSwaps(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()

	before, err := f.svc.Stats(ctx, f.video.ID, f.user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, model.ReactionDislike)
	if err != nil {
		t.Fatal(err)
	}

	if got.UserLiked || !got.UserDisliked {
		t.Errorf("user state = like:%v dislike:%v, want like:false dislike:true", got.UserLiked, got.UserDisliked)
	}
	if got.Dislikes != before.Dislikes+1 {
		t.Errorf("dislikes = %d, want %d", got.Dislikes, before.Dislikes+1)
	}
	if got.Likes != before.Likes {
		t.Errorf("likes = %d, want unchanged %d", got.Likes, before.Likes)
	}
}

func TestToggleReaction_TwiceRestores(t *testing.T) {
	for _, kind := range []model.Reaction{model.ReactionLike, model.ReactionDislike} {
		t.Run(string(kind), func(t *testing.T) {
			f := newInteractionFixture()
			ctx := context.Background()
			other := f.db.addUser("bob", model.RoleUser)
			if _, err := f.svc.ToggleReaction(ctx, other.ID, f.video.ID, kind); err != nil {
				t.Fatal(err)
			}

			before, err := f.svc.Stats(ctx, f.video.ID, f.user.ID)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, kind); err != nil {
				t.Fatal(err)
			}
			got, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, kind)
			if err != nil {
				t.Fatal(err)
			}

			if got.UserLiked || got.UserDisliked {
				t.Errorf("user state should be neutral, got like:%v dislike:%v", got.UserLiked, got.UserDisliked)
			}
			if got.Likes != before.Likes || got.Dislikes != before.Dislikes {
				t.Errorf("counts = %d/%d, want %d/%d", got.Likes, got.Dislikes, before.Likes, before.Dislikes)
			}
		})
	}
}

func TestSetReaction_Idempotent(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()

	for range 3 {
		got, err := f.svc.SetReaction(ctx, f.user.ID, f.video.ID, model.ReactionLike)
		if err != nil {
			t.Fatal(err)
		}
		if got.Likes != 1 || !got.UserLiked {
			t.Fatalf("after set like: likes=%d userLiked=%v", got.Likes, got.UserLiked)
		}
	}

	got, err := f.svc.SetReaction(ctx, f.user.ID, f.video.ID, model.ReactionNone)
	if err != nil {
		t.Fatal(err)
	}
	if got.Likes != 0 || got.Dislikes != 0 || got.UserLiked || got.UserDisliked {
		t.Errorf("after none: %+v", got)
	}
}

func TestReaction_Validation(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()

	if _, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, model.ReactionNone); !errors.Is(err, ErrValidation) {
		t.Errorf("toggle none err = %v, want ErrValidation", err)
	}
	if _, err := f.svc.SetReaction(ctx, f.user.ID, f.video.ID, "love"); !errors.Is(err, ErrValidation) {
		t.Errorf("set love err = %v, want ErrValidation", err)
	}
	if _, err := f.svc.ToggleReaction(ctx, f.user.ID, "00000000-0000-0000-0000-000000000000", model.ReactionLike); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown video err = %v, want ErrNotFound", err)
	}
}

func TestToggleReaction_ConcurrentStaysExclusive(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		kind := model.ReactionLike
		if i%2 == 0 {
			kind = model.ReactionDislike
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, kind); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	agg, err := f.svc.Stats(ctx, f.video.ID, f.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if agg.Likes+agg.Dislikes > 1 {
		t.Errorf("likes+dislikes = %d, want at most 1", agg.Likes+agg.Dislikes)
	}
	if agg.UserInteraction.Like && agg.UserInteraction.Dislike {
		t.Error("user both likes and dislikes the video")
	}
}

func TestRecordView_CountsEveryCall(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()
	const n = 7

	var last *model.ViewResponse
	for range n {
		var err error
		last, err = f.svc.RecordView(ctx, f.user.ID, f.video.ID)
		if err != nil {
			t.Fatal(err)
		}
	}
	if last.Views != n {
		t.Errorf("views = %d, want %d", last.Views, n)
	}
}

func TestSaveUnsave(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()

	if _, err := f.svc.Unsave(ctx, f.user.ID, f.video.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unsave never-saved err = %v, want ErrNotFound", err)
	}

	got, err := f.svc.Save(ctx, f.user.ID, f.video.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Saved {
		t.Error("Save should report saved")
	}
	if _, err := f.svc.Save(ctx, f.user.ID, f.video.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("second save err = %v, want ErrConflict", err)
	}

	is, err := f.svc.IsSaved(ctx, f.user.ID, f.video.ID)
	if err != nil || !is.Saved {
		t.Errorf("IsSaved = %+v, %v", is, err)
	}

	if _, err := f.svc.Unsave(ctx, f.user.ID, f.video.ID); err != nil {
		t.Fatal(err)
	}
	is, _ = f.svc.IsSaved(ctx, f.user.ID, f.video.ID)
	if is.Saved {
		t.Error("IsSaved should be false after unsave")
	}
}

func TestDeleteVideo_StatsNotFound(t *testing.T) {
	f := newInteractionFixture()
	ctx := context.Background()
	_, videos, interactions, _ := f.db.stores()

	if _, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RecordView(ctx, f.user.ID, f.video.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Save(ctx, f.user.ID, f.video.ID); err != nil {
		t.Fatal(err)
	}

	if err := videos.Delete(ctx, f.video.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Stats(ctx, f.video.ID, f.user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("stats after delete err = %v, want ErrNotFound", err)
	}
	counts, _ := interactions.CountByVideos(ctx, []string{f.video.ID})
	if len(counts) != 0 {
		t.Errorf("interactions survived delete: %v", counts)
	}
	if is, _ := f.svc.IsSaved(ctx, f.user.ID, f.video.ID); is.Saved {
		t.Error("save survived delete")
	}
}

func TestWrites_DeletedUserIsNotVideoNotFound(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		write func(f *interactionFixture) error
	}{
		{"reaction", func(f *interactionFixture) error {
			_, err := f.svc.ToggleReaction(ctx, f.user.ID, f.video.ID, model.ReactionLike)
			return err
		}},
		{"view", func(f *interactionFixture) error {
			_, err := f.svc.RecordView(ctx, f.user.ID, f.video.ID)
			return err
		}},
		{"save", func(f *interactionFixture) error {
			_, err := f.svc.Save(ctx, f.user.ID, f.video.ID)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInteractionFixture()
			f.db.goneUsers = map[string]bool{f.user.ID: true}

			err := tt.write(f)
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
			if msg := Message(err, ""); msg != "User not found" {
				t.Errorf("message = %q, want %q", msg, "User not found")
			}
		})
	}
}

func TestMissingReference(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		msg  string
	}{
		{"interactions user", fmt.Errorf("%w: %s", repository.ErrMissingReference, repository.InteractionsUserFK), ErrUnauthorized, "User not found"},
		{"saved user", fmt.Errorf("%w: %s", repository.ErrMissingReference, repository.SavedVideosUserFK), ErrUnauthorized, "User not found"},
		{"video", fmt.Errorf("%w: interactions_video_id_fkey", repository.ErrMissingReference), ErrNotFound, "Video not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingReference(tt.err)
			if !errors.Is(got, tt.want) || Message(got, "") != tt.msg {
				t.Errorf("got %v, want %v %q", got, tt.want, tt.msg)
			}
		})
	}
}

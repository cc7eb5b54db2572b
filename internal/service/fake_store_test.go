package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/repository"
)

// fakeDB is an in-memory stand-in for Postgres that mirrors the schema's
// constraints: unique users, one reaction per pair, one save per pair, and
// cascading deletes.
type fakeDB struct {
	mu           sync.Mutex
	clock        time.Time
	users        map[string]*model.User
	videos       map[string]*model.Video
	interactions []model.Interaction
	saved        []model.SavedVideo
	// goneUsers fails writes by these ids on the user_id foreign key, as
	// if the account was deleted after the request was authenticated.
	goneUsers map[string]bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:  make(map[string]*model.User),
		videos: make(map[string]*model.Video),
	}
}

// tick advances the fake clock so rows get distinct, ordered timestamps.
func (d *fakeDB) tick() time.Time {
	d.clock = d.clock.Add(time.Second)
	return d.clock
}

func (d *fakeDB) stores() (*fakeUsers, *fakeVideos, *fakeInteractions, *fakeSaved) {
	return &fakeUsers{d}, &fakeVideos{d}, &fakeInteractions{d}, &fakeSaved{d}
}

func (d *fakeDB) addUser(name string, role model.Role) *model.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := &model.User{
		ID: uuid.NewString(), Username: name, Email: name + "@example.com",
		Role: role, Mode: model.ModePrivate, IsActive: true, CreatedAt: d.tick(),
	}
	d.users[u.ID] = u
	return u
}

func (d *fakeDB) addVideo(title string, published bool, tags ...string) *model.Video {
	d.mu.Lock()
	defer d.mu.Unlock()
	if tags == nil {
		tags = []string{}
	}
	v := &model.Video{
		ID: uuid.NewString(), Title: title, Description: title, Category: model.CategoryOther,
		Tags: tags, IsPublished: published, UploadedBy: "Admin", CreatedAt: d.tick(),
	}
	d.videos[v.ID] = v
	return v
}

func (d *fakeDB) addInteraction(userID, videoID string, t model.InteractionType, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interactions = append(d.interactions, model.Interaction{
		ID: uuid.NewString(), VideoID: videoID, UserID: userID, Type: t, CreatedAt: at,
	})
}

func (d *fakeDB) userCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

func dup(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

type fakeUsers struct{ db *fakeDB }

func (f *fakeUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, e := range f.db.users {
		if e.Email == u.Email {
			return nil, dup(repository.UsersEmailKey)
		}
		if e.Username == u.Username {
			return nil, dup(repository.UsersUsernameKey)
		}
	}
	c := *u
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = f.db.tick()
	c.UpdatedAt = c.CreatedAt
	f.db.users[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]model.User, 0, len(f.db.users))
	for _, u := range f.db.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUsers) mutate(id string, fn func(u *model.User) error) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = f.db.tick()
	c := *u
	return &c, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id string) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error {
		t := f.db.clock
		u.LastLogin = &t
		return nil
	})
}

func (f *fakeUsers) UpdateMode(_ context.Context, id string, mode model.Mode) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error { u.Mode = mode; return nil })
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id, email string) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error {
		for _, e := range f.db.users {
			if e.ID != id && e.Email == email {
				return dup(repository.UsersEmailKey)
			}
		}
		u.Email = email
		return nil
	})
}

func (f *fakeUsers) UpdateRole(_ context.Context, id string, role model.Role) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error { u.Role = role; return nil })
}

func (f *fakeUsers) UpdateActive(_ context.Context, id string, active bool) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error { u.IsActive = active; return nil })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string) (*model.User, error) {
	return f.mutate(id, func(u *model.User) error { u.PasswordHash = passwordHash; return nil })
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.users, id)
	f.db.cascade(func(userID, _ string) bool { return userID == id })
	return nil
}

// cascade drops interaction and save rows matching drop. Caller holds mu.
func (d *fakeDB) cascade(drop func(userID, videoID string) bool) {
	kept := d.interactions[:0]
	for _, i := range d.interactions {
		if !drop(i.UserID, i.VideoID) {
			kept = append(kept, i)
		}
	}
	d.interactions = kept

	keptSaves := d.saved[:0]
	for _, s := range d.saved {
		if !drop(s.UserID, s.VideoID) {
			keptSaves = append(keptSaves, s)
		}
	}
	d.saved = keptSaves
}

type fakeVideos struct{ db *fakeDB }

func (f *fakeVideos) Create(_ context.Context, nv model.NewVideo) (*model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	v := &model.Video{
		ID: uuid.NewString(), Title: nv.Title, Description: nv.Description,
		VideoURL: nv.VideoURL, ThumbnailURL: nv.ThumbnailURL, Duration: nv.Duration,
		Category: nv.Category, Tags: nv.Tags, IsPublished: true, UploadedBy: nv.UploadedBy,
		CreatedAt: f.db.tick(),
	}
	if nv.StorageID != "" {
		s := nv.StorageID
		v.StorageID = &s
	}
	if nv.ThumbnailKey != "" {
		k := nv.ThumbnailKey
		v.ThumbnailKey = &k
	}
	f.db.videos[v.ID] = v
	c := *v
	return &c, nil
}

func (f *fakeVideos) FindByID(_ context.Context, id string) (*model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	v, ok := f.db.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *v
	return &c, nil
}

func (f *fakeVideos) FindByIDs(_ context.Context, ids []string, publishedOnly bool) ([]model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Video{}
	for _, id := range ids {
		if v, ok := f.db.videos[id]; ok && (!publishedOnly || v.IsPublished) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

func (f *fakeVideos) List(_ context.Context, flt model.VideoFilter) ([]model.Video, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var matched []model.Video
	for _, v := range f.db.videos {
		if flt.PublishedOnly && !v.IsPublished {
			continue
		}
		if flt.Category != "" && v.Category != flt.Category {
			continue
		}
		if flt.Search != "" {
			q := strings.ToLower(flt.Search)
			if !strings.Contains(strings.ToLower(v.Title), q) && !strings.Contains(strings.ToLower(v.Description), q) {
				continue
			}
		}
		if !containsAll(v.Tags, flt.Tags) {
			continue
		}
		matched = append(matched, *v)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := flt.Offset()
	if start > total {
		start = total
	}
	end := start + flt.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeVideos) ListAll(_ context.Context) ([]model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Video{}
	for _, v := range f.db.videos {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeVideos) Trending(_ context.Context, limit int) ([]model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	views := map[string]int{}
	for _, i := range f.db.interactions {
		if i.Type == model.InteractionView {
			views[i.VideoID]++
		}
	}
	out := []model.Video{}
	for id, n := range views {
		if v, ok := f.db.videos[id]; ok && v.IsPublished && n > 0 {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return views[out[i].ID] > views[out[j].ID] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeVideos) Tags(_ context.Context) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	set := map[string]bool{}
	for _, v := range f.db.videos {
		if !v.IsPublished {
			continue
		}
		for _, t := range v.Tags {
			set[strings.ToLower(strings.TrimSpace(t))] = true
		}
	}
	out := []string{}
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeVideos) Update(_ context.Context, id string, upd model.VideoUpdate) (*model.Video, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	v, ok := f.db.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Description != nil {
		v.Description = *upd.Description
	}
	if upd.Category != nil {
		v.Category = *upd.Category
	}
	if upd.Tags != nil {
		v.Tags = *upd.Tags
	}
	if upd.IsPublished != nil {
		v.IsPublished = *upd.IsPublished
	}
	c := *v
	return &c, nil
}

func (f *fakeVideos) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.videos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.videos, id)
	f.db.cascade(func(_, videoID string) bool { return videoID == id })
	return nil
}

func (f *fakeVideos) Exists(_ context.Context, id string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.videos[id]
	return ok, nil
}

type fakeInteractions struct{ db *fakeDB }

func (f *fakeInteractions) CountByVideos(_ context.Context, ids []string) ([]model.InteractionCount, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	type key struct {
		video string
		t     model.InteractionType
	}
	n := map[key]int{}
	for _, i := range f.db.interactions {
		if want[i.VideoID] {
			n[key{i.VideoID, i.Type}]++
		}
	}
	out := []model.InteractionCount{}
	for k, c := range n {
		out = append(out, model.InteractionCount{VideoID: k.video, Type: k.t, Count: c})
	}
	return out, nil
}

func (f *fakeInteractions) UserReactions(_ context.Context, userID string, ids []string) ([]model.Interaction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Interaction{}
	for _, i := range f.db.interactions {
		if i.UserID == userID && want[i.VideoID] && i.Type != model.InteractionView {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInteractions) ApplyReaction(_ context.Context, userID, videoID string, next func(model.ReactionState) model.ReactionState) (model.ReactionState, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.goneUsers[userID] {
		return model.ReactionState{}, fmt.Errorf("%w: %s", repository.ErrMissingReference, repository.InteractionsUserFK)
	}
	if _, ok := f.db.videos[videoID]; !ok {
		return model.ReactionState{}, fmt.Errorf("%w: interactions_video_id_fkey", repository.ErrMissingReference)
	}

	var cur model.ReactionState
	kept := f.db.interactions[:0]
	for _, i := range f.db.interactions {
		if i.UserID == userID && i.VideoID == videoID && i.Type != model.InteractionView {
			cur.Like = cur.Like || i.Type == model.InteractionLike
			cur.Dislike = cur.Dislike || i.Type == model.InteractionDislike
			continue
		}
		kept = append(kept, i)
	}
	f.db.interactions = kept

	target := next(cur)
	if t, ok := repository.ReactionType(target); ok {
		f.db.interactions = append(f.db.interactions, model.Interaction{
			ID: uuid.NewString(), VideoID: videoID, UserID: userID, Type: t, CreatedAt: f.db.tick(),
		})
	}
	return target, nil
}

func (f *fakeInteractions) InsertView(_ context.Context, userID, videoID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.goneUsers[userID] {
		return fmt.Errorf("%w: %s", repository.ErrMissingReference, repository.InteractionsUserFK)
	}
	if _, ok := f.db.videos[videoID]; !ok {
		return fmt.Errorf("%w: interactions_video_id_fkey", repository.ErrMissingReference)
	}
	f.db.interactions = append(f.db.interactions, model.Interaction{
		ID: uuid.NewString(), VideoID: videoID, UserID: userID, Type: model.InteractionView, CreatedAt: f.db.tick(),
	})
	return nil
}

func (f *fakeInteractions) DeleteViewsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	kept := f.db.interactions[:0]
	for _, i := range f.db.interactions {
		if i.Type == model.InteractionView && i.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, i)
	}
	f.db.interactions = kept
	return n, nil
}

func (f *fakeInteractions) RecentActivity(_ context.Context, limit int) ([]model.Activity, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Activity{}
	for _, i := range f.db.interactions {
		a := model.Activity{ID: i.ID, Type: i.Type, CreatedAt: i.CreatedAt, VideoID: i.VideoID, UserID: i.UserID,
			Username: "Unknown", VideoTitle: "Unknown Video"}
		if u, ok := f.db.users[i.UserID]; ok {
			a.Username, a.UserEmail = u.Username, u.Email
		}
		if v, ok := f.db.videos[i.VideoID]; ok {
			a.VideoTitle = v.Title
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInteractions) ViewHistory(_ context.Context, userID string, limit int) ([]model.ViewedVideo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	last := map[string]time.Time{}
	for _, i := range f.db.interactions {
		if i.UserID != userID || i.Type != model.InteractionView {
			continue
		}
		if v, ok := f.db.videos[i.VideoID]; !ok || !v.IsPublished {
			continue
		}
		if i.CreatedAt.After(last[i.VideoID]) {
			last[i.VideoID] = i.CreatedAt
		}
	}
	out := []model.ViewedVideo{}
	for id, t := range last {
		out = append(out, model.ViewedVideo{VideoID: id, ViewedAt: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewedAt.After(out[j].ViewedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSaved struct{ db *fakeDB }

func (f *fakeSaved) Save(_ context.Context, userID, videoID string) (*model.SavedVideo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.goneUsers[userID] {
		return nil, fmt.Errorf("%w: %s", repository.ErrMissingReference, repository.SavedVideosUserFK)
	}
	if _, ok := f.db.videos[videoID]; !ok {
		return nil, fmt.Errorf("%w: saved_videos_video_id_fkey", repository.ErrMissingReference)
	}
	for _, s := range f.db.saved {
		if s.UserID == userID && s.VideoID == videoID {
			return nil, dup("unique_user_video_save")
		}
	}
	s := model.SavedVideo{ID: uuid.NewString(), VideoID: videoID, UserID: userID, CreatedAt: f.db.tick()}
	f.db.saved = append(f.db.saved, s)
	return &s, nil
}

func (f *fakeSaved) Unsave(_ context.Context, userID, videoID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, s := range f.db.saved {
		if s.UserID == userID && s.VideoID == videoID {
			f.db.saved = append(f.db.saved[:i], f.db.saved[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSaved) IsSaved(_ context.Context, userID, videoID string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.saved {
		if s.UserID == userID && s.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSaved) ListByUser(_ context.Context, userID string) ([]model.SavedVideo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.SavedVideo{}
	for _, s := range f.db.saved {
		if v, ok := f.db.videos[s.VideoID]; s.UserID == userID && ok && v.IsPublished {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeMedia records stored and deleted keys.
type fakeMedia struct {
	mu      sync.Mutex
	objects map[string]int64
	deleted []string
	failPut bool
	failDel bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string]int64{}}
}

func (m *fakeMedia) Name() string { return "fake" }

func (m *fakeMedia) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return "", fmt.Errorf("storage down")
	}
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	m.objects[key] = n
	return "https://cdn.example.com/" + key, nil
}

func (m *fakeMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.failDel {
		return fmt.Errorf("storage down")
	}
	delete(m.objects, key)
	return nil
}

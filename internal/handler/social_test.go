package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/auth"
	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

type pair struct{ subject, actor uint64 }

// fakeLikes mirrors the production toggle semantics over in-memory
// sets keyed by the unique (subject, actor) pair.
type fakeLikes struct {
	bookLikes    map[pair]bool
	commentLikes map[pair]bool
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{bookLikes: map[pair]bool{}, commentLikes: map[pair]bool{}}
}

func toggleSet(set map[pair]bool, p pair) bool {
	if set[p] {
		delete(set, p)
		return false
	}
	set[p] = true
	return true
}

func (f *fakeLikes) ToggleBookLike(_ context.Context, userID, bookID uint64) (bool, error) {
	return toggleSet(f.bookLikes, pair{bookID, userID}), nil
}
func (f *fakeLikes) ToggleCommentLike(_ context.Context, userID, commentID uint64) (bool, error) {
	return toggleSet(f.commentLikes, pair{commentID, userID}), nil
}
func (f *fakeLikes) CountBookLikes(_ context.Context, bookID uint64) (int, error) {
	n := 0
	for p := range f.bookLikes {
		if p.subject == bookID {
			n++
		}
	}
	return n, nil
}
func (f *fakeLikes) UserLikedBook(_ context.Context, userID, bookID uint64) (bool, error) {
	return f.bookLikes[pair{bookID, userID}], nil
}

// fakeFollows mirrors the follows table with its uniqueness rule.
type fakeFollows struct {
	relations map[pair]bool
}

func newFakeFollows() *fakeFollows { return &fakeFollows{relations: map[pair]bool{}} }

func (f *fakeFollows) Follow(_ context.Context, followerID, followingID uint64) error {
	if followerID == followingID {
		return repository.ErrSelfFollow
	}
	p := pair{followingID, followerID}
	if f.relations[p] {
		return repository.ErrConflict
	}
	f.relations[p] = true
	return nil
}
func (f *fakeFollows) Unfollow(_ context.Context, followerID, followingID uint64) error {
	p := pair{followingID, followerID}
	if !f.relations[p] {
		return repository.ErrNotFound
	}
	delete(f.relations, p)
	return nil
}
func (f *fakeFollows) Followers(_ context.Context, _ uint64) ([]model.Profile, error) {
	return []model.Profile{}, nil
}
func (f *fakeFollows) Following(_ context.Context, _ uint64) ([]model.Profile, error) {
	return []model.Profile{}, nil
}

type fakeRatings struct {
	notas map[pair]int
}

func newFakeRatings() *fakeRatings { return &fakeRatings{notas: map[pair]int{}} }

func (f *fakeRatings) BookRating(_ context.Context, bookID uint64) (*float64, int, error) {
	sum, n := 0, 0
	for p, nota := range f.notas {
		if p.subject == bookID {
			sum += nota
			n++
		}
	}
	if n == 0 {
		return nil, 0, nil
	}
	media := float64(sum) / float64(n)
	return &media, n, nil
}
func (f *fakeRatings) UserRating(_ context.Context, userID, bookID uint64) (*int, error) {
	if nota, ok := f.notas[pair{bookID, userID}]; ok {
		return &nota, nil
	}
	return nil, nil
}

// authedCtx builds a context with path params and authenticated claims.
func authedCtx(t *testing.T, method, target string, userID uint64, names, values []string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newCtx(t, method, target, "")
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	c.Set(middleware.ClaimsKey, &auth.Claims{ID: userID, Email: "a@b.com", Nome: "Ana", Role: "USER"})
	return c, rec
}

func TestToggleLikeIsItsOwnInverse(t *testing.T) {
	likes := newFakeLikes()
	h := NewSocialHandler(likes, newFakeFollows(), newFakeRatings())

	like := func() (int, map[string]interface{}) {
		c, rec := authedCtx(t, http.MethodPost, "/api/books/1/like", 1, []string{"id"}, []string{"1"})
		_ = h.LikeBook(c)
		return rec.Code, decodeBody(t, rec)
	}

	// Odd calls create the like (201), even calls remove it (200), and
	// after any even number of calls zero relation rows remain.
	for i := 0; i < 3; i++ {
		code, body := like()
		if code != http.StatusCreated || body["liked"] != true {
			t.Fatalf("call %d: expected 201 liked=true, got %d %v", 2*i+1, code, body)
		}
		code, body = like()
		if code != http.StatusOK || body["liked"] != false {
			t.Fatalf("call %d: expected 200 liked=false, got %d %v", 2*i+2, code, body)
		}
		if len(likes.bookLikes) != 0 {
			t.Fatalf("expected zero rows after even number of toggles, got %d", len(likes.bookLikes))
		}
	}
}

func TestToggleLikePerPairIsolation(t *testing.T) {
	likes := newFakeLikes()
	h := NewSocialHandler(likes, newFakeFollows(), newFakeRatings())

	for _, userID := range []uint64{1, 2} {
		c, rec := authedCtx(t, http.MethodPost, "/api/books/1/like", userID, []string{"id"}, []string{"1"})
		_ = h.LikeBook(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("user %d: expected 201, got %d", userID, rec.Code)
		}
	}
	if len(likes.bookLikes) != 2 {
		t.Fatalf("expected one row per (actor, subject) pair, got %d", len(likes.bookLikes))
	}
}

func TestSelfFollowRejected(t *testing.T) {
	h := NewSocialHandler(newFakeLikes(), newFakeFollows(), newFakeRatings())
	c, rec := authedCtx(t, http.MethodPost, "/api/users/1/follow", 1, []string{"followingId"}, []string{"1"})
	_ = h.Follow(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-follow, got %d", rec.Code)
	}
}

func TestFollowDuplicateAndUnfollow(t *testing.T) {
	follows := newFakeFollows()
	h := NewSocialHandler(newFakeLikes(), follows, newFakeRatings())

	c, rec := authedCtx(t, http.MethodPost, "/api/users/2/follow", 1, []string{"followingId"}, []string{"2"})
	_ = h.Follow(c)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, rec = authedCtx(t, http.MethodPost, "/api/users/2/follow", 1, []string{"followingId"}, []string{"2"})
	_ = h.Follow(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate follow, got %d", rec.Code)
	}

	c, rec = authedCtx(t, http.MethodDelete, "/api/users/2/follow", 1, []string{"followingId"}, []string{"2"})
	_ = h.Unfollow(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = authedCtx(t, http.MethodDelete, "/api/users/2/follow", 1, []string{"followingId"}, []string{"2"})
	_ = h.Unfollow(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when not following, got %d", rec.Code)
	}
}

func TestBookLikesPersonalization(t *testing.T) {
	likes := newFakeLikes()
	likes.bookLikes[pair{1, 5}] = true
	h := NewSocialHandler(likes, newFakeFollows(), newFakeRatings())

	// Anonymous read: totals only, no userLiked field.
	c, rec := newCtx(t, http.MethodGet, "/api/books/1/likes", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	_ = h.BookLikes(c)
	body := decodeBody(t, rec)
	if body["likes"] != float64(1) {
		t.Fatalf("expected likes=1, got %v", body["likes"])
	}
	if _, ok := body["userLiked"]; ok {
		t.Fatalf("anonymous response must not carry userLiked")
	}

	// Authenticated read includes the caller's own state.
	c, rec = authedCtx(t, http.MethodGet, "/api/books/1/likes", 5, []string{"id"}, []string{"1"})
	_ = h.BookLikes(c)
	body = decodeBody(t, rec)
	if body["userLiked"] != true {
		t.Fatalf("expected userLiked=true, got %v", body["userLiked"])
	}
}

func TestBookRatingNullWhenUnrated(t *testing.T) {
	h := NewSocialHandler(newFakeLikes(), newFakeFollows(), newFakeRatings())
	c, rec := newCtx(t, http.MethodGet, "/api/books/1/rating", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	_ = h.BookRating(c)
	body := decodeBody(t, rec)
	if body["media"] != nil {
		t.Fatalf("expected media null for unrated book, got %v", body["media"])
	}
	if body["total"] != float64(0) {
		t.Fatalf("expected total 0, got %v", body["total"])
	}
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/folio-social/folio-api/internal/auth"
	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

// fakeReviews keeps comments in a slice and ratings keyed by the
// unique (book, user) pair, mirroring the upsert semantics of the
// production repository.
type fakeReviews struct {
	comments map[uint64]*model.Comment
	notas    map[pair]int
	nextID   uint64
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{comments: map[uint64]*model.Comment{}, notas: map[pair]int{}, nextID: 1}
}

func (f *fakeReviews) CreateReview(_ context.Context, userID, bookID uint64, texto string, nota int) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.comments[id] = &model.Comment{ID: id, BookID: bookID, UserID: userID, Texto: texto}
	f.notas[pair{bookID, userID}] = nota // upsert, never a second row
	return id, nil
}

func (f *fakeReviews) UpdateComment(_ context.Context, userID, commentID uint64, texto string, nota *int) error {
	cm, ok := f.comments[commentID]
	if !ok {
		return repository.ErrNotFound
	}
	if cm.UserID != userID {
		return repository.ErrForbidden
	}
	cm.Texto = texto
	if nota != nil {
		f.notas[pair{cm.BookID, userID}] = *nota
	}
	return nil
}

func (f *fakeReviews) DeleteComment(_ context.Context, userID, commentID uint64) error {
	cm, ok := f.comments[commentID]
	if !ok {
		return repository.ErrNotFound
	}
	if cm.UserID != userID {
		return repository.ErrForbidden
	}
	delete(f.comments, commentID)
	return nil
}

func (f *fakeReviews) CommentsByBook(_ context.Context, bookID uint64) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, cm := range f.comments {
		if cm.BookID == bookID {
			c := *cm
			if nota, ok := f.notas[pair{bookID, cm.UserID}]; ok {
				n := nota
				c.Nota = &n
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func TestCreateReviewUpsertsRating(t *testing.T) {
	reviews := newFakeReviews()
	h := NewReviewHandler(reviews)

	submit := func(nota int) {
		c, rec := newCtx(t, http.MethodPost, "/api/books/1/review",
			`{"texto":"bom livro","nota":`+strconv.Itoa(nota)+`}`)
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(middleware.ClaimsKey, &auth.Claims{ID: 1})
		_ = h.CreateReview(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	submit(3)
	submit(5)

	// Two submissions leave exactly one rating row holding the most
	// recent score.
	if len(reviews.notas) != 1 {
		t.Fatalf("expected one rating row, got %d", len(reviews.notas))
	}
	if reviews.notas[pair{1, 1}] != 5 {
		t.Fatalf("expected latest nota 5, got %d", reviews.notas[pair{1, 1}])
	}
	// Comments are not upserts; each review adds one.
	if len(reviews.comments) != 2 {
		t.Fatalf("expected two comments, got %d", len(reviews.comments))
	}
}

func TestCreateReviewNotaBounds(t *testing.T) {
	h := NewReviewHandler(newFakeReviews())
	for _, body := range []string{
		`{"texto":"x","nota":0}`,
		`{"texto":"x","nota":6}`,
		`{"nota":3}`, // texto missing
	} {
		c, rec := newCtx(t, http.MethodPost, "/api/books/1/review", body)
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(middleware.ClaimsKey, &auth.Claims{ID: 1})
		_ = h.CreateReview(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestUpdateCommentOwnership(t *testing.T) {
	reviews := newFakeReviews()
	h := NewReviewHandler(reviews)

	if _, err := reviews.CreateReview(context.Background(), 1, 1, "original", 3); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Another user editing comment 1 is a 403, and nothing changes.
	c, rec := newCtx(t, http.MethodPut, "/api/comments/1", `{"texto":"hijacked","nota":1}`)
	c.SetParamNames("commentId")
	c.SetParamValues("1")
	c.Set(middleware.ClaimsKey, &auth.Claims{ID: 2})
	_ = h.UpdateComment(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
	if reviews.comments[1].Texto != "original" || reviews.notas[pair{1, 1}] != 3 {
		t.Fatalf("comment or rating changed after forbidden edit")
	}

	// A missing comment is a 404, not a 403.
	c, rec = newCtx(t, http.MethodPut, "/api/comments/99", `{"texto":"x","nota":1}`)
	c.SetParamNames("commentId")
	c.SetParamValues("99")
	c.Set(middleware.ClaimsKey, &auth.Claims{ID: 1})
	_ = h.UpdateComment(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing comment, got %d", rec.Code)
	}

	// The owner's edit succeeds and upserts the rating.
	c, rec = newCtx(t, http.MethodPut, "/api/comments/1", `{"texto":"editado","nota":4}`)
	c.SetParamNames("commentId")
	c.SetParamValues("1")
	c.Set(middleware.ClaimsKey, &auth.Claims{ID: 1})
	_ = h.UpdateComment(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner edit, got %d", rec.Code)
	}
	if reviews.comments[1].Texto != "editado" || reviews.notas[pair{1, 1}] != 4 {
		t.Fatalf("owner edit not applied")
	}
}

func TestDeleteCommentLeavesRating(t *testing.T) {
	reviews := newFakeReviews()
	h := NewReviewHandler(reviews)

	if _, err := reviews.CreateReview(context.Background(), 1, 1, "a ser removido", 4); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newCtx(t, http.MethodDelete, "/api/comments/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(middleware.ClaimsKey, &auth.Claims{ID: 1})
	_ = h.DeleteComment(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(reviews.comments) != 0 {
		t.Fatalf("comment not deleted")
	}
	// The loose coupling means the rating survives the comment.
	if reviews.notas[pair{1, 1}] != 4 {
		t.Fatalf("rating must remain after comment deletion")
	}
}

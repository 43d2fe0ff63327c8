package comment_test

import (
	"context"
	"testing"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/internal/service/comment"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeComments struct {
	comments map[string]model.Comment
}

func (f *fakeComments) ListComments(ctx context.Context, itemID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.comments {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) GetComment(ctx context.Context, id string) (model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return model.Comment{}, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeComments) CreateComment(ctx context.Context, itemID, userID, content string) (model.Comment, error) {
	c := model.Comment{ID: "c1", ItemID: itemID, UserID: userID, Content: content}
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeComments) UpdateComment(ctx context.Context, id, content string) (model.Comment, error) {
	c := f.comments[id]
	c.Content = content
	f.comments[id] = c
	return c, nil
}

func (f *fakeComments) DeleteComment(ctx context.Context, id string) error {
	delete(f.comments, id)
	return nil
}

func TestService_UpdateDelete(t *testing.T) {
	t.Parallel()
	author := auth.Identity{UserID: "u1", Role: "USER"}
	stranger := auth.Identity{UserID: "u2", Role: "USER"}
	admin := auth.Identity{UserID: "a1", Role: "ADMIN"}

	newSvc := func() *comment.Service {
		repo := &fakeComments{comments: map[string]model.Comment{
			"c1": {ID: "c1", ItemID: "i1", UserID: "u1", Content: "bagus"},
		}}
		return comment.NewService(repo, zap.NewExample().Named("test"))
	}
	ctx := context.Background()

	t.Run("author can edit", func(t *testing.T) {
		t.Parallel()
		c, err := newSvc().Update(ctx, author, "c1", "bagus sekali")
		require.NoError(t, err)
		require.Equal(t, "bagus sekali", c.Content)
	})

	t.Run("stranger cannot edit", func(t *testing.T) {
		t.Parallel()
		_, err := newSvc().Update(ctx, stranger, "c1", "vandalized")
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("admin can delete", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, newSvc().Delete(ctx, admin, "c1"))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, newSvc().Delete(ctx, stranger, "c1"), errs.ErrForbidden)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		_, err := newSvc().Update(ctx, author, "nope", "x")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

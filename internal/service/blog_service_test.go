package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/validation"
)

func newBlogService() (*BlogService, *fakeBlogRepo) {
	blogs := newFakeBlogRepo()
	return NewBlogService(blogs), blogs
}

func validBlogInput() *BlogInput {
	return &BlogInput{
		Title:         "Pune Market Report",
		Description:   "Quarterly look at villa prices around the lake belt.",
		Image:         []byte{0xff, 0xd8},
		ImageFilename: "report.jpg",
	}
}

func TestSaveBlog(t *testing.T) {
	svc, _ := newBlogService()

	blog, err := svc.Save(context.Background(), validBlogInput())
	require.NoError(t, err)

	assert.NotEmpty(t, blog.BlogID)
	assert.Equal(t, "Pune Market Report", blog.Title)
	assert.Equal(t, "report.jpg", blog.ImagePath)
	assert.False(t, blog.Date.IsZero())
}

func TestSaveBlogValidation(t *testing.T) {
	svc, _ := newBlogService()
	ctx := context.Background()

	empty := validBlogInput()
	empty.Title = ""
	_, err := svc.Save(ctx, empty)
	var fieldErr *validation.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "title", fieldErr.Field)

	badImage := validBlogInput()
	badImage.ImageFilename = "report.exe"
	_, err = svc.Save(ctx, badImage)
	assert.Error(t, err)
}

func TestGetBlogNotFound(t *testing.T) {
	svc, _ := newBlogService()

	_, err := svc.Get("blog-ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBlogPartialFields(t *testing.T) {
	svc, _ := newBlogService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, validBlogInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, saved.BlogID, &BlogInput{Title: "Pune Market Report Q2"})
	require.NoError(t, err)
	assert.Equal(t, "Pune Market Report Q2", updated.Title)
	assert.Equal(t, saved.Description, updated.Description, "unset fields keep stored values")
	assert.Equal(t, saved.Image, updated.Image)

	replaced, err := svc.Update(ctx, saved.BlogID, &BlogInput{
		Image:         []byte{0x89, 0x50},
		ImageFilename: "cover.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "cover.png", replaced.ImagePath)
	assert.Equal(t, []byte{0x89, 0x50}, replaced.Image)

	_, err = svc.Update(ctx, saved.BlogID, &BlogInput{
		Image:         []byte{0x01},
		ImageFilename: "cover.exe",
	})
	assert.Error(t, err)

	_, err = svc.Update(ctx, "blog-ghost", &BlogInput{Title: "Nothing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBlog(t *testing.T) {
	svc, _ := newBlogService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, validBlogInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(saved.BlogID))
	assert.ErrorIs(t, svc.Delete(saved.BlogID), ErrNotFound)

	blogs, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, blogs)
}

func TestBlogTextIsEscapedOnWrite(t *testing.T) {
	svc, _ := newBlogService()
	ctx := context.Background()

	input := validBlogInput()
	input.Description = `Read more <script>alert("x")</script>`
	saved, err := svc.Save(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Read more &lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;", saved.Description)

	updated, err := svc.Update(ctx, saved.BlogID, &BlogInput{Description: "<p>clean</p>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;p&gt;clean&lt;/p&gt;", updated.Description)
}

package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/util"
)

type BlogRepository struct {
	client *ScyllaClient
}

func NewBlogRepository(client *ScyllaClient) *BlogRepository {
	return &BlogRepository{client: client}
}

func (r *BlogRepository) Create(blog *model.Blog) error {
	if blog.BlogID == "" {
		blog.BlogID = uuid.New().String()
	}
	if blog.Date.IsZero() {
		blog.Date = time.Now().UTC()
	}

	query := r.client.Query(r.client.Statements.CreateBlog,
		blog.BlogID, blog.Title, blog.Description,
		blog.ImagePath, blog.Image, blog.Date)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create blog",
			zap.String("blog_id", blog.BlogID),
			zap.Error(err))
		return fmt.Errorf("failed to create blog: %w", err)
	}

	util.Info("Blog created", zap.String("blog_id", blog.BlogID))
	return nil
}

func (r *BlogRepository) GetByID(blogID string) (*model.Blog, error) {
	blog := &model.Blog{}

	query := r.client.Query(r.client.Statements.GetBlogByID, blogID)

	err := r.client.ScanWithRetry(query,
		&blog.BlogID, &blog.Title, &blog.Description,
		&blog.ImagePath, &blog.Image, &blog.Date)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog by ID: %w", err)
	}

	return blog, nil
}

func (r *BlogRepository) List() ([]*model.Blog, error) {
	iter := r.client.Query(`
        SELECT blog_id, title, description, image_path, image, date
        FROM blogs`).Iter()

	var blogs []*model.Blog
	for {
		blog := &model.Blog{}
		if !iter.Scan(&blog.BlogID, &blog.Title, &blog.Description,
			&blog.ImagePath, &blog.Image, &blog.Date) {
			break
		}
		blogs = append(blogs, blog)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return blogs, nil
}

func (r *BlogRepository) Update(blog *model.Blog) error {
	query := r.client.Query(`
        UPDATE blogs SET title = ?, description = ?, image_path = ?, image = ?, date = ?
        WHERE blog_id = ?`,
		blog.Title, blog.Description, blog.ImagePath, blog.Image, blog.Date,
		blog.BlogID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update blog",
			zap.String("blog_id", blog.BlogID),
			zap.Error(err))
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) Delete(blogID string) error {
	query := r.client.Query(r.client.Statements.DeleteBlog, blogID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}

	util.Info("Blog deleted", zap.String("blog_id", blogID))
	return nil
}

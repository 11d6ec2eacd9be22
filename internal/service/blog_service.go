package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// BlogService is plain CRUD; blog posts carry no workflow.
type BlogService struct {
	blogs repository.BlogRepository
}

func NewBlogService(blogs repository.BlogRepository) *BlogService {
	return &BlogService{blogs: blogs}
}

// BlogInput is the write payload for creating or updating a post.
type BlogInput struct {
	Title         string
	Description   string
	Image         []byte
	ImageFilename string
}

func (s *BlogService) Save(ctx context.Context, input *BlogInput) (*model.Blog, error) {
	if input.Title == "" {
		return nil, &validation.FieldError{Field: "title", Reason: "must not be empty"}
	}
	if input.ImageFilename != "" {
		if err := validation.ImageFilename(input.ImageFilename); err != nil {
			return nil, err
		}
	}

	if util.ContainsSuspicious(input.Description) {
		util.Warn("Markup stripped from blog description", zap.String("title", input.Title))
	}

	blog := &model.Blog{
		Title:       util.SanitizeInput(input.Title),
		Description: util.SanitizeInput(input.Description),
		ImagePath:   input.ImageFilename,
		Image:       input.Image,
		Date:        time.Now().UTC(),
	}

	if err := s.blogs.Create(blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) Get(blogID string) (*model.Blog, error) {
	blog, err := s.blogs.GetByID(blogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) List() ([]*model.Blog, error) {
	return s.blogs.List()
}

func (s *BlogService) Update(ctx context.Context, blogID string, input *BlogInput) (*model.Blog, error) {
	blog, err := s.blogs.GetByID(blogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Title != "" {
		blog.Title = util.SanitizeInput(input.Title)
	}
	if input.Description != "" {
		blog.Description = util.SanitizeInput(input.Description)
	}
	if len(input.Image) > 0 {
		if input.ImageFilename != "" {
			if err := validation.ImageFilename(input.ImageFilename); err != nil {
				return nil, err
			}
			blog.ImagePath = input.ImageFilename
		}
		blog.Image = input.Image
	}

	if err := s.blogs.Update(blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) Delete(blogID string) error {
	if _, err := s.blogs.GetByID(blogID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.blogs.Delete(blogID)
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"realty-service/internal/service"
)

// BlogHandler handles HTTP requests for blog posts.
type BlogHandler struct {
	blogs  *service.BlogService
	logger *zap.Logger
}

func NewBlogHandler(blogs *service.BlogService, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, logger: logger}
}

func (h *BlogHandler) RegisterRoutes(router chi.Router) {
	router.Route("/blog", func(r chi.Router) {
		r.Post("/saveBlog", h.Save)
		r.Get("/getBlogById/{id}", h.GetByID)
		r.Get("/getAllBlog", h.List)
		r.Put("/update/{id}", h.Update)
		r.Delete("/delete/{id}", h.Delete)
	})
}

func (h *BlogHandler) Save(w http.ResponseWriter, r *http.Request) {
	input, err := blogInputFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	blog, err := h.blogs.Save(r.Context(), input)
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to save blog")
		return
	}
	respondJSON(w, http.StatusCreated, successResponse(blog, "Blog saved successfully"))
}

func (h *BlogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to get blog")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(blog, "Blog retrieved successfully"))
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List()
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to list blogs")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(blogs, "Blogs retrieved successfully"))
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := blogInputFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err, "Invalid multipart form")
		return
	}

	blog, err := h.blogs.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, statusCode(err), err, "Failed to update blog")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(blog, "Blog updated successfully"))
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.blogs.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, statusCode(err), err, "Failed to delete blog")
		return
	}
	respondJSON(w, http.StatusOK, successResponse(nil, "Blog deleted successfully"))
}

func blogInputFromForm(r *http.Request) (*service.BlogInput, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}

	image, filename, err := readFormFile(r, "image")
	if err != nil {
		return nil, err
	}

	return &service.BlogInput{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Image:         image,
		ImageFilename: filename,
	}, nil
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/models"
	"ledgerengine/internal/pagination"
)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(userID, name string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: testCategoryID}, UserID: userID, Name: name}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["name"] != "Food" || cat["id"] != testCategoryID {
			t.Errorf("unexpected category: %v", cat)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(_, _ string) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	t.Run("returns the page envelope", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getUserCategoriesFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				if page.Page != 2 || page.PageSize != 1 {
					t.Errorf("unexpected page request %+v", page)
				}
				resp := pagination.NewPageResponse([]models.Category{{Name: "Food"}}, 2, 1, 3)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "GET", "/categories?page=2&page_size=1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["total_pages"].(float64) != 3 {
			t.Errorf("expected 3 pages, got %v", result["total_pages"])
		}
		data := result["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 item, got %d", len(data))
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "GET", "/categories?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetCategoryByID(t *testing.T) {
	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "GET", "/categories/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(_, _ string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc))

		rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	catSvc := &mockCategoryService{
		updateCategoryFn: func(_, categoryID, name string) (*models.Category, error) {
			return &models.Category{Base: models.Base{ID: categoryID}, Name: name}, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(catSvc))

	rec := doRequest(r, "PUT", "/categories/"+testCategoryID, `{"name":"Groceries"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cat := parseJSON(t, rec)["category"].(map[string]interface{})
	if cat["name"] != "Groceries" {
		t.Errorf("expected Groceries, got %v", cat["name"])
	}
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	var deleted string
	catSvc := &mockCategoryService{
		deleteCategoryFn: func(_, categoryID string) error {
			deleted = categoryID
			return nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(catSvc))

	rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != testCategoryID {
		t.Errorf("expected delete of %s, got %s", testCategoryID, deleted)
	}
}

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openhaus-labs/openhaus/backend/internal/catalog"
	"go.uber.org/zap"
)

type propertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Area        float64 `json:"area"`
	Location    string  `json:"location"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Price       int64   `json:"price"`
	Featured    bool    `json:"featured"`
}

type propertyPayload struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Area        float64 `json:"area"`
	Location    string  `json:"location"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Price       int64   `json:"price"`
	Featured    bool    `json:"featured"`
}

func presentProperty(property catalog.Property) propertyPayload {
	return propertyPayload{
		ID:          property.ID,
		Title:       property.Title,
		Description: property.Description,
		Bedrooms:    property.Bedrooms,
		Bathrooms:   property.Bathrooms,
		Area:        property.Area,
		Location:    property.Location,
		City:        property.City,
		State:       property.State,
		Price:       property.Price,
		Featured:    property.Featured,
	}
}

func (h *httpHandler) handleListProperties(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	properties, total, err := h.catalog.ListProperties(c.Request.Context(), catalog.Page{Number: page, Size: limit})
	if err != nil {
		h.logger.Error("property listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	payload := make([]propertyPayload, 0, len(properties))
	for _, property := range properties {
		payload = append(payload, presentProperty(property))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "properties": payload, "total": total})
}

func (h *httpHandler) handleGetProperty(c *gin.Context) {
	property, err := h.catalog.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("Property not found"))
			return
		}
		h.logger.Error("property lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "property": presentProperty(property)})
}

func (h *httpHandler) handleCreateProperty(c *gin.Context) {
	var request propertyRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, failure("Title is required"))
		return
	}

	property, err := h.catalog.CreateProperty(c.Request.Context(), catalog.Property{
		Title:       request.Title,
		Description: request.Description,
		Bedrooms:    request.Bedrooms,
		Bathrooms:   request.Bathrooms,
		Area:        request.Area,
		Location:    request.Location,
		City:        request.City,
		State:       request.State,
		Price:       request.Price,
		Featured:    request.Featured,
	})
	if err != nil {
		h.logger.Error("property create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "property": presentProperty(property)})
}

func (h *httpHandler) handleUpdateProperty(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, failure("No fields to update"))
		return
	}
	delete(fields, "id")

	property, err := h.catalog.UpdateProperty(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("Property not found"))
			return
		}
		h.logger.Error("property update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "property": presentProperty(property)})
}

func (h *httpHandler) handleDeleteProperty(c *gin.Context) {
	if err := h.catalog.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("Property not found"))
			return
		}
		h.logger.Error("property delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Property deleted"})
}

type testimonialRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Location string `json:"location"`
	Rating   int    `json:"rating"`
	Featured bool   `json:"featured"`
}

func (h *httpHandler) handleListTestimonials(c *gin.Context) {
	testimonials, err := h.catalog.ListTestimonials(c.Request.Context())
	if err != nil {
		h.logger.Error("testimonial listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "testimonials": testimonials})
}

func (h *httpHandler) handleCreateTestimonial(c *gin.Context) {
	var request testimonialRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Content == "" || request.Author == "" {
		c.JSON(http.StatusBadRequest, failure("Content and author are required"))
		return
	}

	testimonial, err := h.catalog.CreateTestimonial(c.Request.Context(), catalog.Testimonial{
		Title:    request.Title,
		Content:  request.Content,
		Author:   request.Author,
		Location: request.Location,
		Rating:   request.Rating,
		Featured: request.Featured,
	})
	if err != nil {
		h.logger.Error("testimonial create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "testimonial": testimonial})
}

func (h *httpHandler) handleDeleteTestimonial(c *gin.Context) {
	if err := h.catalog.DeleteTestimonial(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("Testimonial not found"))
			return
		}
		h.logger.Error("testimonial delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Testimonial deleted"})
}

type faqRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	OrderIndex int    `json:"order_index"`
	Featured   bool   `json:"featured"`
}

func (h *httpHandler) handleListFAQs(c *gin.Context) {
	faqs, err := h.catalog.ListFAQs(c.Request.Context())
	if err != nil {
		h.logger.Error("faq listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "faqs": faqs})
}

func (h *httpHandler) handleCreateFAQ(c *gin.Context) {
	var request faqRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Question == "" || request.Answer == "" {
		c.JSON(http.StatusBadRequest, failure("Question and answer are required"))
		return
	}

	faq, err := h.catalog.CreateFAQ(c.Request.Context(), catalog.FAQ{
		Question:   request.Question,
		Answer:     request.Answer,
		Category:   request.Category,
		OrderIndex: request.OrderIndex,
		Featured:   request.Featured,
	})
	if err != nil {
		h.logger.Error("faq create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "faq": faq})
}

func (h *httpHandler) handleDeleteFAQ(c *gin.Context) {
	if err := h.catalog.DeleteFAQ(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, failure("FAQ not found"))
			return
		}
		h.logger.Error("faq delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "FAQ deleted"})
}

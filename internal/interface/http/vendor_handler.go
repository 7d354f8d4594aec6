package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/pkg/response"
)

type VendorHandler struct {
	Vendors *application.VendorService
	Logger  *logrus.Logger
}

func NewVendorHandler(vendors *application.VendorService, logger *logrus.Logger) *VendorHandler {
	return &VendorHandler{Vendors: vendors, Logger: logger}
}

type locateRequest struct {
	Lat *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng *float64 `json:"lng" binding:"omitempty,longitude"`
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required,max=1000"`
}

// List returns the vendors matching the session facets.
func (h *VendorHandler) List(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	vendors := h.Vendors.List(s)
	response.Success(c, http.StatusOK, vendors, "vendors", gin.H{"count": len(vendors)})
}

func (h *VendorHandler) Get(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	v, err := h.Vendors.Get(s, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "vendor", nil)
}

// Search: GET /vendors/search?q=padaria&limit=20
func (h *VendorHandler) Search(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	vendors, err := h.Vendors.Search(c.Request.Context(), s, c.Query("q"), limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, vendors, "search results", gin.H{"count": len(vendors)})
}

// Filters changes the listing facets and answers with the new listing.
func (h *VendorHandler) Filters(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.FilterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if _, err := h.Vendors.ApplyFilters(s, req); err != nil {
		fail(c, h.Logger, err)
		return
	}
	vendors := h.Vendors.List(s)
	response.Success(c, http.StatusOK, vendors, "filters applied", gin.H{"count": len(vendors)})
}

// Locate sets the viewer position from the body, or estimates it from the
// client IP when the body has no coordinates.
func (h *VendorHandler) Locate(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req locateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badPayload(c, err)
			return
		}
	}
	var at *entity.Location
	if req.Lat != nil && req.Lng != nil {
		at = &entity.Location{Lat: *req.Lat, Lng: *req.Lng}
	}
	loc := h.Vendors.Locate(c.Request.Context(), s, c.GetString("real_ip"), at)
	response.Success(c, http.StatusOK, loc, "location updated", nil)
}

func (h *VendorHandler) AddReview(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	r, err := h.Vendors.AddReview(c.Request.Context(), s, c.Param("id"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, r, "review added", nil)
}

func (h *VendorHandler) ReplyReview(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Vendors.ReplyReview(c.Request.Context(), s, c.Param("id"), c.Param("reviewId"), req.Reply); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"replied": true}, "reply saved", nil)
}

func (h *VendorHandler) UpdateListing(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	var req application.ListingPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	v, err := h.Vendors.UpdateListing(c.Request.Context(), s, c.Param("id"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "listing updated", nil)
}

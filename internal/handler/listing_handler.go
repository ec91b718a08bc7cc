package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/repository"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

// ListingHandler serves the public browse surface and the farmer's own
// listing operations.
type ListingHandler struct {
	Repo       *repository.ListingRepository
	Moderation *service.ModerationService
}

// RegisterPublic registers the routes that need no token.
func (h *ListingHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/listings", h.GetApprovedListings)
	rg.GET("/listings/:id", h.GetListingByID)
	rg.GET("/listings/:id/verification", h.GetVerification)
}

// RegisterProtected registers the farmer-facing routes.
func (h *ListingHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings", h.SubmitListing)
	rg.PUT("/listings/:id", h.UpdateListing)
	rg.DELETE("/listings/:id", h.DeleteListing)
	rg.GET("/my/listings", h.GetMyListings)
	rg.PUT("/listings/:id/sold", h.MarkSold)
	rg.PUT("/listings/:id/withdraw", h.Withdraw)
	rg.PUT("/listings/:id/resubmit", h.Resubmit)
}

// GET /api/listings?crop=...&district=...&state=...&min_price=...&max_price=...&limit=...&offset=...
func (h *ListingHandler) GetApprovedListings(c *gin.Context) {
	filters := map[string]interface{}{}
	if v := c.Query("crop"); v != "" {
		filters["crop_name"] = v
	}
	if v := c.Query("district"); v != "" {
		filters["district"] = v
	}
	if v := c.Query("state"); v != "" {
		filters["state"] = v
	}
	if v := c.Query("min_price"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			filters["min_price"] = min
		}
	}
	if v := c.Query("max_price"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			filters["max_price"] = max
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Repo.GetFiltered(c.Request.Context(), filters, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GET /api/listings/:id/verification
//
// The assessment is recomputed on every request; it is a projection of the
// listing's current fields, not stored state.
func (h *ListingHandler) GetVerification(c *gin.Context) {
	listing, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ScoreListing(listing))
}

// SubmitListingDTO carries a farmer's draft.
type SubmitListingDTO struct {
	CropName      string     `json:"cropName" binding:"required"`
	Variety       string     `json:"variety"`
	Description   string     `json:"description"`
	Packaging     string     `json:"packaging"`
	Quantity      float64    `json:"quantity" binding:"required"`
	Unit          string     `json:"unit" binding:"required"`
	PricePerUnit  float64    `json:"pricePerUnit" binding:"required"`
	Images        []string   `json:"images"`
	Village       string     `json:"village"`
	District      string     `json:"district"`
	State         string     `json:"state"`
	Pincode       string     `json:"pincode"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	ContactPhone  string     `json:"contactPhone"`
	SowingDate    *time.Time `json:"sowingDate"`
	HarvestDate   *time.Time `json:"harvestDate"`
	ExpectedYield string     `json:"expectedYield"`
}

func (dto *SubmitListingDTO) toModel() *model.Listing {
	return &model.Listing{
		CropName:      dto.CropName,
		Variety:       dto.Variety,
		Description:   dto.Description,
		Packaging:     dto.Packaging,
		Quantity:      dto.Quantity,
		Unit:          dto.Unit,
		PricePerUnit:  dto.PricePerUnit,
		Images:        dto.Images,
		Village:       dto.Village,
		District:      dto.District,
		State:         dto.State,
		Pincode:       dto.Pincode,
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
		ContactPhone:  dto.ContactPhone,
		SowingDate:    dto.SowingDate,
		HarvestDate:   dto.HarvestDate,
		ExpectedYield: dto.ExpectedYield,
	}
}

// POST /api/listings
func (h *ListingHandler) SubmitListing(c *gin.Context) {
	var req SubmitListingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	listing, err := h.Moderation.Submit(c.Request.Context(), middleware.UserID(c), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// PUT /api/listings/:id
//
// Owners may edit only while the listing is still pending.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var req SubmitListingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	l := req.toModel()
	l.ID = c.Param("id")
	l.FarmerID = middleware.UserID(c)
	l.UpdatedAt = time.Now().UTC()

	updated, err := h.Repo.Update(c.Request.Context(), l)
	if err != nil {
		writeError(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusConflict, gin.H{"error": "listing is not editable"})
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /api/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	deleted, err := h.Repo.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GET /api/my/listings
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	list, err := h.Repo.ListByFarmer(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// PUT /api/listings/:id/sold
func (h *ListingHandler) MarkSold(c *gin.Context) {
	listing, err := h.Moderation.MarkSold(c.Request.Context(), c.Param("id"),
		middleware.UserID(c), middleware.HasRole(c, model.RoleAdmin))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// PUT /api/listings/:id/withdraw
func (h *ListingHandler) Withdraw(c *gin.Context) {
	listing, err := h.Moderation.Withdraw(c.Request.Context(), c.Param("id"),
		middleware.UserID(c), middleware.HasRole(c, model.RoleAdmin))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// PUT /api/listings/:id/resubmit
func (h *ListingHandler) Resubmit(c *gin.Context) {
	listing, err := h.Moderation.Resubmit(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
